// Copyright 2026 Roleflow Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/arcentrix/roleflow/internal/engine/bootstrap"
	"github.com/arcentrix/roleflow/internal/engine/config"
	"github.com/arcentrix/roleflow/internal/engine/repo"
	"github.com/arcentrix/roleflow/internal/engine/service"
	"github.com/arcentrix/roleflow/internal/pkg/notify"
	"github.com/arcentrix/roleflow/pkg/cache"
	"github.com/arcentrix/roleflow/pkg/event"
	"github.com/arcentrix/roleflow/pkg/log"
	"github.com/arcentrix/roleflow/pkg/metrics"
)

func initApp(configFile string) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		config.ProviderSet,
		// 日志层（依赖 config）
		log.ProviderSet,
		// 缓存层（依赖 config）
		cache.ProviderSet,
		// 指标层（依赖 config）
		metrics.ProviderSet,
		// 事件总线
		event.ProviderSet,
		// 仓储层（依赖 cache）
		repo.ProviderSet,
		// 服务层（依赖 repo, cache, event）
		service.ProviderSet,
		// 通知层（依赖 config, event）
		notify.NewNotifier,
		// 应用层
		bootstrap.ProviderSet,
	))
}
