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

package config

import (
	"github.com/google/wire"

	"github.com/arcentrix/roleflow/internal/pkg/notify"
	"github.com/arcentrix/roleflow/internal/pkg/sweeper"
	"github.com/arcentrix/roleflow/pkg/cache"
	"github.com/arcentrix/roleflow/pkg/log"
	"github.com/arcentrix/roleflow/pkg/metrics"
)

// ProviderSet is the Wire provider set for the config package. It loads
// the config file and exposes the per-subsystem conf slices.
var ProviderSet = wire.NewSet(
	NewConf,
	ProvideLogConf,
	ProvideCacheConf,
	ProvideMetricsConf,
	ProvideNotifyConf,
	ProvideSweeperConf,
)

func ProvideLogConf(conf *AppConfig) *log.Conf {
	return &conf.Log
}

func ProvideCacheConf(conf *AppConfig) *cache.Conf {
	return &conf.Cache
}

func ProvideMetricsConf(conf *AppConfig) metrics.MetricsConfig {
	return conf.Metrics
}

func ProvideNotifyConf(conf *AppConfig) notify.Conf {
	return conf.Notify
}

func ProvideSweeperConf(conf *AppConfig) sweeper.Conf {
	return conf.Sweeper
}
