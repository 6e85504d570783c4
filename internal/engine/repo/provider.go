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

package repo

import (
	"github.com/google/wire"

	"github.com/arcentrix/roleflow/internal/engine/config"
	"github.com/arcentrix/roleflow/pkg/cache"
)

// ProviderSet is the Wire provider set for the repo package.
var ProviderSet = wire.NewSet(
	NewRepositories,
)

// Repositories bundles every repository for injection.
type Repositories struct {
	Status IStatusRepository
	Batch  IBatchRepository
}

// NewRepositories wires repositories onto the cache backend.
func NewRepositories(conf *config.AppConfig, c cache.ICache) *Repositories {
	ttl := conf.Workflow.StatusTTL()
	return &Repositories{
		Status: NewStatusRepo(c, ttl),
		Batch:  NewBatchRepo(c, ttl),
	}
}
