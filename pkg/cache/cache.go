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

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
)

// 缓存类型常量
const (
	TypeRedis  = "redis"
	TypeMemory = "memory"
)

// ProviderSet is the Wire provider set for the cache package.
var ProviderSet = wire.NewSet(NewCache)

// Redis holds redis connection configuration.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"poolSize"`
}

// Conf selects and configures the cache backend.
type Conf struct {
	Type  string `mapstructure:"type"`
	Redis Redis  `mapstructure:"redis"`
}

// SetDefaults fills unset fields with defaults.
func (c *Conf) SetDefaults() {
	if c.Type == "" {
		if c.Redis.Addr != "" {
			c.Type = TypeRedis
		} else {
			c.Type = TypeMemory
		}
	}
}

// ICache is a TTL-scoped key-value store. Values expire after their TTL
// and reads of expired or missing keys report absence, not an error.
type ICache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Incr(ctx context.Context, key string) (int64, error)
	Close() error
}

// NewCache creates a cache backend from configuration.
func NewCache(conf *Conf) (ICache, error) {
	if conf == nil {
		conf = &Conf{}
	}
	conf.SetDefaults()
	switch conf.Type {
	case TypeRedis:
		return newRedisCache(conf.Redis)
	case TypeMemory:
		return NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", conf.Type)
	}
}
