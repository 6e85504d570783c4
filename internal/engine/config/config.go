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
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/arcentrix/roleflow/internal/pkg/collaborator"
	"github.com/arcentrix/roleflow/internal/pkg/notify"
	"github.com/arcentrix/roleflow/internal/pkg/sweeper"
	"github.com/arcentrix/roleflow/pkg/cache"
	"github.com/arcentrix/roleflow/pkg/log"
	"github.com/arcentrix/roleflow/pkg/metrics"
)

// Execution modes for WorkflowConf.Mode.
const (
	ModeLocal     = "local"
	ModeDelegated = "delegated"
)

// WorkflowConf tunes the onboarding workflow runtime.
type WorkflowConf struct {
	// Mode selects the execution host: "local" runs steps in-process,
	// "delegated" routes them through a durable-execution engine.
	Mode             string        `mapstructure:"mode"`
	TTL              time.Duration `mapstructure:"status_ttl"`
	DashboardBase    string        `mapstructure:"dashboard_base"`
	EstimatedSeconds int64         `mapstructure:"estimated_seconds"`
}

// SetDefaults fills unset fields with defaults.
func (w *WorkflowConf) SetDefaults() {
	if w.Mode == "" {
		w.Mode = ModeLocal
	}
	if w.DashboardBase == "" {
		w.DashboardBase = "https://dashboard.roleflow.dev"
	}
	if w.EstimatedSeconds <= 0 {
		w.EstimatedSeconds = 180
	}
}

// StatusTTL returns the retention of status and batch records.
func (w *WorkflowConf) StatusTTL() time.Duration {
	if w.TTL <= 0 {
		return 24 * time.Hour
	}
	return w.TTL
}

// CollaboratorsConf holds the endpoints of the two collaborator
// services.
type CollaboratorsConf struct {
	RoleSetup  collaborator.Conf `mapstructure:"role_setup"`
	Assessment collaborator.Conf `mapstructure:"assessment"`
}

type AppConfig struct {
	Log           log.Conf              `mapstructure:"log"`
	Cache         cache.Conf            `mapstructure:"cache"`
	Metrics       metrics.MetricsConfig `mapstructure:"metrics"`
	Workflow      WorkflowConf          `mapstructure:"workflow"`
	Collaborators CollaboratorsConf     `mapstructure:"collaborators"`
	Notify        notify.Conf           `mapstructure:"notify"`
	Sweeper       sweeper.Conf          `mapstructure:"sweeper"`
}

func (c *AppConfig) setDefaults() {
	c.Log.SetDefaults()
	c.Cache.SetDefaults()
	c.Metrics.SetDefaults()
	c.Workflow.SetDefaults()
	c.Collaborators.RoleSetup.SetDefaults()
	c.Collaborators.Assessment.SetDefaults()
	c.Notify.SetDefaults()
	c.Sweeper.SetDefaults()
}

var (
	cfg  AppConfig
	mu   sync.RWMutex // 保护配置的读写
	once sync.Once
)

func NewConf(confFile string) *AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(confFile)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
	})
	mu.RLock()
	defer mu.RUnlock()
	return &cfg
}

// GetConfig returns a copy of the current configuration, for callers
// that want hot-reloaded values.
func GetConfig() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// LoadConfigFile loads the config file and watches it for changes.
func LoadConfigFile(confFile string) (AppConfig, error) {
	config := viper.New()
	config.SetConfigFile(confFile)
	if err := config.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read configuration file: %v", err)
	}

	config.WatchConfig()
	config.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("The configuration changes, re-analyze the configuration file", "file", e.Name)
		if err := config.ReadInConfig(); err != nil {
			log.Errorw("failed to re-read configuration file", "error", err, "file", e.Name)
			return
		}
		mu.Lock()
		if err := config.Unmarshal(&cfg); err != nil {
			mu.Unlock()
			log.Errorw("failed to unmarshal configuration file", "error", err, "file", e.Name)
			return
		}
		cfg.setDefaults()
		mu.Unlock()
		log.Infow("configuration reloaded successfully", "file", e.Name)
	})
	if err := config.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal configuration file: %v", err)
	}
	cfg.setDefaults()
	log.Infow("config file loaded",
		"path", confFile,
	)

	return cfg, nil
}
