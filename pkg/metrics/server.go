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

package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arcentrix/roleflow/pkg/log"
)

// ProviderSet is the Wire provider set for the metrics package.
var ProviderSet = wire.NewSet(NewServer)

// MetricsConfig configures the scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// SetDefaults fills unset fields with defaults.
func (c *MetricsConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":9100"
	}
}

// Server exposes the prometheus scrape endpoint.
type Server struct {
	srv *http.Server
}

// NewServer creates the metrics server; nil when disabled.
func NewServer(conf MetricsConfig) *Server {
	conf.SetDefaults()
	if !conf.Enabled {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Server{srv: &http.Server{Addr: conf.Addr, Handler: mux}}
}

// Start serves the endpoint in the background.
func (s *Server) Start() {
	if s == nil {
		return
	}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics server exited", "error", err)
		}
	}()
}

// Stop shuts the endpoint down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
