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

package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/wire"

	"github.com/arcentrix/roleflow/internal/engine/config"
	"github.com/arcentrix/roleflow/internal/engine/repo"
	"github.com/arcentrix/roleflow/internal/engine/service"
	"github.com/arcentrix/roleflow/internal/pkg/notify"
	"github.com/arcentrix/roleflow/internal/pkg/sweeper"
	"github.com/arcentrix/roleflow/pkg/cache"
	"github.com/arcentrix/roleflow/pkg/event"
	"github.com/arcentrix/roleflow/pkg/log"
	"github.com/arcentrix/roleflow/pkg/metrics"
)

// ProviderSet is the Wire provider set for the bootstrap package.
var ProviderSet = wire.NewSet(
	ProvideSweeper,
	NewApp,
)

// ProvideSweeper builds the stale sweeper over the status repository.
func ProvideSweeper(conf sweeper.Conf, repos *repo.Repositories) *sweeper.Sweeper {
	return sweeper.NewSweeper(conf, repos.Status)
}

// App holds the wired application.
type App struct {
	AppConf       *config.AppConfig
	Logger        *log.Logger
	Cache         cache.ICache
	Repos         *repo.Repositories
	Services      *service.Services
	Bus           *event.Bus
	MetricsServer *metrics.Server
	Notifier      *notify.Notifier
	Sweeper       *sweeper.Sweeper
}

// InitAppFunc is the wire-generated injector signature.
type InitAppFunc func(configFile string) (*App, func(), error)

// NewApp assembles the application and its cleanup function.
func NewApp(
	appConf *config.AppConfig,
	logger *log.Logger,
	c cache.ICache,
	repos *repo.Repositories,
	services *service.Services,
	bus *event.Bus,
	metricsServer *metrics.Server,
	notifier *notify.Notifier,
	sw *sweeper.Sweeper,
) (*App, func(), error) {
	notifier.Register(bus)

	app := &App{
		AppConf:       appConf,
		Logger:        logger,
		Cache:         c,
		Repos:         repos,
		Services:      services,
		Bus:           bus,
		MetricsServer: metricsServer,
		Notifier:      notifier,
		Sweeper:       sw,
	}

	cleanup := func() {
		if sw != nil {
			log.Info("Shutting down status sweeper...")
			sw.Stop()
		}

		if notifier != nil {
			log.Info("Shutting down lifecycle notifier...")
			notifier.Close()
		}

		if metricsServer != nil {
			log.Info("Shutting down metrics server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Stop(shutdownCtx); err != nil {
				log.Errorw("Failed to stop metrics server", "error", err)
			}
		}

		if c != nil {
			if err := c.Close(); err != nil {
				log.Errorw("Failed to close cache", "error", err)
			}
		}

		log.Sync()
	}

	return app, cleanup, nil
}

// Bootstrap builds the app through the wire injector.
func Bootstrap(configFile string, initApp InitAppFunc) (*App, func(), error) {
	app, cleanup, err := initApp(configFile)
	if err != nil {
		return nil, nil, err
	}
	return app, cleanup, nil
}

// Run starts the background components and blocks until an exit signal,
// then shuts down gracefully.
func Run(app *App, cleanup func()) {
	app.MetricsServer.Start()

	if err := app.Sweeper.Start(); err != nil {
		log.Errorw("Failed to start status sweeper", "error", err)
	}

	log.Infow("roleflow engine started",
		"mode", app.AppConf.Workflow.Mode,
		"statusTtl", app.AppConf.Workflow.StatusTTL().String(),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-quit
	log.Infow("Received OS signal, shutting down gracefully...", "signal", sig)

	cleanup()
	log.Info("Server shutdown complete")
}
