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

// Package sweeper ages ready role statuses into stale once their
// assessment falls outside the freshness window, making re-runs
// discoverable through the status surface.
package sweeper

import (
	"context"
	"time"

	"github.com/robfig/cron"

	"github.com/arcentrix/roleflow/internal/engine/model"
	"github.com/arcentrix/roleflow/pkg/log"
	"github.com/arcentrix/roleflow/pkg/metrics"
)

// StatusStore is the slice of the status repository the sweeper needs.
type StatusStore interface {
	ListReady(ctx context.Context) ([]string, error)
	Get(ctx context.Context, workflowID string) (*model.RoleStatus, error)
	UpdateState(ctx context.Context, workflowID string, state model.WorkflowState, subState string, errInfo *model.ErrorInfo) error
}

// Conf configures the sweeper.
type Conf struct {
	Enabled   bool          `mapstructure:"enabled"`
	Schedule  string        `mapstructure:"schedule"`
	Freshness time.Duration `mapstructure:"freshness"`
}

// SetDefaults fills unset fields with defaults.
func (c *Conf) SetDefaults() {
	if c.Schedule == "" {
		c.Schedule = "@every 10m"
	}
	if c.Freshness <= 0 {
		c.Freshness = 24 * time.Hour
	}
}

// Sweeper runs the ready→stale sweep on a cron schedule.
type Sweeper struct {
	conf     Conf
	statuses StatusStore
	cron     *cron.Cron
}

// NewSweeper creates a sweeper over the status store.
func NewSweeper(conf Conf, statuses StatusStore) *Sweeper {
	conf.SetDefaults()
	return &Sweeper{
		conf:     conf,
		statuses: statuses,
	}
}

// Start schedules the sweep. No-op when disabled.
func (s *Sweeper) Start() error {
	if s == nil || !s.conf.Enabled {
		return nil
	}
	c := cron.New()
	if err := c.AddFunc(s.conf.Schedule, func() {
		swept, err := s.Sweep(context.Background())
		if err != nil {
			log.Errorw("status sweep failed", "error", err)
			return
		}
		if swept > 0 {
			log.Infow("status sweep completed", "swept", swept)
		}
	}); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	log.Infow("status sweeper started",
		"schedule", s.conf.Schedule,
		"freshness", s.conf.Freshness.String(),
	)
	return nil
}

// Stop halts the schedule; an in-flight sweep finishes on its own.
func (s *Sweeper) Stop() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Stop()
}

// Sweep walks the ready index once and marks aged statuses stale.
// Returns the number of statuses swept.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	ids, err := s.statuses.ListReady(ctx)
	if err != nil {
		return 0, err
	}

	swept := 0
	cutoff := time.Now().Add(-s.conf.Freshness)
	for _, workflowID := range ids {
		status, err := s.statuses.Get(ctx, workflowID)
		if err != nil {
			log.Warnw("sweep: read status failed", "workflowId", workflowID, "error", err)
			continue
		}
		// The index can lag behind the record; re-check before acting.
		if status == nil || status.State != model.StateReady {
			continue
		}
		completedAt := status.QueuedAt
		if status.CompletedAt != nil {
			completedAt = *status.CompletedAt
		}
		if completedAt.After(cutoff) {
			continue
		}
		if err := s.statuses.UpdateState(ctx, workflowID, model.StateStale, "", nil); err != nil {
			log.Warnw("sweep: mark stale failed", "workflowId", workflowID, "error", err)
			continue
		}
		metrics.StatusesSwept.Inc()
		swept++
	}
	return swept, nil
}
