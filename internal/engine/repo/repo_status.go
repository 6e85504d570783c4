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
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/arcentrix/roleflow/internal/engine/model"
	"github.com/arcentrix/roleflow/pkg/cache"
)

const (
	statusKeyPrefix = "roleflow:status:"
	readyIndexKey   = "roleflow:ready-index"
)

// IStatusRepository is the TTL-scoped store of role statuses, keyed by
// workflow id. Status is ephemeral telemetry, not the system of record:
// same-id writers race last-writer-wins by design.
type IStatusRepository interface {
	Set(ctx context.Context, status *model.RoleStatus) error
	Get(ctx context.Context, workflowID string) (*model.RoleStatus, error)
	UpdateState(ctx context.Context, workflowID string, state model.WorkflowState, subState string, errInfo *model.ErrorInfo) error
	UpdateProgress(ctx context.Context, workflowID, stepName string, stepStatus model.StepStatus, duration time.Duration, errMsg string) error
	Delete(ctx context.Context, workflowID string) error
	ListReady(ctx context.Context) ([]string, error)
}

type StatusRepo struct {
	cache cache.ICache
	ttl   time.Duration
}

// NewStatusRepo creates a status repository with the given record TTL.
func NewStatusRepo(c cache.ICache, ttl time.Duration) IStatusRepository {
	return &StatusRepo{cache: c, ttl: ttl}
}

func statusKey(workflowID string) string {
	return statusKeyPrefix + workflowID
}

// Set overwrites the status record and keeps the ready index in step.
// Idempotent.
func (r *StatusRepo) Set(ctx context.Context, status *model.RoleStatus) error {
	raw, err := sonic.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal status %s: %w", status.WorkflowID, err)
	}
	if err := r.cache.Set(ctx, statusKey(status.WorkflowID), raw, r.ttl); err != nil {
		return err
	}
	return r.indexReady(ctx, status.WorkflowID, status.State == model.StateReady)
}

// Get returns the status record, or nil when absent or expired.
func (r *StatusRepo) Get(ctx context.Context, workflowID string) (*model.RoleStatus, error) {
	raw, ok, err := r.cache.Get(ctx, statusKey(workflowID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var status model.RoleStatus
	if err := sonic.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("unmarshal status %s: %w", workflowID, err)
	}
	return &status, nil
}

// UpdateState transitions the stored record through the lifecycle table.
func (r *StatusRepo) UpdateState(ctx context.Context, workflowID string, state model.WorkflowState, subState string, errInfo *model.ErrorInfo) error {
	status, err := r.Get(ctx, workflowID)
	if err != nil {
		return err
	}
	if status == nil {
		return model.NewError("status_not_found",
			fmt.Sprintf("no status record for workflow %s", workflowID),
			model.ErrCategoryInternal, false)
	}
	if err := status.ApplyState(state, subState, errInfo); err != nil {
		return err
	}
	return r.Set(ctx, status)
}

// UpdateProgress applies the per-step update rule to the stored record.
func (r *StatusRepo) UpdateProgress(ctx context.Context, workflowID, stepName string, stepStatus model.StepStatus, duration time.Duration, errMsg string) error {
	status, err := r.Get(ctx, workflowID)
	if err != nil {
		return err
	}
	if status == nil {
		return model.NewError("status_not_found",
			fmt.Sprintf("no status record for workflow %s", workflowID),
			model.ErrCategoryInternal, false)
	}
	status.Progress.UpdateStep(stepName, stepStatus, duration, errMsg)
	status.SubState = status.Progress.CurrentStep
	return r.Set(ctx, status)
}

// Delete removes the status record explicitly; TTL expiry is the only
// other way a record disappears.
func (r *StatusRepo) Delete(ctx context.Context, workflowID string) error {
	if err := r.cache.Delete(ctx, statusKey(workflowID)); err != nil {
		return err
	}
	return r.indexReady(ctx, workflowID, false)
}

// ListReady returns the workflow ids currently indexed as ready. The
// index is advisory like the statuses themselves: readers re-check the
// record before acting on an entry.
func (r *StatusRepo) ListReady(ctx context.Context) ([]string, error) {
	raw, ok, err := r.cache.Get(ctx, readyIndexKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var ids []string
	if err := sonic.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("unmarshal ready index: %w", err)
	}
	return ids, nil
}

// indexReady adds or removes one id in the ready index via
// read-modify-write. Concurrent sweeps and completions race
// last-writer-wins, same as the status records.
func (r *StatusRepo) indexReady(ctx context.Context, workflowID string, ready bool) error {
	ids, err := r.ListReady(ctx)
	if err != nil {
		return err
	}
	present := -1
	for i, id := range ids {
		if id == workflowID {
			present = i
			break
		}
	}
	switch {
	case ready && present < 0:
		ids = append(ids, workflowID)
	case !ready && present >= 0:
		ids = append(ids[:present], ids[present+1:]...)
	default:
		return nil
	}
	raw, err := sonic.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal ready index: %w", err)
	}
	return r.cache.Set(ctx, readyIndexKey, raw, r.ttl)
}
