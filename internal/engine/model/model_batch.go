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

package model

import (
	"time"
)

// BatchRecord groups independent workflow ids under one submission id.
// It is mutated only by appending workflow ids; Count is always
// re-derived from the list.
type BatchRecord struct {
	BatchID     string         `json:"batch_id"`
	WorkflowIDs []string       `json:"workflow_ids"`
	TenantID    string         `json:"tenant_id"`
	Count       int            `json:"count"`
	CreatedAt   time.Time      `json:"created_at"`
	CreatedBy   string         `json:"created_by,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// AddWorkflow appends a member workflow id and re-derives the count.
func (b *BatchRecord) AddWorkflow(workflowID string) {
	b.WorkflowIDs = append(b.WorkflowIDs, workflowID)
	b.Count = len(b.WorkflowIDs)
}

// BatchState is the aggregate state of a batch, derived at read time.
type BatchState string

const (
	BatchStatePending    BatchState = "pending"
	BatchStateInProgress BatchState = "in_progress"
	BatchStateCompleted  BatchState = "completed"
	BatchStatePartial    BatchState = "partial"
)

// RoleStatusSummary is the per-member view inside a batch status.
type RoleStatusSummary struct {
	WorkflowID string        `json:"workflow_id"`
	RoleID     string        `json:"role_id,omitempty"`
	RoleName   string        `json:"role_name,omitempty"`
	State      WorkflowState `json:"state"`
}

// BatchStatus is the derived aggregate view of a batch. It is computed
// from member role statuses at read time and never persisted as a
// source of truth.
type BatchStatus struct {
	BatchID    string              `json:"batch_id"`
	TenantID   string              `json:"tenant_id"`
	State      BatchState          `json:"state"`
	Queued     int                 `json:"queued"`
	InProgress int                 `json:"in_progress"`
	Completed  int                 `json:"completed"`
	Failed     int                 `json:"failed"`
	Roles      []RoleStatusSummary `json:"roles"`
}

// AggregateBatch folds member statuses into a batch status. A member
// missing from statuses counts as queued, never as failed, so that a
// TTL-expired record does not read as a false negative.
func AggregateBatch(rec *BatchRecord, statuses map[string]*RoleStatus) *BatchStatus {
	bs := &BatchStatus{
		BatchID:  rec.BatchID,
		TenantID: rec.TenantID,
		Roles:    make([]RoleStatusSummary, 0, len(rec.WorkflowIDs)),
	}

	for _, id := range rec.WorkflowIDs {
		status := statuses[id]
		if status == nil {
			bs.Queued++
			bs.Roles = append(bs.Roles, RoleStatusSummary{WorkflowID: id, State: StateQueued})
			continue
		}
		bs.Roles = append(bs.Roles, RoleStatusSummary{
			WorkflowID: status.WorkflowID,
			RoleID:     status.RoleID,
			RoleName:   status.RoleName,
			State:      status.State,
		})
		switch status.State {
		case StateProcessing:
			bs.InProgress++
		case StateReady, StateDegraded:
			bs.Completed++
		case StateFailed, StateValidationError:
			bs.Failed++
		default:
			// draft, queued, stale
			bs.Queued++
		}
	}

	bs.State = foldBatchState(bs, len(rec.WorkflowIDs))
	return bs
}

func foldBatchState(bs *BatchStatus, total int) BatchState {
	if total == 0 {
		return BatchStatePending
	}
	if bs.InProgress == 0 && bs.Completed == 0 && bs.Failed == 0 {
		return BatchStatePending
	}
	if bs.Queued == 0 && bs.InProgress == 0 {
		if bs.Failed == 0 {
			return BatchStateCompleted
		}
		return BatchStatePartial
	}
	return BatchStateInProgress
}
