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
	"fmt"
	"time"
)

// WorkflowState is the externally visible lifecycle state of a role
// onboarding workflow.
type WorkflowState string

const (
	StateDraft           WorkflowState = "draft"
	StateQueued          WorkflowState = "queued"
	StateProcessing      WorkflowState = "processing"
	StateReady           WorkflowState = "ready"
	StateDegraded        WorkflowState = "degraded"
	StateFailed          WorkflowState = "failed"
	StateStale           WorkflowState = "stale"
	StateValidationError WorkflowState = "validation_error"
)

// stateTransitions is the adjacency table for lifecycle transitions.
// Any pair not listed here is illegal.
var stateTransitions = map[WorkflowState][]WorkflowState{
	StateDraft:           {StateQueued, StateValidationError},
	StateQueued:          {StateProcessing},
	StateProcessing:      {StateReady, StateDegraded, StateFailed},
	StateFailed:          {StateQueued},
	StateReady:           {StateStale},
	StateStale:           {StateQueued},
	StateValidationError: {StateDraft},
}

// CanTransition reports whether from -> to is listed in the adjacency table.
func CanTransition(from, to WorkflowState) bool {
	for _, next := range stateTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ErrIllegalTransition is returned when a lifecycle transition is not in
// the adjacency table.
func ErrIllegalTransition(from, to WorkflowState) error {
	return NewError(
		"illegal_state_transition",
		fmt.Sprintf("illegal state transition %s -> %s", from, to),
		ErrCategoryInternal,
		false,
	)
}

// IsTerminal reports whether s ends a workflow run.
func (s WorkflowState) IsTerminal() bool {
	switch s {
	case StateReady, StateDegraded, StateFailed, StateValidationError:
		return true
	default:
		return false
	}
}

// StepStatus is the progress status of one workflow step.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepProgress tracks one step of a workflow run.
type StepProgress struct {
	Name        string     `json:"name"`
	Status      StepStatus `json:"status"`
	Duration    int64      `json:"duration,omitempty"` // milliseconds
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// ProgressInfo is the aggregate step view of one workflow run.
type ProgressInfo struct {
	Current     int            `json:"current"`
	Total       int            `json:"total"`
	Steps       []StepProgress `json:"steps,omitempty"`
	CurrentStep string         `json:"current_step,omitempty"`
}

// NewProgressInfo seeds pending progress entries for the named steps.
func NewProgressInfo(stepNames []string) ProgressInfo {
	steps := make([]StepProgress, 0, len(stepNames))
	for _, name := range stepNames {
		steps = append(steps, StepProgress{Name: name, Status: StepStatusPending})
	}
	return ProgressInfo{Total: len(stepNames), Steps: steps}
}

// Percent returns completion percentage, guarded against division by zero.
func (p *ProgressInfo) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Current) / float64(p.Total) * 100
}

// UpdateStep updates the named step in place, appending it when absent,
// then recomputes the completed count and current-step marker.
func (p *ProgressInfo) UpdateStep(name string, status StepStatus, duration time.Duration, errMsg string) {
	p.UpdateStepAt(name, status, duration, errMsg, time.Now())
}

// UpdateStepAt is UpdateStep against a caller-supplied clock, for hosts
// that forbid wall-clock reads.
func (p *ProgressInfo) UpdateStepAt(name string, status StepStatus, duration time.Duration, errMsg string, now time.Time) {
	idx := -1
	for i := range p.Steps {
		if p.Steps[i].Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.Steps = append(p.Steps, StepProgress{Name: name})
		idx = len(p.Steps) - 1
	}

	step := &p.Steps[idx]
	step.Status = status
	switch status {
	case StepStatusRunning:
		step.StartedAt = &now
	case StepStatusCompleted, StepStatusFailed, StepStatusSkipped:
		step.CompletedAt = &now
	}
	if duration > 0 {
		step.Duration = duration.Milliseconds()
	}
	if errMsg != "" {
		step.Error = errMsg
	}

	completed := 0
	p.CurrentStep = ""
	for i := range p.Steps {
		if p.Steps[i].Status == StepStatusCompleted {
			completed++
		}
		if p.Steps[i].Status == StepStatusRunning {
			p.CurrentStep = p.Steps[i].Name
		}
	}
	p.Current = completed
	if p.Total < len(p.Steps) {
		p.Total = len(p.Steps)
	}
}

// RoleStatus is the externally visible lifecycle record of one workflow.
// It is created when a workflow is accepted, mutated only by the
// orchestrator through the status store, and removed only by TTL expiry
// or an explicit delete.
type RoleStatus struct {
	WorkflowID        string         `json:"workflow_id"`
	RoleID            string         `json:"role_id,omitempty"`
	TenantID          string         `json:"tenant_id"`
	RoleName          string         `json:"role_name"`
	State             WorkflowState  `json:"state"`
	SubState          string         `json:"sub_state,omitempty"`
	Progress          ProgressInfo   `json:"progress"`
	QueuedAt          time.Time      `json:"queued_at"`
	StartedAt         *time.Time     `json:"started_at,omitempty"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
	QueuePosition     int            `json:"queue_position,omitempty"`
	EstimatedDuration int64          `json:"estimated_duration,omitempty"` // seconds
	Error             *ErrorInfo     `json:"error,omitempty"`
	DashboardURL      string         `json:"dashboard_url,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// ApplyState transitions the status to a new lifecycle state, rejecting
// pairs absent from the adjacency table. StartedAt is stamped on first
// entry into processing, CompletedAt on entering any terminal state.
func (s *RoleStatus) ApplyState(to WorkflowState, subState string, errInfo *ErrorInfo) error {
	return s.ApplyStateAt(to, subState, errInfo, time.Now())
}

// ApplyStateAt is ApplyState against a caller-supplied clock.
func (s *RoleStatus) ApplyStateAt(to WorkflowState, subState string, errInfo *ErrorInfo, now time.Time) error {
	if !CanTransition(s.State, to) {
		return ErrIllegalTransition(s.State, to)
	}
	s.State = to
	s.SubState = subState
	if errInfo != nil {
		s.Error = errInfo
	}
	if to == StateProcessing && s.StartedAt == nil {
		s.StartedAt = &now
	}
	if to.IsTerminal() {
		s.CompletedAt = &now
	}
	return nil
}

// NewRoleStatus creates the initial status record for an accepted input.
func NewRoleStatus(workflowID string, in *OnboardingInput, stepNames []string) *RoleStatus {
	return NewRoleStatusAt(workflowID, in, stepNames, time.Now())
}

// NewRoleStatusAt is NewRoleStatus against a caller-supplied clock.
func NewRoleStatusAt(workflowID string, in *OnboardingInput, stepNames []string, now time.Time) *RoleStatus {
	return &RoleStatus{
		WorkflowID: workflowID,
		TenantID:   in.TenantID,
		RoleName:   in.RoleName,
		State:      StateDraft,
		Progress:   NewProgressInfo(stepNames),
		QueuedAt:   now,
		Metadata: map[string]any{
			"request_id": in.RequestID,
			"trace_id":   in.Context.TraceID,
			"priority":   in.Options.Priority,
		},
	}
}
