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

package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/arcentrix/roleflow/internal/engine/model"
	"github.com/arcentrix/roleflow/pkg/event"
	"github.com/arcentrix/roleflow/pkg/log"
	"github.com/arcentrix/roleflow/pkg/metrics"
)

// StatusSink is the slice of the status store the orchestrator writes
// through. The orchestrator owns the record for the lifetime of a run
// and persists full snapshots; concurrent same-id writers are a
// last-writer-wins race tolerated by every reader.
type StatusSink interface {
	Set(ctx context.Context, status *model.RoleStatus) error
}

// StepResult pairs a step name with its activity result, in declaration
// order.
type StepResult struct {
	Name   string                `json:"name"`
	Result *model.ActivityResult `json:"result"`
}

// Result is the terminal outcome of one workflow run. It mirrors the
// activity result envelope: status tag, payload on success, structured
// error on failure.
type Result struct {
	WorkflowID   string               `json:"workflow_id"`
	RequestID    string               `json:"request_id"`
	Status       model.ActivityStatus `json:"status"`
	StepResults  []StepResult         `json:"step_results,omitempty"`
	Outputs      map[string]any       `json:"outputs,omitempty"`
	RoleID       string               `json:"role_id,omitempty"`
	DashboardURL string               `json:"dashboard_url,omitempty"`
	Error        *model.ErrorInfo     `json:"error,omitempty"`
}

// Succeeded reports whether the workflow reached ready.
func (r *Result) Succeeded() bool {
	return r != nil && r.Status == model.ActivityStatusSuccess
}

// RunMeta carries submission-time decorations for the status record.
type RunMeta struct {
	QueuePosition    int
	EstimatedSeconds int64
}

// Option configures a Runner.
type Option func(*Runner)

// WithDashboardBase sets the base URL for result dashboards.
func WithDashboardBase(base string) Option {
	return func(r *Runner) { r.dashboardBase = base }
}

// WithEventBus attaches a bus that receives terminal lifecycle events
// for inputs flagged notify-on-complete.
func WithEventBus(bus *event.Bus) Option {
	return func(r *Runner) { r.bus = bus }
}

// Runner drives one fixed, ordered list of workflow steps to a terminal
// state, updating the role status after every transition.
type Runner struct {
	steps         []Step
	host          ExecutionHost
	statuses      StatusSink
	dashboardBase string
	bus           *event.Bus
}

// NewRunner creates a workflow runner.
func NewRunner(steps []Step, host ExecutionHost, statuses StatusSink, opts ...Option) *Runner {
	r := &Runner{
		steps:         steps,
		host:          host,
		statuses:      statuses,
		dashboardBase: "https://dashboard.roleflow.dev",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// StepNames returns the configured step names in declaration order.
func (r *Runner) StepNames() []string {
	names := make([]string, 0, len(r.steps))
	for _, step := range r.steps {
		names = append(names, step.Name)
	}
	return names
}

// Run executes the workflow for one input. Steps run strictly in
// declaration order; a failed required step ends the run immediately.
// Retries happen inside a step, never across completed steps.
func (r *Runner) Run(ctx context.Context, workflowID string, in *model.OnboardingInput, meta *RunMeta) *Result {
	in.Options.Normalize()

	status := model.NewRoleStatusAt(workflowID, in, r.StepNames(), r.host.Now())
	if meta != nil {
		status.QueuePosition = meta.QueuePosition
		status.EstimatedDuration = meta.EstimatedSeconds
	}

	result := &Result{
		WorkflowID: workflowID,
		RequestID:  in.RequestID,
		Outputs:    make(map[string]any),
	}

	// Validation failures never run a step.
	if missing := in.ValidateForProcessing(); len(missing) > 0 {
		validationErr := model.NewError("input_validation_failed",
			fmt.Sprintf("input validation failed: %v", missing),
			model.ErrCategoryValidation, false,
		).WithDetails(map[string]any{"missing": missing})
		r.transition(ctx, status, model.StateValidationError, "", model.NewErrorInfo(validationErr))
		result.Status = model.ActivityStatusFailed
		result.Error = status.Error
		r.notify(in, status)
		return result
	}

	metrics.WorkflowsStarted.Inc()
	r.transition(ctx, status, model.StateQueued, "", nil)
	r.transition(ctx, status, model.StateProcessing, "", nil)

	carry := NewCarry()
	for _, step := range r.steps {
		status.Progress.UpdateStepAt(step.Name, model.StepStatusRunning, 0, "", r.host.Now())
		status.SubState = step.SubState
		r.persist(ctx, status)

		stepStart := r.host.Now()
		stepResult := r.execStep(ctx, step, in, carry)
		stepElapsed := r.host.Now().Sub(stepStart)
		result.StepResults = append(result.StepResults, StepResult{Name: step.Name, Result: stepResult})

		if !stepResult.Succeeded() {
			status.Progress.UpdateStepAt(step.Name, model.StepStatusFailed, stepElapsed, stepErrorMessage(stepResult), r.host.Now())
			if step.Required {
				// Fail fast: remaining steps never run.
				r.transition(ctx, status, model.StateFailed, step.SubState, stepResult.Error)
				r.markRemainingSkipped(status, step.Name)
				r.persist(ctx, status)
				metrics.WorkflowsFailed.Inc()
				result.Status = model.ActivityStatusFailed
				result.Error = stepResult.Error
				r.notify(in, status)
				return result
			}
			log.Warnw("optional step failed, continuing",
				"workflowId", workflowID,
				"step", step.Name,
			)
			r.persist(ctx, status)
			continue
		}

		carry.Merge(stepResult.Result)
		status.RoleID = carry.RoleID
		status.Progress.UpdateStepAt(step.Name, model.StepStatusCompleted, stepElapsed, "", r.host.Now())
		metrics.StepDuration.WithLabelValues(step.Name).Observe(stepElapsed.Seconds())
		r.persist(ctx, status)
	}

	status.RoleID = carry.RoleID
	status.DashboardURL = r.DashboardURL(in.TenantID, carry.RoleID)
	r.transition(ctx, status, model.StateReady, "", nil)
	metrics.WorkflowsCompleted.Inc()

	result.Status = model.ActivityStatusSuccess
	result.Outputs = carry.Outputs
	result.RoleID = carry.RoleID
	result.DashboardURL = status.DashboardURL
	r.notify(in, status)
	return result
}

// execStep shields the run loop from panicking steps: an unexpected
// failure during step execution is wrapped as a generic step-execution
// error and handled like any required-step failure.
func (r *Runner) execStep(ctx context.Context, step Step, in *model.OnboardingInput, carry *Carry) (result *model.ActivityResult) {
	defer func() {
		if p := recover(); p != nil {
			log.Errorw("step panicked",
				"step", step.Name,
				"requestId", in.RequestID,
				"panic", p,
			)
			err := model.NewError("step_execution_error",
				fmt.Sprintf("step %s execution error: %v", step.Name, p),
				model.ErrCategoryInternal, false)
			result = model.NewFailureResult(in.RequestID, err, model.ExecutionMetrics{})
		}
	}()
	return r.host.RunStep(ctx, step, in, carry)
}

func stepErrorMessage(result *model.ActivityResult) string {
	if result == nil || result.Error == nil {
		return "step failed"
	}
	return result.Error.Message
}

// DashboardURL derives the result dashboard location deterministically
// from tenant and role id.
func (r *Runner) DashboardURL(tenantID, roleID string) string {
	return fmt.Sprintf("%s/t/%s/roles/%s", r.dashboardBase, tenantID, roleID)
}

func (r *Runner) markRemainingSkipped(status *model.RoleStatus, failedStep string) {
	seen := false
	for _, step := range r.steps {
		if step.Name == failedStep {
			seen = true
			continue
		}
		if seen {
			status.Progress.UpdateStepAt(step.Name, model.StepStatusSkipped, 0, "", r.host.Now())
		}
	}
}

// transition applies a lifecycle transition to the local record and
// persists the snapshot. Illegal transitions indicate an orchestrator
// bug and are logged loudly.
func (r *Runner) transition(ctx context.Context, status *model.RoleStatus, to model.WorkflowState, subState string, errInfo *model.ErrorInfo) {
	if err := status.ApplyStateAt(to, subState, errInfo, r.host.Now()); err != nil {
		log.Errorw("illegal lifecycle transition",
			"workflowId", status.WorkflowID,
			"from", status.State,
			"to", to,
			"error", err,
		)
		return
	}
	r.persist(ctx, status)
}

// persist writes the status snapshot when the host permits direct I/O.
// Write failures are logged and swallowed: status is advisory telemetry
// and must never decide the fate of the workflow itself.
func (r *Runner) persist(ctx context.Context, status *model.RoleStatus) {
	if !r.host.PersistAllowed() {
		return
	}
	if err := r.statuses.Set(ctx, status); err != nil {
		log.Errorw("persist status failed",
			"workflowId", status.WorkflowID,
			"state", status.State,
			"error", err,
		)
	}
}

// notify publishes a terminal lifecycle event for inputs that asked for
// it. Delegated hosts skip this side effect along with every other one.
func (r *Runner) notify(in *model.OnboardingInput, status *model.RoleStatus) {
	if r.bus == nil || !in.Options.NotifyOnComplete || !r.host.PersistAllowed() {
		return
	}
	r.bus.Publish(&LifecycleEvent{
		WorkflowID: status.WorkflowID,
		TenantID:   status.TenantID,
		RoleName:   status.RoleName,
		RoleID:     status.RoleID,
		State:      status.State,
		At:         r.host.Now(),
	})
}

// LifecycleEvent announces a terminal workflow state.
type LifecycleEvent struct {
	WorkflowID string              `json:"workflow_id"`
	TenantID   string              `json:"tenant_id"`
	RoleName   string              `json:"role_name"`
	RoleID     string              `json:"role_id,omitempty"`
	State      model.WorkflowState `json:"state"`
	At         time.Time           `json:"at"`
}

// EventName implements event.Event.
func (e *LifecycleEvent) EventName() string {
	return "role.lifecycle.terminal"
}
