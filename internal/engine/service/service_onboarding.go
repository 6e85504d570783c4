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

package service

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/arcentrix/roleflow/internal/engine/model"
	"github.com/arcentrix/roleflow/internal/engine/repo"
	"github.com/arcentrix/roleflow/internal/pkg/workflow"
	"github.com/arcentrix/roleflow/pkg/cache"
	"github.com/arcentrix/roleflow/pkg/log"
	tracectx "github.com/arcentrix/roleflow/pkg/trace/context"
)

const queueKeyPrefix = "roleflow:queue:"

// SubmitResult is what a caller gets back at acceptance time; the rest
// of the workflow is observable through the status surface.
type SubmitResult struct {
	WorkflowID       string `json:"workflow_id"`
	QueuePosition    int    `json:"queue_position"`
	EstimatedSeconds int64  `json:"estimated_seconds"`
}

// OnboardingService accepts onboarding inputs and drives them through
// the workflow runner, asynchronously for Submit and inline for Execute.
type OnboardingService struct {
	runner           *workflow.Runner
	statusRepo       repo.IStatusRepository
	cache            cache.ICache
	estimatedSeconds int64
}

// NewOnboardingService creates the onboarding service.
func NewOnboardingService(runner *workflow.Runner, statusRepo repo.IStatusRepository, c cache.ICache, estimatedSeconds int64) *OnboardingService {
	if estimatedSeconds <= 0 {
		estimatedSeconds = 180
	}
	return &OnboardingService{
		runner:           runner,
		statusRepo:       statusRepo,
		cache:            c,
		estimatedSeconds: estimatedSeconds,
	}
}

// Submit accepts the input and runs the workflow in the background. The
// draft status record is persisted before returning so the id resolves
// immediately.
func (s *OnboardingService) Submit(ctx context.Context, in *model.OnboardingInput) (*SubmitResult, error) {
	workflowID := newWorkflowID()
	meta := &workflow.RunMeta{
		QueuePosition:    s.queuePosition(ctx, in.TenantID),
		EstimatedSeconds: s.estimatedSeconds,
	}

	draft := model.NewRoleStatus(workflowID, in, s.runner.StepNames())
	draft.QueuePosition = meta.QueuePosition
	draft.EstimatedDuration = meta.EstimatedSeconds
	if err := s.statusRepo.Set(ctx, draft); err != nil {
		return nil, fmt.Errorf("persist draft status: %w", err)
	}

	runCtx := context.WithoutCancel(ctx)
	go tracectx.RunWithContext(runCtx, func(ctx context.Context) {
		s.runner.Run(ctx, workflowID, in, meta)
	})

	log.Infow("onboarding submitted",
		"workflowId", workflowID,
		"tenantId", in.TenantID,
		"roleName", in.RoleName,
		"queuePosition", meta.QueuePosition,
	)
	return &SubmitResult{
		WorkflowID:       workflowID,
		QueuePosition:    meta.QueuePosition,
		EstimatedSeconds: meta.EstimatedSeconds,
	}, nil
}

// Execute runs the workflow inline and returns its terminal result.
// Used by delegated hosts and by callers that want a synchronous answer.
func (s *OnboardingService) Execute(ctx context.Context, in *model.OnboardingInput) *workflow.Result {
	return s.runner.Run(ctx, newWorkflowID(), in, nil)
}

// GetStatus returns the status record, or nil when absent or expired.
func (s *OnboardingService) GetStatus(ctx context.Context, workflowID string) (*model.RoleStatus, error) {
	return s.statusRepo.Get(ctx, workflowID)
}

// Resubmit re-runs a failed or stale workflow under its original id.
// Only recoverable failures qualify; validation errors need a corrected
// input and a fresh submission.
func (s *OnboardingService) Resubmit(ctx context.Context, workflowID string, in *model.OnboardingInput) (*SubmitResult, error) {
	status, err := s.statusRepo.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, model.NewError("workflow_not_found",
			fmt.Sprintf("no status record for workflow %s", workflowID),
			model.ErrCategoryBusiness, false)
	}
	if !model.CanTransition(status.State, model.StateQueued) {
		return nil, model.NewError("resubmit_rejected",
			fmt.Sprintf("workflow %s is %s and cannot be resubmitted", workflowID, status.State),
			model.ErrCategoryBusiness, false)
	}
	if status.State == model.StateFailed && status.Error != nil && !status.Error.Recoverable {
		return nil, model.NewError("resubmit_rejected",
			fmt.Sprintf("workflow %s failed with a non-recoverable error", workflowID),
			model.ErrCategoryBusiness, false)
	}

	meta := &workflow.RunMeta{
		QueuePosition:    s.queuePosition(ctx, in.TenantID),
		EstimatedSeconds: s.estimatedSeconds,
	}

	// Replace the terminal record with a fresh draft before the run
	// starts so readers never see the stale outcome.
	draft := model.NewRoleStatus(workflowID, in, s.runner.StepNames())
	draft.QueuePosition = meta.QueuePosition
	draft.EstimatedDuration = meta.EstimatedSeconds
	if err := s.statusRepo.Set(ctx, draft); err != nil {
		return nil, fmt.Errorf("persist draft status: %w", err)
	}

	runCtx := context.WithoutCancel(ctx)
	go tracectx.RunWithContext(runCtx, func(ctx context.Context) {
		s.runner.Run(ctx, workflowID, in, meta)
	})

	log.Infow("onboarding resubmitted",
		"workflowId", workflowID,
		"previousState", status.State,
	)
	return &SubmitResult{
		WorkflowID:       workflowID,
		QueuePosition:    meta.QueuePosition,
		EstimatedSeconds: meta.EstimatedSeconds,
	}, nil
}

// Delete removes the status record ahead of its TTL.
func (s *OnboardingService) Delete(ctx context.Context, workflowID string) error {
	return s.statusRepo.Delete(ctx, workflowID)
}

// queuePosition ticks the per-tenant submission counter. Position is a
// hint for callers; counter failures degrade to zero instead of
// blocking acceptance.
func (s *OnboardingService) queuePosition(ctx context.Context, tenantID string) int {
	pos, err := s.cache.Incr(ctx, queueKeyPrefix+tenantID)
	if err != nil {
		log.Warnw("queue position counter failed", "tenantId", tenantID, "error", err)
		return 0
	}
	return int(pos)
}

// newWorkflowID returns a sortable workflow id.
func newWorkflowID() string {
	return "wf-" + ulid.Make().String()
}
