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
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arcentrix/roleflow/internal/engine/model"
	"github.com/arcentrix/roleflow/internal/engine/repo"
	"github.com/arcentrix/roleflow/internal/pkg/collaborator"
	"github.com/arcentrix/roleflow/internal/pkg/workflow"
	"github.com/arcentrix/roleflow/pkg/cache"
)

type fakeRoleSetup struct {
	mu        sync.Mutex
	createErr error
	linked    int
}

func (f *fakeRoleSetup) CreateRole(ctx context.Context, tenant, roleName, label string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return "r-1", nil
}

func (f *fakeRoleSetup) LinkDocument(ctx context.Context, roleID, content, title string) (bool, error) {
	f.mu.Lock()
	f.linked++
	f.mu.Unlock()
	return true, nil
}

type fakeAssessment struct {
	score float64
	err   error
}

func (f *fakeAssessment) RunAssessment(ctx context.Context, tenant, roleName, roleID string, deleteExisting bool) (*collaborator.AssessmentReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &collaborator.AssessmentReport{Score: f.score}, nil
}

type testEnv struct {
	onboarding *OnboardingService
	batch      *BatchService
	statusRepo repo.IStatusRepository
	batchRepo  repo.IBatchRepository
}

func newTestEnv(roleSetup collaborator.RoleSetupClient, assessment collaborator.AssessmentClient) *testEnv {
	c := cache.NewMemoryCache()
	statusRepo := repo.NewStatusRepo(c, time.Hour)
	batchRepo := repo.NewBatchRepo(c, time.Hour)

	runner := workflow.NewRunner(NewOnboardingSteps(roleSetup, assessment), workflow.NewLocalHost(), statusRepo)
	onboarding := NewOnboardingService(runner, statusRepo, c, 120)
	return &testEnv{
		onboarding: onboarding,
		batch:      NewBatchService(onboarding, batchRepo, statusRepo),
		statusRepo: statusRepo,
		batchRepo:  batchRepo,
	}
}

func waitForTerminal(t *testing.T, env *testEnv, workflowID string) *model.RoleStatus {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		status, err := env.onboarding.GetStatus(context.Background(), workflowID)
		if err != nil {
			t.Fatalf("GetStatus: %v", err)
		}
		if status != nil && status.State.IsTerminal() {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("workflow %s did not reach a terminal state", workflowID)
	return nil
}

func newInput(tenant, roleName string) *model.OnboardingInput {
	return model.NewOnboardingInput(tenant, roleName, model.NewExecutionContext(tenant, "tester", ""))
}

func TestSubmitAndComplete(t *testing.T) {
	setup := &fakeRoleSetup{}
	env := newTestEnv(setup, &fakeAssessment{score: 62.5})

	in := newInput("acme", "Pharmacist")
	in.Documents = []model.DocumentReference{
		{Type: "job_description", Content: "dispenses medication"},
		{Type: "note", Name: "empty"},
	}
	res, err := env.onboarding.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !strings.HasPrefix(res.WorkflowID, "wf-") {
		t.Fatalf("workflow id = %q", res.WorkflowID)
	}
	if res.QueuePosition != 1 {
		t.Fatalf("queue position = %d, want 1", res.QueuePosition)
	}
	if res.EstimatedSeconds != 120 {
		t.Fatalf("estimated seconds = %d, want 120", res.EstimatedSeconds)
	}

	status := waitForTerminal(t, env, res.WorkflowID)
	if status.State != model.StateReady {
		t.Fatalf("state = %s, want ready (%+v)", status.State, status.Error)
	}
	if status.RoleID != "r-1" {
		t.Fatalf("role id = %q, want r-1", status.RoleID)
	}
	if !strings.Contains(status.DashboardURL, "r-1") {
		t.Fatalf("dashboard url = %q", status.DashboardURL)
	}
	if status.Progress.Current != 2 || status.Progress.Total != 2 {
		t.Fatalf("progress = %d/%d", status.Progress.Current, status.Progress.Total)
	}
	if setup.linked != 1 {
		t.Fatalf("linked documents = %d, want 1 (empty reference skipped)", setup.linked)
	}

	// Queue position ticks per tenant.
	res2, err := env.onboarding.Submit(context.Background(), newInput("acme", "Nurse"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res2.QueuePosition != 2 {
		t.Fatalf("queue position = %d, want 2", res2.QueuePosition)
	}
}

func TestSubmitValidationError(t *testing.T) {
	env := newTestEnv(&fakeRoleSetup{}, &fakeAssessment{score: 1})

	res, err := env.onboarding.Submit(context.Background(), newInput("acme", ""))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	status := waitForTerminal(t, env, res.WorkflowID)
	if status.State != model.StateValidationError {
		t.Fatalf("state = %s, want validation_error", status.State)
	}

	// validation_error cannot reach queued, so resubmission is rejected.
	if _, err := env.onboarding.Resubmit(context.Background(), res.WorkflowID, newInput("acme", "Pharmacist")); err == nil {
		t.Fatalf("expected resubmit rejection for validation_error")
	}
}

func TestSubmitFailureIsNonRecoverable(t *testing.T) {
	setup := &fakeRoleSetup{
		createErr: model.NewError("role_setup_rejected", "role name rejected", model.ErrCategoryBusiness, false),
	}
	env := newTestEnv(setup, &fakeAssessment{score: 1})

	res, err := env.onboarding.Submit(context.Background(), newInput("acme", "Pharmacist"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	status := waitForTerminal(t, env, res.WorkflowID)
	if status.State != model.StateFailed {
		t.Fatalf("state = %s, want failed", status.State)
	}
	if status.Error == nil || status.Error.Recoverable {
		t.Fatalf("error = %+v, want non-recoverable", status.Error)
	}

	if _, err := env.onboarding.Resubmit(context.Background(), res.WorkflowID, newInput("acme", "Pharmacist")); err == nil {
		t.Fatalf("expected resubmit rejection for non-recoverable failure")
	}
}

func TestResubmitRecoverableFailure(t *testing.T) {
	env := newTestEnv(&fakeRoleSetup{}, &fakeAssessment{score: 42})

	// Seed a failed record with a recoverable error, as left behind by a
	// run that exhausted its retry budget against a flaky backend.
	in := newInput("acme", "Pharmacist")
	failed := model.NewRoleStatus("wf-recover", in, []string{StepRoleSetup, StepAssessment})
	if err := failed.ApplyState(model.StateQueued, "", nil); err != nil {
		t.Fatalf("ApplyState: %v", err)
	}
	if err := failed.ApplyState(model.StateProcessing, "", nil); err != nil {
		t.Fatalf("ApplyState: %v", err)
	}
	transient := model.NewError("assessment_unavailable", "backend down", model.ErrCategoryTransient, true)
	if err := failed.ApplyState(model.StateFailed, "", model.NewErrorInfo(transient)); err != nil {
		t.Fatalf("ApplyState: %v", err)
	}
	if err := env.statusRepo.Set(context.Background(), failed); err != nil {
		t.Fatalf("Set: %v", err)
	}

	res, err := env.onboarding.Resubmit(context.Background(), "wf-recover", in)
	if err != nil {
		t.Fatalf("Resubmit: %v", err)
	}
	if res.WorkflowID != "wf-recover" {
		t.Fatalf("resubmission must keep the workflow id, got %q", res.WorkflowID)
	}
	status := waitForTerminal(t, env, "wf-recover")
	if status.State != model.StateReady {
		t.Fatalf("state = %s, want ready", status.State)
	}
}

func TestResubmitUnknownWorkflow(t *testing.T) {
	env := newTestEnv(&fakeRoleSetup{}, &fakeAssessment{score: 1})
	if _, err := env.onboarding.Resubmit(context.Background(), "wf-missing", newInput("acme", "Pharmacist")); err == nil {
		t.Fatalf("expected error for unknown workflow")
	}
}

func TestExecuteInline(t *testing.T) {
	env := newTestEnv(&fakeRoleSetup{}, &fakeAssessment{score: 88})
	result := env.onboarding.Execute(context.Background(), newInput("acme", "Pharmacist"))
	if !result.Succeeded() {
		t.Fatalf("inline execution failed: %+v", result.Error)
	}
	if result.RoleID != "r-1" {
		t.Fatalf("role id = %q", result.RoleID)
	}
}

func TestDeleteStatus(t *testing.T) {
	env := newTestEnv(&fakeRoleSetup{}, &fakeAssessment{score: 1})
	res, err := env.onboarding.Submit(context.Background(), newInput("acme", "Pharmacist"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitForTerminal(t, env, res.WorkflowID)
	if err := env.onboarding.Delete(context.Background(), res.WorkflowID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	status, err := env.onboarding.GetStatus(context.Background(), res.WorkflowID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status != nil {
		t.Fatalf("status survived delete")
	}
}

func TestSubmitBatchAndAggregate(t *testing.T) {
	env := newTestEnv(&fakeRoleSetup{}, &fakeAssessment{score: 62.5})

	rec, err := env.batch.SubmitBatch(context.Background(), []*model.OnboardingInput{
		newInput("acme", "Pharmacist"),
		newInput("acme", "Nurse"),
	}, "tester")
	if err != nil {
		t.Fatalf("SubmitBatch: %v", err)
	}
	if rec.Count != 2 {
		t.Fatalf("batch count = %d, want 2", rec.Count)
	}
	for _, id := range rec.WorkflowIDs {
		waitForTerminal(t, env, id)
	}

	bs, err := env.batch.GetBatchStatus(context.Background(), rec.BatchID)
	if err != nil {
		t.Fatalf("GetBatchStatus: %v", err)
	}
	if bs.State != model.BatchStateCompleted {
		t.Fatalf("batch state = %s, want completed", bs.State)
	}
	if bs.Completed != 2 || bs.Failed != 0 || bs.Queued != 0 {
		t.Fatalf("batch counts = %+v", bs)
	}
}

func TestBatchAbsentMemberCountsAsQueued(t *testing.T) {
	env := newTestEnv(&fakeRoleSetup{}, &fakeAssessment{score: 1})

	rec, err := env.batchRepo.Create(context.Background(), "acme", []string{"wf-gone"}, "tester")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	bs, err := env.batch.GetBatchStatus(context.Background(), rec.BatchID)
	if err != nil {
		t.Fatalf("GetBatchStatus: %v", err)
	}
	if bs.Queued != 1 || bs.State != model.BatchStatePending {
		t.Fatalf("batch status = %+v", bs)
	}
}

func TestGetBatchStatusAbsent(t *testing.T) {
	env := newTestEnv(&fakeRoleSetup{}, &fakeAssessment{score: 1})
	bs, err := env.batch.GetBatchStatus(context.Background(), "no-such-batch")
	if err != nil {
		t.Fatalf("GetBatchStatus: %v", err)
	}
	if bs != nil {
		t.Fatalf("expected nil for absent batch")
	}
}

func TestSubmitBatchEmpty(t *testing.T) {
	env := newTestEnv(&fakeRoleSetup{}, &fakeAssessment{score: 1})
	if _, err := env.batch.SubmitBatch(context.Background(), nil, "tester"); err == nil {
		t.Fatalf("expected error for empty batch")
	}
}
