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

package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arcentrix/roleflow/internal/engine/model"
	"github.com/arcentrix/roleflow/internal/pkg/retry"
)

func testInput() *model.OnboardingInput {
	return model.NewOnboardingInput("acme", "Pharmacist", model.NewExecutionContext("acme", "tester", ""))
}

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{
		InitialInterval:    time.Millisecond,
		BackoffCoefficient: 1.0,
		MaximumInterval:    time.Millisecond,
		MaximumAttempts:    attempts,
		NonRetryableErrors: []model.ErrorCategory{model.ErrCategoryValidation, model.ErrCategoryAuth},
	}
}

func TestExecuteSuccessStampsMetrics(t *testing.T) {
	in := testInput()
	ex := NewExecutor(fastPolicy(3), 0)

	result := ex.Execute(context.Background(), "role_setup", in, func(ctx context.Context, in *model.OnboardingInput) (map[string]any, error) {
		CountExternalCall(ctx)
		return map[string]any{"role_id": "r-1"}, nil
	})

	if !result.Succeeded() {
		t.Fatalf("expected success, got %s", result.Status)
	}
	if result.RequestID != in.RequestID {
		t.Fatalf("request id not echoed: %q != %q", result.RequestID, in.RequestID)
	}
	if result.Result["role_id"] != "r-1" {
		t.Fatalf("unexpected payload: %v", result.Result)
	}
	if result.Metrics.StartedAt == nil || result.Metrics.EndedAt == nil {
		t.Fatalf("metrics missing timestamps")
	}
	if result.Metrics.RetryCount != 0 || result.Metrics.ExternalCalls != 1 {
		t.Fatalf("metrics = %+v, want single call no retries", result.Metrics)
	}
}

func TestExecuteRetriesThenSucceeds(t *testing.T) {
	in := testInput()
	ex := NewExecutor(fastPolicy(3), 0)
	calls := 0

	result := ex.Execute(context.Background(), "role_setup", in, func(ctx context.Context, in *model.OnboardingInput) (map[string]any, error) {
		calls++
		CountExternalCall(ctx)
		if calls < 2 {
			return nil, errors.New("transient")
		}
		return map[string]any{"role_id": "r-1"}, nil
	})

	if !result.Succeeded() {
		t.Fatalf("expected success after retry, got %s", result.Status)
	}
	if result.Metrics.RetryCount != 1 || result.Metrics.ExternalCalls != 2 {
		t.Fatalf("metrics = %+v, want 1 retry over 2 calls", result.Metrics)
	}
}

func TestExecuteFailureBuildsErrorInfo(t *testing.T) {
	in := testInput()
	ex := NewExecutor(fastPolicy(2), 0)

	result := ex.Execute(context.Background(), "assessment", in, func(ctx context.Context, in *model.OnboardingInput) (map[string]any, error) {
		CountExternalCall(ctx)
		return nil, model.NewError("assessment_unavailable", "backend down", model.ErrCategoryTransient, true)
	})

	if result.Status != model.ActivityStatusFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}
	if result.Error == nil || result.Error.Code != "assessment_unavailable" {
		t.Fatalf("error info = %+v", result.Error)
	}
	if !result.Error.Recoverable {
		t.Fatalf("transient failure should stay recoverable")
	}
	if result.Metrics.ExternalCalls != 2 {
		t.Fatalf("expected both attempts counted, got %d", result.Metrics.ExternalCalls)
	}
}

func TestExecuteNonRetryableDefaultsToNotRecoverable(t *testing.T) {
	in := testInput()
	ex := NewExecutor(fastPolicy(3), 0)
	calls := 0

	result := ex.Execute(context.Background(), "role_setup", in, func(ctx context.Context, in *model.OnboardingInput) (map[string]any, error) {
		calls++
		return nil, model.NewError("forbidden", "no access", model.ErrCategoryAuth, false)
	})

	if calls != 1 {
		t.Fatalf("non-retryable error retried %d times", calls)
	}
	if result.Error == nil || result.Error.Recoverable {
		t.Fatalf("auth failure should not be recoverable: %+v", result.Error)
	}
}

func TestExecuteCountsOnlyIssuedCalls(t *testing.T) {
	in := testInput()
	ex := NewExecutor(fastPolicy(3), 0)
	attempt := 0

	// First attempt dies before reaching the collaborator, second
	// issues one real call. Attempts and calls must diverge.
	result := ex.Execute(context.Background(), "role_setup", in, func(ctx context.Context, in *model.OnboardingInput) (map[string]any, error) {
		attempt++
		if attempt == 1 {
			return nil, errors.New("marshal request body")
		}
		CountExternalCall(ctx)
		return map[string]any{"role_id": "r-1"}, nil
	})

	if !result.Succeeded() {
		t.Fatalf("expected success, got %s", result.Status)
	}
	if result.Metrics.RetryCount != 1 {
		t.Fatalf("retry count = %d, want 1", result.Metrics.RetryCount)
	}
	if result.Metrics.ExternalCalls != 1 {
		t.Fatalf("external calls = %d, want only the issued call counted", result.Metrics.ExternalCalls)
	}
}

func TestExecuteNoCallsReportsZero(t *testing.T) {
	in := testInput()
	ex := NewExecutor(fastPolicy(2), 0)

	result := ex.Execute(context.Background(), "role_setup", in, func(ctx context.Context, in *model.OnboardingInput) (map[string]any, error) {
		return nil, model.NewError("forbidden", "no access", model.ErrCategoryAuth, false)
	})

	if result.Status != model.ActivityStatusFailed {
		t.Fatalf("status = %s, want failed", result.Status)
	}
	if result.Metrics.ExternalCalls != 0 {
		t.Fatalf("external calls = %d, want 0 when no call was issued", result.Metrics.ExternalCalls)
	}
}

func TestWithRetryReturnsFinalValueOrLastError(t *testing.T) {
	calls := 0
	fn := WithRetry(fastPolicy(3), 0, func(ctx context.Context) (map[string]any, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return map[string]any{"score": 62.5}, nil
	})
	payload, err := fn(context.Background())
	if err != nil {
		t.Fatalf("WithRetry error: %v", err)
	}
	if payload["score"] != 62.5 {
		t.Fatalf("unexpected payload: %v", payload)
	}

	calls = 0
	lastErr := errors.New("still broken")
	fn = WithRetry(fastPolicy(2), 0, func(ctx context.Context) (map[string]any, error) {
		calls++
		return nil, lastErr
	})
	if _, err := fn(context.Background()); !errors.Is(err, lastErr) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}
