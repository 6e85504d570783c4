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

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arcentrix/roleflow/internal/engine/model"
)

func TestBackoffForExponentialWithCap(t *testing.T) {
	policy := Policy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    5 * time.Minute,
		MaximumAttempts:    3,
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for attempt, expected := range want {
		if got := policy.BackoffFor(attempt); got != expected {
			t.Fatalf("BackoffFor(%d) = %v, want %v", attempt, got, expected)
		}
	}
	// Large attempt counts hit the cap.
	if got := policy.BackoffFor(30); got != 5*time.Minute {
		t.Fatalf("BackoffFor(30) = %v, want cap 5m", got)
	}
}

func TestRetryableRespectsAttemptBudget(t *testing.T) {
	policy := DefaultActivityPolicy() // 3 attempts
	err := errors.New("connection reset")
	if !policy.Retryable(err, 0) || !policy.Retryable(err, 1) {
		t.Fatalf("attempts 0 and 1 should be retryable")
	}
	if policy.Retryable(err, 2) {
		t.Fatalf("final attempt must not be retryable")
	}
}

func TestRetryableNonRetryableCategory(t *testing.T) {
	policy := DefaultActivityPolicy()
	err := model.NewError("duplicate_role", "role exists", model.ErrCategoryConstraint, false)
	if policy.Retryable(err, 0) {
		t.Fatalf("constraint errors must not be retried")
	}
	rateLimited := model.NewError("throttled", "slow down", model.ErrCategoryRateLimit, true)
	if !ModelBackendPolicy().Retryable(rateLimited, 0) {
		t.Fatalf("model backend policy should tolerate rate limits")
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	policy := Policy{
		InitialInterval:    time.Millisecond,
		BackoffCoefficient: 1.0,
		MaximumInterval:    time.Millisecond,
		MaximumAttempts:    3,
	}
	calls := 0
	payload, attempts, err := Do(context.Background(), policy, 0, func(ctx context.Context) (map[string]any, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return map[string]any{"ok": true}, nil
	})
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if attempts != 3 || calls != 3 {
		t.Fatalf("attempts = %d calls = %d, want 3", attempts, calls)
	}
	if payload["ok"] != true {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestDoNonRetryablePropagatesImmediately(t *testing.T) {
	policy := DefaultActivityPolicy()
	policy.InitialInterval = time.Millisecond
	calls := 0
	fatal := model.NewError("forbidden", "no access", model.ErrCategoryAuth, false)
	_, attempts, err := Do(context.Background(), policy, 0, func(ctx context.Context) (map[string]any, error) {
		calls++
		return nil, fatal
	})
	if calls != 1 || attempts != 1 {
		t.Fatalf("non-retryable error consumed %d attempts, want 1", calls)
	}
	if !errors.Is(err, fatal) {
		t.Fatalf("expected original error, got %v", err)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	policy := Policy{
		InitialInterval:    time.Millisecond,
		BackoffCoefficient: 1.0,
		MaximumInterval:    time.Millisecond,
		MaximumAttempts:    3,
	}
	calls := 0
	_, attempts, err := Do(context.Background(), policy, 0, func(ctx context.Context) (map[string]any, error) {
		calls++
		return nil, errors.New("still down")
	})
	if err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if calls != 3 || attempts != 3 {
		t.Fatalf("calls = %d attempts = %d, want 3", calls, attempts)
	}
}

func TestDoTimeoutEndsOperationEarly(t *testing.T) {
	policy := Policy{
		InitialInterval:    time.Hour, // backoff far longer than the timeout
		BackoffCoefficient: 2.0,
		MaximumInterval:    time.Hour,
		MaximumAttempts:    5,
	}
	start := time.Now()
	_, _, err := Do(context.Background(), policy, 50*time.Millisecond, func(ctx context.Context) (map[string]any, error) {
		return nil, errors.New("transient")
	})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if model.CategoryOf(err) != model.ErrCategoryTimeout {
		t.Fatalf("error category = %s, want timeout", model.CategoryOf(err))
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("timeout did not end operation early, elapsed %v", elapsed)
	}
}

func TestNoRetryPolicySingleAttempt(t *testing.T) {
	calls := 0
	_, attempts, err := Do(context.Background(), NoRetryPolicy(), 0, func(ctx context.Context) (map[string]any, error) {
		calls++
		return nil, errors.New("boom")
	})
	if err == nil || calls != 1 || attempts != 1 {
		t.Fatalf("no-retry policy made %d calls, want exactly 1", calls)
	}
}
