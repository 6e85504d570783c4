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
	"sync/atomic"
	"time"

	"github.com/arcentrix/roleflow/internal/engine/model"
	"github.com/arcentrix/roleflow/internal/pkg/retry"
	"github.com/arcentrix/roleflow/pkg/log"
)

// Work is one unit of work with side effects outside the orchestrator.
// Execution is at-least-once; idempotency is each activity's own
// external-effect contract.
type Work func(ctx context.Context, in *model.OnboardingInput) (map[string]any, error)

type callCounterKey struct{}

// CountExternalCall records one outbound collaborator call against the
// counter Execute installed on the context. Callers record a call at
// the moment the request is issued, so an attempt that fails before
// reaching the collaborator contributes nothing.
func CountExternalCall(ctx context.Context) {
	if counter, ok := ctx.Value(callCounterKey{}).(*atomic.Int64); ok {
		counter.Add(1)
	}
}

// Executor wraps work with timing, retry, and structured results.
type Executor struct {
	policy  retry.Policy
	timeout time.Duration
}

// NewExecutor creates an executor governed by the given retry policy and
// per-execution wall-clock timeout.
func NewExecutor(policy retry.Policy, timeout time.Duration) *Executor {
	return &Executor{policy: policy, timeout: timeout}
}

// Execute runs work and wraps the outcome as an ActivityResult. The
// request id of the input is echoed on the result; metrics always carry
// start/end timestamps, duration, the retry count, and the number of
// outbound calls the work reported through CountExternalCall.
func (e *Executor) Execute(ctx context.Context, name string, in *model.OnboardingInput, work Work) *model.ActivityResult {
	start := time.Now()

	var calls atomic.Int64
	ctx = context.WithValue(ctx, callCounterKey{}, &calls)

	payload, attempts, err := retry.Do(ctx, e.policy, e.timeout, func(ctx context.Context) (map[string]any, error) {
		return work(ctx, in)
	})

	end := time.Now()
	metrics := model.ExecutionMetrics{
		Duration:      end.Sub(start).Milliseconds(),
		ExternalCalls: int(calls.Load()),
		RetryCount:    attempts - 1,
		StartedAt:     &start,
		EndedAt:       &end,
	}
	if metrics.RetryCount < 0 {
		metrics.RetryCount = 0
	}

	if err != nil {
		log.Errorw("activity failed",
			"activity", name,
			"requestId", in.RequestID,
			"attempts", attempts,
			"error", err,
		)
		return model.NewFailureResult(in.RequestID, err, metrics)
	}

	return model.NewSuccessResult(in.RequestID, payload, metrics)
}

// WithRetry applies the retry policy around a plain function and returns
// its final value or the last error after exhausting attempts. This is
// the form registered with an external durable-execution engine, whose
// own retry machinery then becomes authoritative.
func WithRetry(policy retry.Policy, timeout time.Duration, fn retry.Fn) retry.Fn {
	return func(ctx context.Context) (map[string]any, error) {
		payload, _, err := retry.Do(ctx, policy, timeout, fn)
		return payload, err
	}
}
