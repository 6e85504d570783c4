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
	"time"

	"github.com/arcentrix/roleflow/internal/engine/model"
)

// Fn is one retryable unit of work producing a payload.
type Fn func(ctx context.Context) (map[string]any, error)

// Do runs fn under policy until success, a non-retryable error, or
// attempt exhaustion. A timeout > 0 bounds the whole operation by wall
// clock, independently of attempts remaining. Returns the payload, the
// number of attempts made, and the final error.
func Do(ctx context.Context, policy Policy, timeout time.Duration, fn Fn) (map[string]any, int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	attempts := 0
	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, attempts, timeoutError(err, lastErr)
		}

		attempts++
		payload, err := fn(ctx)
		if err == nil {
			return payload, attempts, nil
		}
		lastErr = err

		if errors.Is(err, context.DeadlineExceeded) {
			return nil, attempts, timeoutError(err, lastErr)
		}
		if !policy.Retryable(err, attempt) {
			return nil, attempts, err
		}

		select {
		case <-ctx.Done():
			return nil, attempts, timeoutError(ctx.Err(), lastErr)
		case <-time.After(policy.BackoffFor(attempt)):
		}
	}
}

// timeoutError surfaces a wall-clock expiry as a timeout-classified error.
func timeoutError(cause, lastErr error) error {
	if errors.Is(cause, context.Canceled) && lastErr != nil {
		cause = lastErr
	}
	return model.WrapError("operation_timeout", model.ErrCategoryTimeout, true, cause)
}
