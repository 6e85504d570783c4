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
	"math"
	"time"

	"github.com/arcentrix/roleflow/internal/engine/model"
)

// Policy controls backoff and retryability for one class of operations.
type Policy struct {
	InitialInterval    time.Duration
	BackoffCoefficient float64
	MaximumInterval    time.Duration
	MaximumAttempts    int
	NonRetryableErrors []model.ErrorCategory
}

// BackoffFor computes the wait before retrying a 0-based attempt:
// min(initial * coefficient^attempt, maximum).
func (p Policy) BackoffFor(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	coeff := p.BackoffCoefficient
	if coeff <= 0 {
		coeff = 1
	}
	backoff := time.Duration(float64(p.InitialInterval) * math.Pow(coeff, float64(attempt)))
	if p.MaximumInterval > 0 && (backoff > p.MaximumInterval || backoff < 0) {
		backoff = p.MaximumInterval
	}
	return backoff
}

// Retryable reports whether another attempt may follow the given 0-based
// attempt after err. Non-retryable categories propagate immediately.
func (p Policy) Retryable(err error, attempt int) bool {
	if attempt >= p.MaximumAttempts-1 {
		return false
	}
	category := model.CategoryOf(err)
	for _, c := range p.NonRetryableErrors {
		if c == category {
			return false
		}
	}
	return true
}

// DefaultActivityPolicy covers general activities.
func DefaultActivityPolicy() Policy {
	return Policy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    5 * time.Minute,
		MaximumAttempts:    3,
		NonRetryableErrors: []model.ErrorCategory{
			model.ErrCategoryValidation,
			model.ErrCategoryBusiness,
			model.ErrCategoryConstraint,
			model.ErrCategoryAuth,
		},
	}
}

// ModelBackendPolicy covers calls to generative-model backends: longer
// intervals, more attempts, rate limits stay retryable.
func ModelBackendPolicy() Policy {
	return Policy{
		InitialInterval:    2 * time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    10 * time.Minute,
		MaximumAttempts:    5,
		NonRetryableErrors: []model.ErrorCategory{
			model.ErrCategoryValidation,
			model.ErrCategoryBusiness,
			model.ErrCategoryAuth,
		},
	}
}

// DatabasePolicy covers database-backed operations: gentler multiplier,
// fewer attempts, schema/constraint errors excluded from retry.
func DatabasePolicy() Policy {
	return Policy{
		InitialInterval:    500 * time.Millisecond,
		BackoffCoefficient: 1.5,
		MaximumInterval:    30 * time.Second,
		MaximumAttempts:    2,
		NonRetryableErrors: []model.ErrorCategory{
			model.ErrCategoryValidation,
			model.ErrCategoryBusiness,
			model.ErrCategoryConstraint,
			model.ErrCategoryAuth,
		},
	}
}

// NoRetryPolicy runs idempotence-critical operations exactly one attempt.
func NoRetryPolicy() Policy {
	return Policy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 1.0,
		MaximumInterval:    time.Second,
		MaximumAttempts:    1,
	}
}
