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

// ActivityStatus is the outcome tag of a single activity execution.
type ActivityStatus string

const (
	ActivityStatusSuccess ActivityStatus = "success"
	ActivityStatusPartial ActivityStatus = "partial"
	ActivityStatusFailed  ActivityStatus = "failed"
)

// ExecutionMetrics records timing and effort for one activity execution.
type ExecutionMetrics struct {
	Duration      int64      `json:"duration,omitempty"` // milliseconds
	ExternalCalls int        `json:"external_calls"`
	RetryCount    int        `json:"retry_count"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
}

// ActivityResult is the structured outcome of one activity execution.
// It echoes the request id of the input that produced it.
type ActivityResult struct {
	RequestID string           `json:"request_id"`
	Status    ActivityStatus   `json:"status"`
	Result    map[string]any   `json:"result,omitempty"`
	Error     *ErrorInfo       `json:"error,omitempty"`
	Metrics   ExecutionMetrics `json:"metrics"`
}

// NewSuccessResult builds a success result carrying the payload.
func NewSuccessResult(requestID string, payload map[string]any, metrics ExecutionMetrics) *ActivityResult {
	return &ActivityResult{
		RequestID: requestID,
		Status:    ActivityStatusSuccess,
		Result:    payload,
		Metrics:   metrics,
	}
}

// NewFailureResult builds a failed result from err.
func NewFailureResult(requestID string, err error, metrics ExecutionMetrics) *ActivityResult {
	return &ActivityResult{
		RequestID: requestID,
		Status:    ActivityStatusFailed,
		Error:     NewErrorInfo(err),
		Metrics:   metrics,
	}
}

// Succeeded reports whether the activity completed successfully.
func (r *ActivityResult) Succeeded() bool {
	return r != nil && r.Status == ActivityStatusSuccess
}
