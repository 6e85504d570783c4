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

	"github.com/google/uuid"
)

// ExecutionContext identifies who/what triggered a unit of work.
// Immutable once created; passed by value through every step.
type ExecutionContext struct {
	TenantID  string    `json:"tenant_id"`
	ActorID   string    `json:"actor_id"`
	TraceID   string    `json:"trace_id"`
	SessionID string    `json:"session_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewExecutionContext creates an execution context, generating a trace id
// when the caller does not supply one.
func NewExecutionContext(tenantID, actorID, traceID string) ExecutionContext {
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return ExecutionContext{
		TenantID:  tenantID,
		ActorID:   actorID,
		TraceID:   traceID,
		CreatedAt: time.Now(),
	}
}

// WithSession returns a copy carrying the session id.
func (ec ExecutionContext) WithSession(sessionID string) ExecutionContext {
	ec.SessionID = sessionID
	return ec
}
