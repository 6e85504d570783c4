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
	"time"

	"github.com/arcentrix/roleflow/internal/engine/model"
	"github.com/arcentrix/roleflow/internal/pkg/activity"
	"github.com/arcentrix/roleflow/internal/pkg/retry"
)

// ExecutionHost is the strategy the orchestrator runs steps through.
// LocalHost executes steps in-process; DelegatedHost routes them through
// an external durable-execution engine. The orchestrator asks the host
// for time and for permission to perform direct I/O instead of branching
// on the mode inline.
type ExecutionHost interface {
	Name() string
	// Now returns the host's clock. Under deterministic replay this is
	// the engine's clock, never the wall clock.
	Now() time.Time
	// PersistAllowed reports whether the orchestrator may write status
	// records directly. Delegated hosts forbid it: the engine replays
	// workflow code and its own status surface takes over.
	PersistAllowed() bool
	RunStep(ctx context.Context, step Step, in *model.OnboardingInput, carry *Carry) *model.ActivityResult
}

// LocalHost runs steps as ordinary in-process calls through the
// activity executor, governed by each step's retry policy and timeout.
type LocalHost struct{}

// NewLocalHost creates the standalone-mode host.
func NewLocalHost() *LocalHost {
	return &LocalHost{}
}

func (h *LocalHost) Name() string { return "local" }

func (h *LocalHost) Now() time.Time { return time.Now() }

func (h *LocalHost) PersistAllowed() bool { return true }

func (h *LocalHost) RunStep(ctx context.Context, step Step, in *model.OnboardingInput, carry *Carry) *model.ActivityResult {
	executor := activity.NewExecutor(step.Policy, step.Timeout)
	return executor.Execute(ctx, step.Name, in, func(ctx context.Context, in *model.OnboardingInput) (map[string]any, error) {
		return step.Run(ctx, in, carry)
	})
}

// ActivityArgs is the payload handed to a durable-execution engine for
// one activity invocation.
type ActivityArgs struct {
	Input *model.OnboardingInput `json:"input"`
	Carry *Carry                 `json:"carry"`
}

// EngineClient is the boundary of the optional durable-execution engine.
// The engine supplies its own retry and timeout machinery; the policy
// passed here is a hint translated into the engine's native policy.
type EngineClient interface {
	ExecuteActivity(ctx context.Context, name string, args *ActivityArgs, timeout time.Duration, policy retry.Policy) (map[string]any, error)
	Now() time.Time
}

// DelegatedHost routes every step through a durable-execution engine.
// The orchestrator must not touch the wall clock or the status store in
// this mode; both are replaced by the engine.
type DelegatedHost struct {
	engine EngineClient
}

// NewDelegatedHost creates a host backed by the given engine client.
func NewDelegatedHost(engine EngineClient) *DelegatedHost {
	return &DelegatedHost{engine: engine}
}

func (h *DelegatedHost) Name() string { return "delegated" }

func (h *DelegatedHost) Now() time.Time { return h.engine.Now() }

func (h *DelegatedHost) PersistAllowed() bool { return false }

func (h *DelegatedHost) RunStep(ctx context.Context, step Step, in *model.OnboardingInput, carry *Carry) *model.ActivityResult {
	payload, err := h.engine.ExecuteActivity(ctx, step.Name, &ActivityArgs{Input: in, Carry: carry}, step.Timeout, step.Policy)
	if err != nil {
		return model.NewFailureResult(in.RequestID, err, model.ExecutionMetrics{})
	}
	return model.NewSuccessResult(in.RequestID, payload, model.ExecutionMetrics{})
}
