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
	"testing"
	"time"
)

func TestCanTransitionListedPairs(t *testing.T) {
	allowed := [][2]WorkflowState{
		{StateDraft, StateQueued},
		{StateDraft, StateValidationError},
		{StateQueued, StateProcessing},
		{StateProcessing, StateReady},
		{StateProcessing, StateDegraded},
		{StateProcessing, StateFailed},
		{StateFailed, StateQueued},
		{StateReady, StateStale},
		{StateStale, StateQueued},
		{StateValidationError, StateDraft},
	}
	for _, pair := range allowed {
		if !CanTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be legal", pair[0], pair[1])
		}
	}
}

func TestCanTransitionRejectsUnlistedPairs(t *testing.T) {
	states := []WorkflowState{
		StateDraft, StateQueued, StateProcessing, StateReady,
		StateDegraded, StateFailed, StateStale, StateValidationError,
	}
	allowed := map[WorkflowState]map[WorkflowState]bool{}
	for from, tos := range stateTransitions {
		allowed[from] = map[WorkflowState]bool{}
		for _, to := range tos {
			allowed[from][to] = true
		}
	}
	for _, from := range states {
		for _, to := range states {
			want := allowed[from][to]
			if got := CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := map[WorkflowState]bool{
		StateReady:           true,
		StateDegraded:        true,
		StateFailed:          true,
		StateValidationError: true,
		StateDraft:           false,
		StateQueued:          false,
		StateProcessing:      false,
		StateStale:           false,
	}
	for state, want := range terminal {
		if got := state.IsTerminal(); got != want {
			t.Fatalf("IsTerminal(%s) = %v, want %v", state, got, want)
		}
	}
}

func TestProgressPercentGuardsDivisionByZero(t *testing.T) {
	p := ProgressInfo{}
	if got := p.Percent(); got != 0 {
		t.Fatalf("empty progress percent = %v, want 0", got)
	}
	p = NewProgressInfo([]string{"a", "b"})
	p.UpdateStep("a", StepStatusCompleted, time.Second, "")
	if got := p.Percent(); got != 50 {
		t.Fatalf("percent = %v, want 50", got)
	}
}

func TestProgressUpdateStepInPlaceAndAppend(t *testing.T) {
	p := NewProgressInfo([]string{"role_setup", "assessment"})

	p.UpdateStep("role_setup", StepStatusRunning, 0, "")
	if p.CurrentStep != "role_setup" {
		t.Fatalf("current step = %q, want role_setup", p.CurrentStep)
	}
	if p.Steps[0].StartedAt == nil {
		t.Fatalf("running step should stamp start time")
	}

	p.UpdateStep("role_setup", StepStatusCompleted, 1500*time.Millisecond, "")
	if p.Current != 1 {
		t.Fatalf("current = %d, want 1", p.Current)
	}
	if p.CurrentStep != "" {
		t.Fatalf("current step should clear after completion, got %q", p.CurrentStep)
	}
	if p.Steps[0].Duration != 1500 {
		t.Fatalf("duration = %d, want 1500", p.Steps[0].Duration)
	}
	if len(p.Steps) != 2 {
		t.Fatalf("update must not duplicate steps, got %d", len(p.Steps))
	}

	// Unknown names are appended, not dropped.
	p.UpdateStep("extra", StepStatusFailed, 0, "boom")
	if len(p.Steps) != 3 {
		t.Fatalf("expected appended step, got %d steps", len(p.Steps))
	}
	if p.Steps[2].Error != "boom" {
		t.Fatalf("appended step error = %q", p.Steps[2].Error)
	}
	if p.Total != 3 {
		t.Fatalf("total should track appended steps, got %d", p.Total)
	}
}
