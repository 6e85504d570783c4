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
	"github.com/arcentrix/roleflow/internal/pkg/retry"
)

// StepFunc executes one workflow step against the accumulated carryover.
type StepFunc func(ctx context.Context, in *model.OnboardingInput, carry *Carry) (map[string]any, error)

// Step is the static definition of one workflow step.
type Step struct {
	Name     string
	SubState string
	Required bool
	Timeout  time.Duration
	Policy   retry.Policy
	Run      StepFunc
}

// Carry is the workflow-local carryover passed between steps of one
// execution. Step outputs are merged into it so later steps can consume
// values produced earlier, e.g. the role id from step 1.
type Carry struct {
	RoleID          string         `json:"role_id,omitempty"`
	LinkedDocuments int            `json:"linked_documents"`
	AssessmentScore float64        `json:"assessment_score"`
	Outputs         map[string]any `json:"outputs,omitempty"`
}

// NewCarry creates an empty carryover.
func NewCarry() *Carry {
	return &Carry{Outputs: make(map[string]any)}
}

// Merge folds declared step outputs into the carryover. Well-known keys
// are lifted into typed fields; everything is kept in Outputs.
func (c *Carry) Merge(out map[string]any) {
	for k, v := range out {
		c.Outputs[k] = v
	}
	if v, ok := out["role_id"].(string); ok && v != "" {
		c.RoleID = v
	}
	if v, ok := asInt(out["linked_documents"]); ok {
		c.LinkedDocuments = v
	}
	if v, ok := asFloat(out["score"]); ok {
		c.AssessmentScore = v
	}
}

// asInt tolerates both native ints and JSON-decoded float64 values.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
