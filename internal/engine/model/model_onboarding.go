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
	"strings"

	"github.com/google/uuid"
)

const (
	// Priority bounds for workflow options.
	MinPriority     = 1
	MaxPriority     = 10
	DefaultPriority = 5
)

// DocumentReference points at supporting material for a role.
type DocumentReference struct {
	Type     string            `json:"type"`
	URI      string            `json:"uri,omitempty"`
	Content  string            `json:"content,omitempty"`
	Name     string            `json:"name,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// HasContent reports whether the reference carries anything usable,
// either inline content or a URI.
func (d DocumentReference) HasContent() bool {
	return strings.TrimSpace(d.Content) != "" || strings.TrimSpace(d.URI) != ""
}

// TaxonomyEntry is an externally resolved classification for a role.
type TaxonomyEntry struct {
	Code   string `json:"code"`
	Title  string `json:"title"`
	Source string `json:"source,omitempty"`
}

// WorkflowOptions tunes a single onboarding run.
type WorkflowOptions struct {
	SkipEnhancements bool `json:"skip_enhancements"`
	ForceRerun       bool `json:"force_rerun"`
	NotifyOnComplete bool `json:"notify_on_complete"`
	Priority         int  `json:"priority"`
}

// DefaultWorkflowOptions returns options with the default priority.
func DefaultWorkflowOptions() WorkflowOptions {
	return WorkflowOptions{Priority: DefaultPriority}
}

// Normalize clamps the priority into its valid range, defaulting when unset.
func (o *WorkflowOptions) Normalize() {
	if o.Priority == 0 {
		o.Priority = DefaultPriority
	}
	if o.Priority < MinPriority {
		o.Priority = MinPriority
	}
	if o.Priority > MaxPriority {
		o.Priority = MaxPriority
	}
}

// OnboardingInput is the unit of work accepted by the orchestrator.
type OnboardingInput struct {
	RequestID     string              `json:"request_id"`
	TenantID      string              `json:"tenant_id"`
	RoleName      string              `json:"role_name"`
	Documents     []DocumentReference `json:"documents,omitempty"`
	RoleLabel     string              `json:"role_label,omitempty"`
	Taxonomy      *TaxonomyEntry      `json:"taxonomy,omitempty"`
	Options       WorkflowOptions     `json:"options"`
	Context       ExecutionContext    `json:"context"`
}

// NewOnboardingInput creates an input with a generated request id and
// normalized options.
func NewOnboardingInput(tenantID, roleName string, execCtx ExecutionContext) *OnboardingInput {
	in := &OnboardingInput{
		RequestID: uuid.NewString(),
		TenantID:  tenantID,
		RoleName:  roleName,
		Options:   DefaultWorkflowOptions(),
		Context:   execCtx,
	}
	return in
}

// ValidateForProcessing returns the exact list of missing-field messages.
// The input is processable iff the result is empty: only tenant id and
// role name are required, documents are optional.
func (in *OnboardingInput) ValidateForProcessing() []string {
	var missing []string
	if strings.TrimSpace(in.TenantID) == "" {
		missing = append(missing, "tenant_id is required")
	}
	if strings.TrimSpace(in.RoleName) == "" {
		missing = append(missing, "role_name is required")
	}
	return missing
}
