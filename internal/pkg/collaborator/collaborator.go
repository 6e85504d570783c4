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

// Package collaborator holds the clients for the two external services
// the onboarding workflow depends on: the role-setup service that owns
// role records and document links, and the assessment service that
// scores a role against its linked evidence.
package collaborator

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/arcentrix/roleflow/internal/engine/model"
)

// RoleSetupClient is the boundary of the role-setup service (step 1).
type RoleSetupClient interface {
	// CreateRole creates or reuses the role record for tenant/roleName
	// and returns its id.
	CreateRole(ctx context.Context, tenant, roleName, label string) (string, error)
	// LinkDocument attaches one evidence document to the role.
	LinkDocument(ctx context.Context, roleID, content, title string) (bool, error)
}

// AssessmentReport is the scored outcome of one assessment run.
type AssessmentReport struct {
	Score          float64        `json:"score"`
	TaskAnalysis   map[string]any `json:"task_analysis,omitempty"`
	ImpactAnalysis map[string]any `json:"impact_analysis,omitempty"`
	Metrics        map[string]any `json:"metrics,omitempty"`
}

// AssessmentClient is the boundary of the assessment service (step 2).
type AssessmentClient interface {
	RunAssessment(ctx context.Context, tenant, roleName, roleID string, deleteExisting bool) (*AssessmentReport, error)
}

// Conf configures one collaborator endpoint.
type Conf struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SetDefaults fills unset fields with defaults.
func (c *Conf) SetDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

func (c *Conf) headers(tenant string) map[string]string {
	headers := map[string]string{"X-Tenant-Id": tenant}
	if c.Token != "" {
		headers["Authorization"] = "Bearer " + c.Token
	}
	return headers
}

// classifyStatus maps an HTTP status code onto the model error taxonomy
// so the retry policies can tell transient faults from permanent ones.
func classifyStatus(service string, status int, message string) error {
	if message == "" {
		message = fmt.Sprintf("%s returned status %d", service, status)
	}
	switch {
	case status == fasthttp.StatusTooManyRequests:
		return model.NewError(service+"_rate_limited", message, model.ErrCategoryRateLimit, true)
	case status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden:
		return model.NewError(service+"_unauthorized", message, model.ErrCategoryAuth, false)
	case status == fasthttp.StatusConflict:
		return model.NewError(service+"_conflict", message, model.ErrCategoryConstraint, false)
	case status == fasthttp.StatusNotFound || status == fasthttp.StatusUnprocessableEntity || status == fasthttp.StatusBadRequest:
		return model.NewError(service+"_rejected", message, model.ErrCategoryBusiness, false)
	default:
		return model.NewError(service+"_unavailable", message, model.ErrCategoryTransient, true)
	}
}

// errorBody is the common error envelope of both collaborator services.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (b *errorBody) text() string {
	if b == nil {
		return ""
	}
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}
