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

package collaborator

import (
	"context"
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/arcentrix/roleflow/internal/pkg/activity"
	"github.com/arcentrix/roleflow/pkg/request"
)

// HTTPAssessmentClient talks to the assessment service over its JSON API.
type HTTPAssessmentClient struct {
	conf Conf
}

// NewAssessmentClient creates the HTTP client for the assessment service.
func NewAssessmentClient(conf Conf) *HTTPAssessmentClient {
	conf.SetDefaults()
	return &HTTPAssessmentClient{conf: conf}
}

type runAssessmentRequest struct {
	RoleName       string `json:"role_name"`
	RoleID         string `json:"role_id"`
	DeleteExisting bool   `json:"delete_existing"`
}

type runAssessmentResponse struct {
	Report *AssessmentReport `json:"report"`
	errorBody
}

// RunAssessment runs the model-backed assessment for the role. The
// service owns the heavy lifting; this call can take minutes and relies
// on the step timeout above it.
func (c *HTTPAssessmentClient) RunAssessment(ctx context.Context, tenant, roleName, roleID string, deleteExisting bool) (*AssessmentReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out runAssessmentResponse
	activity.CountExternalCall(ctx)
	resp, err := request.NewRequest(c.conf.BaseURL+"/api/v1/assessments", fasthttp.MethodPost).
		WithHeaders(c.conf.headers(tenant)).
		WithBodyJSON(runAssessmentRequest{
			RoleName:       roleName,
			RoleID:         roleID,
			DeleteExisting: deleteExisting,
		}).
		WithTimeout(clipTimeout(ctx, c.conf.Timeout)).
		WithResult(&out).
		Do()
	if err != nil {
		return nil, fmt.Errorf("assessment run: %w", err)
	}
	if resp.StatusCode() >= fasthttp.StatusBadRequest {
		return nil, classifyStatus("assessment", resp.StatusCode(), out.text())
	}
	if out.Report == nil {
		return nil, classifyStatus("assessment", fasthttp.StatusBadGateway, "assessment response missing report")
	}
	return out.Report, nil
}
