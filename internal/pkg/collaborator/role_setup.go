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
	"time"

	"github.com/valyala/fasthttp"

	"github.com/arcentrix/roleflow/internal/pkg/activity"
	"github.com/arcentrix/roleflow/pkg/request"
)

// HTTPRoleSetupClient talks to the role-setup service over its JSON API.
type HTTPRoleSetupClient struct {
	conf Conf
}

// NewRoleSetupClient creates the HTTP client for the role-setup service.
func NewRoleSetupClient(conf Conf) *HTTPRoleSetupClient {
	conf.SetDefaults()
	return &HTTPRoleSetupClient{conf: conf}
}

type createRoleRequest struct {
	RoleName string `json:"role_name"`
	Label    string `json:"label,omitempty"`
}

type createRoleResponse struct {
	RoleID string `json:"role_id"`
	errorBody
}

// CreateRole creates or reuses the tenant's role record.
func (c *HTTPRoleSetupClient) CreateRole(ctx context.Context, tenant, roleName, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out createRoleResponse
	activity.CountExternalCall(ctx)
	resp, err := request.NewRequest(c.conf.BaseURL+"/api/v1/roles", fasthttp.MethodPost).
		WithHeaders(c.conf.headers(tenant)).
		WithBodyJSON(createRoleRequest{RoleName: roleName, Label: label}).
		WithTimeout(c.timeout(ctx)).
		WithResult(&out).
		Do()
	if err != nil {
		return "", fmt.Errorf("role-setup create role: %w", err)
	}
	if resp.StatusCode() >= fasthttp.StatusBadRequest {
		return "", classifyStatus("role_setup", resp.StatusCode(), out.text())
	}
	return out.RoleID, nil
}

type linkDocumentRequest struct {
	Content string `json:"content"`
	Title   string `json:"title,omitempty"`
}

type linkDocumentResponse struct {
	Linked bool `json:"linked"`
	errorBody
}

// LinkDocument attaches one evidence document to the role.
func (c *HTTPRoleSetupClient) LinkDocument(ctx context.Context, roleID, content, title string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out linkDocumentResponse
	url := fmt.Sprintf("%s/api/v1/roles/%s/documents", c.conf.BaseURL, roleID)
	req := request.NewRequest(url, fasthttp.MethodPost)
	if c.conf.Token != "" {
		req.WithHeader("Authorization", "Bearer "+c.conf.Token)
	}
	activity.CountExternalCall(ctx)
	resp, err := req.
		WithBodyJSON(linkDocumentRequest{Content: content, Title: title}).
		WithTimeout(c.timeout(ctx)).
		WithResult(&out).
		Do()
	if err != nil {
		return false, fmt.Errorf("role-setup link document: %w", err)
	}
	if resp.StatusCode() >= fasthttp.StatusBadRequest {
		return false, classifyStatus("role_setup", resp.StatusCode(), out.text())
	}
	return out.Linked, nil
}

// timeout clips the configured timeout to the context deadline.
func (c *HTTPRoleSetupClient) timeout(ctx context.Context) time.Duration {
	return clipTimeout(ctx, c.conf.Timeout)
}

func clipTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			return remaining
		}
	}
	return timeout
}
