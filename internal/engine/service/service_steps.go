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

package service

import (
	"context"
	"time"

	"github.com/arcentrix/roleflow/internal/engine/model"
	"github.com/arcentrix/roleflow/internal/pkg/collaborator"
	"github.com/arcentrix/roleflow/internal/pkg/retry"
	"github.com/arcentrix/roleflow/internal/pkg/workflow"
	"github.com/arcentrix/roleflow/pkg/log"
)

const (
	StepRoleSetup  = "role_setup"
	StepAssessment = "assessment"

	roleSetupTimeout  = 2 * time.Minute
	assessmentTimeout = 15 * time.Minute
)

// NewOnboardingSteps builds the fixed two-step onboarding workflow:
// create/link the role record, then run the model-backed assessment.
// Both steps are required; the workflow fails fast when either fails.
func NewOnboardingSteps(roleSetup collaborator.RoleSetupClient, assessment collaborator.AssessmentClient) []workflow.Step {
	return []workflow.Step{
		{
			Name:     StepRoleSetup,
			SubState: "creating_role",
			Required: true,
			Timeout:  roleSetupTimeout,
			Policy:   retry.DefaultActivityPolicy(),
			Run:      roleSetupStep(roleSetup),
		},
		{
			Name:     StepAssessment,
			SubState: "running_assessment",
			Required: true,
			Timeout:  assessmentTimeout,
			Policy:   retry.ModelBackendPolicy(),
			Run:      assessmentStep(assessment),
		},
	}
}

// roleSetupStep creates or reuses the role record and links every
// document that carries content. Create-or-reuse makes the whole step
// safe to retry.
func roleSetupStep(client collaborator.RoleSetupClient) workflow.StepFunc {
	return func(ctx context.Context, in *model.OnboardingInput, carry *workflow.Carry) (map[string]any, error) {
		label := in.RoleLabel
		if label == "" && in.Taxonomy != nil {
			label = in.Taxonomy.Title
		}

		roleID, err := client.CreateRole(ctx, in.TenantID, in.RoleName, label)
		if err != nil {
			return nil, err
		}

		linked := 0
		for _, doc := range in.Documents {
			if !doc.HasContent() {
				log.Debugw("skipping empty document",
					"requestId", in.RequestID,
					"document", doc.Name,
				)
				continue
			}
			content := doc.Content
			if content == "" {
				content = doc.URI
			}
			ok, err := client.LinkDocument(ctx, roleID, content, doc.Name)
			if err != nil {
				return nil, err
			}
			if ok {
				linked++
			}
		}

		return map[string]any{
			"role_id":          roleID,
			"linked_documents": linked,
		}, nil
	}
}

// assessmentStep runs the assessment against the role created in step 1.
func assessmentStep(client collaborator.AssessmentClient) workflow.StepFunc {
	return func(ctx context.Context, in *model.OnboardingInput, carry *workflow.Carry) (map[string]any, error) {
		if carry.RoleID == "" {
			return nil, model.NewError("role_id_missing",
				"assessment requires the role id from role setup",
				model.ErrCategoryInternal, false)
		}

		report, err := client.RunAssessment(ctx, in.TenantID, in.RoleName, carry.RoleID, in.Options.ForceRerun)
		if err != nil {
			return nil, err
		}

		out := map[string]any{"score": report.Score}
		if len(report.TaskAnalysis) > 0 {
			out["task_analysis"] = report.TaskAnalysis
		}
		if len(report.ImpactAnalysis) > 0 {
			out["impact_analysis"] = report.ImpactAnalysis
		}
		if len(report.Metrics) > 0 {
			out["assessment_metrics"] = report.Metrics
		}
		return out, nil
	}
}
