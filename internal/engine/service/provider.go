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
	"fmt"

	"github.com/google/wire"

	"github.com/arcentrix/roleflow/internal/engine/config"
	"github.com/arcentrix/roleflow/internal/engine/repo"
	"github.com/arcentrix/roleflow/internal/pkg/collaborator"
	"github.com/arcentrix/roleflow/internal/pkg/workflow"
	"github.com/arcentrix/roleflow/pkg/cache"
	"github.com/arcentrix/roleflow/pkg/event"
)

// ProviderSet is the Wire provider set for the service layer.
var ProviderSet = wire.NewSet(
	ProvideServices,
)

// Services bundles the service layer for injection.
type Services struct {
	Onboarding *OnboardingService
	Batch      *BatchService
}

// ProvideServices wires the service layer: collaborator clients, the
// workflow runner on the configured execution host, and the
// onboarding/batch services on top.
func ProvideServices(
	conf *config.AppConfig,
	c cache.ICache,
	repos *repo.Repositories,
	bus *event.Bus,
) (*Services, error) {
	host, err := executionHost(conf.Workflow.Mode)
	if err != nil {
		return nil, err
	}

	roleSetup := collaborator.NewRoleSetupClient(conf.Collaborators.RoleSetup)
	assessment := collaborator.NewAssessmentClient(conf.Collaborators.Assessment)

	steps := NewOnboardingSteps(roleSetup, assessment)
	runner := workflow.NewRunner(steps, host, repos.Status,
		workflow.WithDashboardBase(conf.Workflow.DashboardBase),
		workflow.WithEventBus(bus),
	)

	onboarding := NewOnboardingService(runner, repos.Status, c, conf.Workflow.EstimatedSeconds)
	return &Services{
		Onboarding: onboarding,
		Batch:      NewBatchService(onboarding, repos.Batch, repos.Status),
	}, nil
}

// executionHost selects the host for the configured workflow mode.
// Delegated mode needs an engine client; until a deployment provides
// one it is rejected at startup instead of silently running local.
func executionHost(mode string) (workflow.ExecutionHost, error) {
	switch mode {
	case "", config.ModeLocal:
		return workflow.NewLocalHost(), nil
	case config.ModeDelegated:
		return nil, fmt.Errorf("workflow mode %q requires a durable-execution engine client, and none is configured", mode)
	default:
		return nil, fmt.Errorf("unknown workflow mode %q", mode)
	}
}
