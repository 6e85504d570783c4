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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WorkflowsStarted counts workflow runs that passed validation.
	WorkflowsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "roleflow",
		Name:      "workflows_started_total",
		Help:      "Number of onboarding workflows started.",
	})

	// WorkflowsCompleted counts workflow runs that reached ready.
	WorkflowsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "roleflow",
		Name:      "workflows_completed_total",
		Help:      "Number of onboarding workflows that reached ready.",
	})

	// WorkflowsFailed counts workflow runs that ended failed.
	WorkflowsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "roleflow",
		Name:      "workflows_failed_total",
		Help:      "Number of onboarding workflows that ended failed.",
	})

	// StepDuration observes wall-clock step durations per step name.
	StepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "roleflow",
		Name:      "step_duration_seconds",
		Help:      "Duration of workflow steps.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"step"})

	// StatusesSwept counts ready statuses marked stale by the sweeper.
	StatusesSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "roleflow",
		Name:      "statuses_swept_total",
		Help:      "Number of ready statuses marked stale.",
	})
)
