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
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arcentrix/roleflow/internal/engine/model"
	"github.com/arcentrix/roleflow/internal/engine/repo"
	"github.com/arcentrix/roleflow/pkg/log"
)

// batchFanOutLimit bounds concurrent status reads per aggregation.
const batchFanOutLimit = 8

// BatchService groups independent workflow submissions and derives
// aggregate batch status at read time. There is no cross-member
// coordination: members succeed and fail on their own.
type BatchService struct {
	onboarding *OnboardingService
	batchRepo  repo.IBatchRepository
	statusRepo repo.IStatusRepository
}

// NewBatchService creates the batch service.
func NewBatchService(onboarding *OnboardingService, batchRepo repo.IBatchRepository, statusRepo repo.IStatusRepository) *BatchService {
	return &BatchService{
		onboarding: onboarding,
		batchRepo:  batchRepo,
		statusRepo: statusRepo,
	}
}

// SubmitBatch submits each input independently and records the group.
// A submission failure aborts the batch before the record is created;
// already-submitted members keep running on their own.
func (s *BatchService) SubmitBatch(ctx context.Context, inputs []*model.OnboardingInput, createdBy string) (*model.BatchRecord, error) {
	if len(inputs) == 0 {
		return nil, errors.New("batch needs at least one input")
	}

	tenantID := inputs[0].TenantID
	memberIDs := make([]string, 0, len(inputs))
	for _, in := range inputs {
		res, err := s.onboarding.Submit(ctx, in)
		if err != nil {
			log.Errorw("batch member submission failed",
				"tenantId", in.TenantID,
				"roleName", in.RoleName,
				"error", err,
			)
			return nil, err
		}
		memberIDs = append(memberIDs, res.WorkflowID)
	}

	rec, err := s.batchRepo.Create(ctx, tenantID, memberIDs, createdBy)
	if err != nil {
		return nil, err
	}
	log.Infow("batch submitted", "batchId", rec.BatchID, "members", rec.Count)
	return rec, nil
}

// AddToBatch submits one more input and appends it to an existing batch.
func (s *BatchService) AddToBatch(ctx context.Context, batchID string, in *model.OnboardingInput) (*SubmitResult, error) {
	res, err := s.onboarding.Submit(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.batchRepo.AddMember(ctx, batchID, res.WorkflowID); err != nil {
		return nil, err
	}
	return res, nil
}

// GetBatchStatus folds the members' role statuses into the aggregate
// view. Returns nil when the batch record is absent or expired. A
// member whose status record is missing counts as queued.
func (s *BatchService) GetBatchStatus(ctx context.Context, batchID string) (*model.BatchStatus, error) {
	rec, err := s.batchRepo.Get(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	var mu sync.Mutex
	statuses := make(map[string]*model.RoleStatus, rec.Count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchFanOutLimit)
	for _, workflowID := range rec.WorkflowIDs {
		g.Go(func() error {
			status, err := s.statusRepo.Get(gctx, workflowID)
			if err != nil {
				// Read failures degrade to queued, same as expiry.
				log.Warnw("batch member status read failed",
					"batchId", batchID,
					"workflowId", workflowID,
					"error", err,
				)
				return nil
			}
			if status != nil {
				mu.Lock()
				statuses[workflowID] = status
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return model.AggregateBatch(rec, statuses), nil
}
