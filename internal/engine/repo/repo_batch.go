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

package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/teris-io/shortid"

	"github.com/arcentrix/roleflow/internal/engine/model"
	"github.com/arcentrix/roleflow/pkg/cache"
)

const batchKeyPrefix = "roleflow:batch:"

// IBatchRepository stores batch records: pure bookkeeping groupings of
// independent workflow ids, TTL-scoped like statuses.
type IBatchRepository interface {
	Create(ctx context.Context, tenantID string, memberIDs []string, createdBy string) (*model.BatchRecord, error)
	Get(ctx context.Context, batchID string) (*model.BatchRecord, error)
	AddMember(ctx context.Context, batchID, workflowID string) error
}

type BatchRepo struct {
	cache cache.ICache
	ttl   time.Duration
}

// NewBatchRepo creates a batch repository with the given record TTL.
func NewBatchRepo(c cache.ICache, ttl time.Duration) IBatchRepository {
	return &BatchRepo{cache: c, ttl: ttl}
}

func batchKey(batchID string) string {
	return batchKeyPrefix + batchID
}

// Create stores a new batch record with a generated batch id.
func (r *BatchRepo) Create(ctx context.Context, tenantID string, memberIDs []string, createdBy string) (*model.BatchRecord, error) {
	batchID, err := shortid.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate batch id: %w", err)
	}
	rec := &model.BatchRecord{
		BatchID:   batchID,
		TenantID:  tenantID,
		CreatedAt: time.Now(),
		CreatedBy: createdBy,
	}
	for _, id := range memberIDs {
		rec.AddWorkflow(id)
	}
	if err := r.put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the batch record, or nil when absent or expired.
func (r *BatchRepo) Get(ctx context.Context, batchID string) (*model.BatchRecord, error) {
	raw, ok, err := r.cache.Get(ctx, batchKey(batchID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var rec model.BatchRecord
	if err := sonic.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal batch %s: %w", batchID, err)
	}
	return &rec, nil
}

// AddMember appends a workflow id to the batch; the member count is
// re-derived from the list, never stored independently.
func (r *BatchRepo) AddMember(ctx context.Context, batchID, workflowID string) error {
	rec, err := r.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if rec == nil {
		return model.NewError("batch_not_found",
			fmt.Sprintf("no batch record for %s", batchID),
			model.ErrCategoryInternal, false)
	}
	rec.AddWorkflow(workflowID)
	return r.put(ctx, rec)
}

func (r *BatchRepo) put(ctx context.Context, rec *model.BatchRecord) error {
	raw, err := sonic.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal batch %s: %w", rec.BatchID, err)
	}
	return r.cache.Set(ctx, batchKey(rec.BatchID), raw, r.ttl)
}
