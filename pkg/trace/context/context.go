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

// Package context stores a context per goroutine so that logging can
// recover the active span without threading ctx through every call.
package context

import (
	"context"
	"sync"

	"github.com/timandy/routine"
)

const bucketsSize = 128

type contextBucket struct {
	lock sync.RWMutex
	data map[int64]context.Context
}

var buckets [bucketsSize]*contextBucket

func init() {
	for i := range buckets {
		buckets[i] = &contextBucket{data: make(map[int64]context.Context)}
	}
}

func bucketFor(goid int64) *contextBucket {
	return buckets[goid%bucketsSize]
}

// GetContext returns the context bound to the current goroutine, if any.
func GetContext() context.Context {
	goid := int64(routine.Goid())
	bucket := bucketFor(goid)
	bucket.lock.RLock()
	ctx := bucket.data[goid]
	bucket.lock.RUnlock()
	return ctx
}

// SetContext binds ctx to the current goroutine.
func SetContext(ctx context.Context) {
	goid := int64(routine.Goid())
	bucket := bucketFor(goid)
	bucket.lock.Lock()
	bucket.data[goid] = ctx
	bucket.lock.Unlock()
}

// ClearContext removes the binding for the current goroutine.
func ClearContext() {
	goid := int64(routine.Goid())
	bucket := bucketFor(goid)
	bucket.lock.Lock()
	delete(bucket.data, goid)
	bucket.lock.Unlock()
}

// RunWithContext binds ctx for the duration of fn.
func RunWithContext(ctx context.Context, fn func(ctx context.Context)) {
	SetContext(ctx)
	defer ClearContext()
	fn(ctx)
}
