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

package log

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zapcore"

	tracectx "github.com/arcentrix/roleflow/pkg/trace/context"
)

// traceCore enriches every entry with trace/span ids when the current
// goroutine carries a valid span context.
type traceCore struct {
	zapcore.Core
}

func (tc *traceCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if ctx := tracectx.GetContext(); ctx != nil {
		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
			fields = append(fields, zapcore.Field{
				Key:    "trace_id",
				Type:   zapcore.StringType,
				String: sc.TraceID().String(),
			}, zapcore.Field{
				Key:    "span_id",
				Type:   zapcore.StringType,
				String: sc.SpanID().String(),
			})
		}
	}
	return tc.Core.Write(entry, fields)
}

func (tc *traceCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if tc.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, tc)
	}
	return checkedEntry
}

func (tc *traceCore) With(fields []zapcore.Field) zapcore.Core {
	return &traceCore{Core: tc.Core.With(fields)}
}
