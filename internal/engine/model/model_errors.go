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

package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCategory classifies a failure for retry decisions.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "validation"  // input missing required fields, never retried
	ErrCategoryTransient  ErrorCategory = "transient"   // network/infrastructure, retried per policy
	ErrCategoryTimeout    ErrorCategory = "timeout"     // wall-clock timeout
	ErrCategoryRateLimit  ErrorCategory = "rate_limit"  // backend throttling
	ErrCategoryBusiness   ErrorCategory = "business"    // business rule rejection, never retried
	ErrCategoryConstraint ErrorCategory = "constraint"  // schema/constraint violation, never retried
	ErrCategoryAuth       ErrorCategory = "auth"        // authentication/authorization failure
	ErrCategoryInternal   ErrorCategory = "internal"    // orchestrator bookkeeping failure
)

// Error is the typed error carried across activity and workflow boundaries.
type Error struct {
	Code        string
	Message     string
	Category    ErrorCategory
	Recoverable bool
	Details     map[string]any
	Cause       error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a typed error.
func NewError(code, message string, category ErrorCategory, recoverable bool) *Error {
	return &Error{
		Code:        code,
		Message:     message,
		Category:    category,
		Recoverable: recoverable,
	}
}

// WrapError wraps cause with code/category metadata.
func WrapError(code string, category ErrorCategory, recoverable bool, cause error) *Error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:        code,
		Message:     msg,
		Category:    category,
		Recoverable: recoverable,
		Cause:       cause,
	}
}

// WithDetails attaches detail fields and returns the same error.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// CategoryOf returns the category of err. Errors that do not carry a
// category are treated as transient so they stay retryable by default.
func CategoryOf(err error) ErrorCategory {
	var te *Error
	if errors.As(err, &te) {
		return te.Category
	}
	return ErrCategoryTransient
}

// IsRecoverable reports whether a caller may resubmit after err.
func IsRecoverable(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Recoverable
	}
	return true
}

// ErrorInfo is the persisted form of a failure, attached to activity
// results and role statuses.
type ErrorInfo struct {
	Code        string         `json:"code"`
	Message     string         `json:"message"`
	Recoverable bool           `json:"recoverable"`
	Details     map[string]any `json:"details,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// NewErrorInfo converts err into its persisted form.
func NewErrorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	info := &ErrorInfo{
		Code:        "unknown_error",
		Message:     err.Error(),
		Recoverable: true,
		Timestamp:   time.Now(),
	}
	var te *Error
	if errors.As(err, &te) {
		info.Code = te.Code
		info.Message = te.Message
		info.Recoverable = te.Recoverable
		info.Details = te.Details
	}
	return info
}
