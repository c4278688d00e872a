// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package assignment

import (
	"errors"
	"fmt"
	"time"

	"github.com/salesopt/leadassign/cpmodel"
)

// ErrNoAssignment is matched by every error reporting a solve without an assignment.
// It is distinct from an empty assignment.
var ErrNoAssignment = errors.New("no assignment produced")

// ErrInvalidAssignment is wrapped by the errors of Result.Verify.
var ErrInvalidAssignment = errors.New("invalid assignment")

// InfeasibleModelError reports a model proven to admit no assignment.
type InfeasibleModelError struct {
	Leads, Reps int
	Mode        Mode
}

func (e *InfeasibleModelError) Error() string {
	return fmt.Sprintf("model with %d leads and %d reps is infeasible in mode %v", e.Leads, e.Reps, e.Mode)
}

func (e *InfeasibleModelError) Unwrap() error {
	return ErrNoAssignment
}

// TimeoutWithoutSolutionError reports a time budget that elapsed before any solution.
type TimeoutWithoutSolutionError struct {
	Elapsed time.Duration
}

func (e *TimeoutWithoutSolutionError) Error() string {
	return fmt.Sprintf("no solution found within the time budget (elapsed %v)", e.Elapsed)
}

func (e *TimeoutWithoutSolutionError) Unwrap() error {
	return ErrNoAssignment
}

// NoSolutionError reports any other solve without an assignment. Err holds the cause
// of an interrupted solve, such as the context error.
type NoSolutionError struct {
	Status cpmodel.Status
	Info   string
	Err    error
}

func (e *NoSolutionError) Error() string {
	msg := fmt.Sprintf("no solution: solver status %v", e.Status)
	if e.Info != "" {
		msg += " (" + e.Info + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NoSolutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNoAssignment}
	}
	return []error{ErrNoAssignment, e.Err}
}
