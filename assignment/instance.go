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

// Package assignment formulates the assignment of leads to sales representatives as a
// Boolean optimization model, solves it with cpmodel and decodes the assignment.
//
// Lead i is assigned to rep j when the decision variable x[i][j] is true. The model
// maximizes sum(Profit[i][j] * x[i][j]) under row constraints (one rep per lead),
// optional column constraints (one lead per rep), compatibility constraints and
// capacity constraints, selected by Options.
package assignment

import (
	"errors"
	"fmt"
	"math"
)

// Instance holds the data of one assignment problem. L is the number of leads (rows of
// Profit), R the number of reps (columns of Profit) and T the number of time slots.
type Instance struct {
	// Profit is the L×R matrix of non-negative profits.
	Profit [][]int64 `yaml:"profit" json:"profit"`
	// Availability is the optional L×R 0/1 matrix of permitted pairs.
	Availability [][]int64 `yaml:"availability,omitempty" json:"availability,omitempty"`
	// Demand is the optional L×R matrix of non-negative capacity consumption. It is
	// given together with Capacity.
	Demand [][]int64 `yaml:"demand,omitempty" json:"demand,omitempty"`
	// Capacity is the optional vector of R positive capacities.
	Capacity []int64 `yaml:"capacity,omitempty" json:"capacity,omitempty"`
	// LeadSlot is the optional time slot, in [0,T), required by each of the L leads. It
	// is given together with RepSlotAvailability.
	LeadSlot []int `yaml:"lead_slot,omitempty" json:"lead_slot,omitempty"`
	// RepSlotAvailability is the optional R×T 0/1 matrix of rep availability per slot.
	RepSlotAvailability [][]int64 `yaml:"rep_slot_availability,omitempty" json:"rep_slot_availability,omitempty"`
}

// NumLeads returns L.
func (inst *Instance) NumLeads() int {
	return len(inst.Profit)
}

// NumReps returns R.
func (inst *Instance) NumReps() int {
	switch {
	case len(inst.Profit) > 0:
		return len(inst.Profit[0])
	case inst.Capacity != nil:
		return len(inst.Capacity)
	}
	return len(inst.RepSlotAvailability)
}

// NumSlots returns T, zero when the instance has no time slots.
func (inst *Instance) NumSlots() int {
	if len(inst.RepSlotAvailability) == 0 {
		return 0
	}
	return len(inst.RepSlotAvailability[0])
}

// HasCapacity reports whether the instance carries demands and capacities.
func (inst *Instance) HasCapacity() bool {
	return inst.Demand != nil
}

// HasTimeSlots reports whether the instance carries time slots.
func (inst *Instance) HasTimeSlots() bool {
	return inst.LeadSlot != nil
}

// Compatible reports whether lead i may be assigned to rep j: the pair is available
// and, with time slots, the rep is available at the slot of the lead.
func (inst *Instance) Compatible(i, j int) bool {
	if inst.Availability != nil && inst.Availability[i][j] == 0 {
		return false
	}
	if inst.LeadSlot != nil && inst.RepSlotAvailability[j][inst.LeadSlot[i]] == 0 {
		return false
	}
	return true
}

// DimensionMismatchError reports a matrix or vector whose shape disagrees with L, R or T.
type DimensionMismatchError struct {
	// Field is the name of the offending field.
	Field string
	// Row is the offending row, or -1 when the outer length is wrong.
	Row  int
	Got  int
	Want int
}

func (e *DimensionMismatchError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("dimension mismatch: %s has length %d, want %d", e.Field, e.Got, e.Want)
	}
	return fmt.Sprintf("dimension mismatch: %s[%d] has length %d, want %d", e.Field, e.Row, e.Got, e.Want)
}

// ErrInvalidValue is wrapped by the errors reporting out of range instance values.
var ErrInvalidValue = errors.New("invalid instance value")

func checkMatrix(field string, m [][]int64, rows, cols int) error {
	if len(m) != rows {
		return &DimensionMismatchError{Field: field, Row: -1, Got: len(m), Want: rows}
	}
	for i, row := range m {
		if len(row) != cols {
			return &DimensionMismatchError{Field: field, Row: i, Got: len(row), Want: cols}
		}
	}
	return nil
}

func checkValues(field string, m [][]int64, ok func(int64) bool, want string) error {
	for i, row := range m {
		for j, v := range row {
			if !ok(v) {
				return fmt.Errorf("%s[%d][%d] = %d, want %s: %w", field, i, j, v, want, ErrInvalidValue)
			}
		}
	}
	return nil
}

func isBinary(v int64) bool      { return v == 0 || v == 1 }
func isNonNegative(v int64) bool { return v >= 0 }

// Validate checks every dimension before any value. Shape errors are returned as
// *DimensionMismatchError, value errors wrap ErrInvalidValue.
func (inst *Instance) Validate() error {
	l, r := inst.NumLeads(), inst.NumReps()
	if err := checkMatrix("profit", inst.Profit, l, r); err != nil {
		return err
	}
	if inst.Availability != nil {
		if err := checkMatrix("availability", inst.Availability, l, r); err != nil {
			return err
		}
	}
	if (inst.Demand == nil) != (inst.Capacity == nil) {
		return errors.New("demand and capacity must be given together")
	}
	if inst.Demand != nil {
		if err := checkMatrix("demand", inst.Demand, l, r); err != nil {
			return err
		}
		if len(inst.Capacity) != r {
			return &DimensionMismatchError{Field: "capacity", Row: -1, Got: len(inst.Capacity), Want: r}
		}
	}
	if (inst.LeadSlot == nil) != (inst.RepSlotAvailability == nil) {
		return errors.New("lead_slot and rep_slot_availability must be given together")
	}
	if inst.LeadSlot != nil {
		if len(inst.LeadSlot) != l {
			return &DimensionMismatchError{Field: "lead_slot", Row: -1, Got: len(inst.LeadSlot), Want: l}
		}
		if err := checkMatrix("rep_slot_availability", inst.RepSlotAvailability, r, inst.NumSlots()); err != nil {
			return err
		}
	}

	if err := checkValues("profit", inst.Profit, isNonNegative, "a non-negative value"); err != nil {
		return err
	}
	if err := checkValues("availability", inst.Availability, isBinary, "0 or 1"); err != nil {
		return err
	}
	if err := checkValues("demand", inst.Demand, isNonNegative, "a non-negative value"); err != nil {
		return err
	}
	for j, m := range inst.Capacity {
		if m <= 0 {
			return fmt.Errorf("capacity[%d] = %d, want a positive value: %w", j, m, ErrInvalidValue)
		}
	}
	if err := checkValues("rep_slot_availability", inst.RepSlotAvailability, isBinary, "0 or 1"); err != nil {
		return err
	}
	// Objective values and rep loads are exact int64 sums.
	var total int64
	for i, row := range inst.Profit {
		for j, e := range row {
			if e > math.MaxInt64-total {
				return fmt.Errorf("profit sum overflows int64 at [%d][%d]: %w", i, j, ErrInvalidValue)
			}
			total += e
		}
	}
	for j := range inst.Capacity {
		var load int64
		for i, row := range inst.Demand {
			if row[j] > math.MaxInt64-load {
				return fmt.Errorf("demand sum of rep %d overflows int64 at lead %d: %w", j, i, ErrInvalidValue)
			}
			load += row[j]
		}
	}
	for i, s := range inst.LeadSlot {
		if s < 0 || s >= inst.NumSlots() {
			return fmt.Errorf("lead_slot[%d] = %d, want a slot in [0,%d): %w", i, s, inst.NumSlots(), ErrInvalidValue)
		}
	}
	return nil
}
