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
	"fmt"
	"strings"

	"github.com/salesopt/leadassign/cpmodel"
)

// Mode selects the row and column constraint families.
type Mode int

const (
	// ExactlyOnePerLead assigns every lead to exactly one rep.
	ExactlyOnePerLead Mode = iota
	// AtMostOnePerRep assigns every lead to at most one rep and every rep to at most one lead.
	AtMostOnePerRep
	// Both assigns every lead to exactly one rep and every rep to at most one lead.
	Both
)

var modeNames = []string{"EXACT_ONE_PER_LEAD", "AT_MOST_ONE_PER_REP", "BOTH"}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ExactRows reports whether row sums are `== 1` rather than `<= 1`.
func (m Mode) ExactRows() bool {
	return m != AtMostOnePerRep
}

// LimitsColumns reports whether column sums are constrained to `<= 1`.
func (m Mode) LimitsColumns() bool {
	return m != ExactlyOnePerLead
}

// ParseMode parses the name of a mode, ignoring case.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(s, n) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q, want one of %v", s, modeNames)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// CapacityPolicy selects how demands are checked against capacities.
type CapacityPolicy int

const (
	// PerPairCapacity enforces D[i][j]*x[i][j] <= M[j] for every pair: only
	// individually oversized assignments are ruled out.
	PerPairCapacity CapacityPolicy = iota
	// AggregateCapacity enforces sum_i D[i][j]*x[i][j] <= M[j] for every rep: the
	// capacity of a rep is shared by all its leads.
	AggregateCapacity
)

var capacityPolicyNames = []string{"PER_PAIR", "AGGREGATE"}

func (p CapacityPolicy) String() string {
	if p >= 0 && int(p) < len(capacityPolicyNames) {
		return capacityPolicyNames[p]
	}
	return fmt.Sprintf("CapacityPolicy(%d)", int(p))
}

// ParseCapacityPolicy parses the name of a capacity policy, ignoring case.
func ParseCapacityPolicy(s string) (CapacityPolicy, error) {
	for i, n := range capacityPolicyNames {
		if strings.EqualFold(s, n) {
			return CapacityPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown capacity policy %q, want one of %v", s, capacityPolicyNames)
}

// Compatibility selects how incompatible pairs are kept out of the assignment.
type Compatibility int

const (
	// OmitIncompatible declares no variable for incompatible pairs.
	OmitIncompatible Compatibility = iota
	// ForbidIncompatible declares a variable and adds x[i][j] == 0.
	ForbidIncompatible
)

var compatibilityNames = []string{"OMIT", "FORBID"}

func (c Compatibility) String() string {
	if c >= 0 && int(c) < len(compatibilityNames) {
		return compatibilityNames[c]
	}
	return fmt.Sprintf("Compatibility(%d)", int(c))
}

// ParseCompatibility parses the name of a compatibility handling, ignoring case.
func ParseCompatibility(s string) (Compatibility, error) {
	for i, n := range compatibilityNames {
		if strings.EqualFold(s, n) {
			return Compatibility(i), nil
		}
	}
	return 0, fmt.Errorf("unknown compatibility %q, want one of %v", s, compatibilityNames)
}

// Options configures the formulation and the solve. The zero value is
// ExactlyOnePerLead, PerPairCapacity, OmitIncompatible and the cpmodel defaults.
type Options struct {
	Mode          Mode
	Capacity      CapacityPolicy
	Compatibility Compatibility
	// DisablePrecheck always runs the solver, even when a lead without usable rep or a
	// too small matching already proves the model infeasible.
	DisablePrecheck bool
	Solver          cpmodel.Parameters
}
