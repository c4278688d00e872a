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

	"github.com/salesopt/leadassign/cpmodel"
)

// Pair is the assignment of one lead to one rep.
type Pair struct {
	Lead   int   `json:"lead"`
	Rep    int   `json:"rep"`
	Profit int64 `json:"profit"`
}

func (p Pair) String() string {
	return fmt.Sprintf("Lead %d is assigned to Rep %d", p.Lead, p.Rep)
}

// statusError returns the error describing a response without a solution.
func (f *Formulation) statusError(res *cpmodel.Response) error {
	switch res.Status {
	case cpmodel.Infeasible:
		return &InfeasibleModelError{Leads: f.Instance.NumLeads(), Reps: f.Instance.NumReps(), Mode: f.Options.Mode}
	case cpmodel.TimedOutWithoutSolution:
		return &TimeoutWithoutSolutionError{Elapsed: res.WallTime}
	}
	return &NoSolutionError{Status: res.Status, Info: res.SolutionInfo}
}

// DecodeSolution returns the pairs whose decision variable is true, in row-major
// order (lead ascending, then rep ascending). A response that is neither OPTIMAL nor
// FEASIBLE yields an error matching ErrNoAssignment, never an empty assignment.
func DecodeSolution(f *Formulation, res *cpmodel.Response) ([]Pair, error) {
	if res == nil {
		return nil, errors.New("nil response")
	}
	if !res.Status.HasSolution() {
		return nil, f.statusError(res)
	}
	if want := f.Builder.NumVariables(); len(res.Solution) != want {
		return nil, fmt.Errorf("response has %d values, model has %d variables", len(res.Solution), want)
	}
	pairs := []Pair{}
	f.forPresent(func(i, j int) {
		if cpmodel.SolutionBooleanValue(res, f.X[i][j]) {
			pairs = append(pairs, Pair{Lead: i, Rep: j, Profit: f.Instance.Profit[i][j]})
		}
	})
	return pairs, nil
}
