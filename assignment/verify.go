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

	"github.com/samber/lo"
)

// RepLoads returns, for every rep, the leads assigned to it in ascending order.
func (r *Result) RepLoads() map[int][]int {
	byRep := lo.GroupBy(r.Pairs, func(p Pair) int { return p.Rep })
	return lo.MapValues(byRep, func(ps []Pair, _ int) []int {
		return lo.Map(ps, func(p Pair, _ int) int { return p.Lead })
	})
}

// UnassignedLeads returns the leads without a rep in ascending order.
func (r *Result) UnassignedLeads() []int {
	assigned := lo.SliceToMap(r.Pairs, func(p Pair) (int, bool) { return p.Lead, true })
	return lo.Filter(lo.Range(r.Leads), func(i int, _ int) bool { return !assigned[i] })
}

// Verify checks the decoded assignment against the instance and the options it was
// solved with: row and column sums, compatibility, capacity and the objective value.
// Errors wrap ErrInvalidAssignment.
func (r *Result) Verify(inst *Instance, opts Options) error {
	l, nr := inst.NumLeads(), inst.NumReps()
	rows := make([]int, l)
	cols := make([]int, nr)
	used := make([]int64, nr)
	for _, p := range r.Pairs {
		if p.Lead < 0 || p.Lead >= l || p.Rep < 0 || p.Rep >= nr {
			return fmt.Errorf("%w: pair (%d, %d) out of range", ErrInvalidAssignment, p.Lead, p.Rep)
		}
		if !inst.Compatible(p.Lead, p.Rep) {
			return fmt.Errorf("%w: lead %d is not compatible with rep %d", ErrInvalidAssignment, p.Lead, p.Rep)
		}
		if p.Profit != inst.Profit[p.Lead][p.Rep] {
			return fmt.Errorf("%w: pair (%d, %d) has profit %d, want %d", ErrInvalidAssignment, p.Lead, p.Rep, p.Profit, inst.Profit[p.Lead][p.Rep])
		}
		rows[p.Lead]++
		cols[p.Rep]++
		if inst.HasCapacity() {
			d := inst.Demand[p.Lead][p.Rep]
			if opts.Capacity == PerPairCapacity && d > inst.Capacity[p.Rep] {
				return fmt.Errorf("%w: demand %d of lead %d exceeds capacity %d of rep %d", ErrInvalidAssignment, d, p.Lead, inst.Capacity[p.Rep], p.Rep)
			}
			used[p.Rep] += d
		}
	}
	for i, n := range rows {
		if n > 1 || (opts.Mode.ExactRows() && n != 1) {
			return fmt.Errorf("%w: lead %d is assigned %d times", ErrInvalidAssignment, i, n)
		}
	}
	if opts.Mode.LimitsColumns() {
		for j, n := range cols {
			if n > 1 {
				return fmt.Errorf("%w: rep %d is assigned %d leads", ErrInvalidAssignment, j, n)
			}
		}
	}
	if inst.HasCapacity() && opts.Capacity == AggregateCapacity {
		for j, u := range used {
			if u > inst.Capacity[j] {
				return fmt.Errorf("%w: rep %d uses %d of capacity %d", ErrInvalidAssignment, j, u, inst.Capacity[j])
			}
		}
	}
	if total := lo.SumBy(r.Pairs, func(p Pair) int64 { return p.Profit }); total != r.Objective {
		return fmt.Errorf("%w: profits sum to %d, objective is %d", ErrInvalidAssignment, total, r.Objective)
	}
	return nil
}
