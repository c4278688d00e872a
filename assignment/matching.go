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

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// Usable reports whether lead i can be assigned to rep j on its own: the pair is
// compatible and the demand of the lead fits the capacity of the rep.
func (inst *Instance) Usable(i, j int) bool {
	if !inst.Compatible(i, j) {
		return false
	}
	return !inst.HasCapacity() || inst.Demand[i][j] <= inst.Capacity[j]
}

// LargestMatching returns a largest set of usable pairs with at most one pair per lead
// and at most one pair per rep, in row-major order. Profits are ignored.
//
// In mode Both, an assignment exists only if the matching covers every lead.
func LargestMatching(inst *Instance) ([]Pair, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	l := inst.NumLeads()
	if l == 0 || inst.NumReps() == 0 {
		return []Pair{}, nil
	}
	leads := lo.Map(lo.Range(l), func(i int, _ int) any { return i })
	reps := lo.Map(lo.Range(inst.NumReps()), func(j int, _ int) any { return j })
	neighbours := func(lead, rep any) (bool, error) {
		return inst.Usable(lead.(int), rep.(int)), nil
	}
	graph, err := bipartitegraph.NewBipartiteGraph(leads, reps, neighbours)
	if err != nil {
		return nil, err
	}

	matched := make([]int, l)
	for i := range matched {
		matched[i] = -1
	}
	for _, edge := range graph.LargestMatching() {
		matched[edge.Node1] = edge.Node2 - l
	}
	pairs := []Pair{}
	for i, j := range matched {
		if j >= 0 {
			pairs = append(pairs, Pair{Lead: i, Rep: j, Profit: inst.Profit[i][j]})
		}
	}
	return pairs, nil
}

// precheck proves infeasibility without search when some lead has no usable rep in
// a mode with exact rows, or, in mode Both, when no matching covers every lead. It
// returns the reason of the infeasibility, or "" when the search is needed.
func precheck(inst *Instance, opts Options) (string, error) {
	if !opts.Mode.ExactRows() {
		return "", nil
	}
	for i := 0; i < inst.NumLeads(); i++ {
		usable := lo.ContainsBy(lo.Range(inst.NumReps()), func(j int) bool { return inst.Usable(i, j) })
		if !usable {
			return fmt.Sprintf("lead %d has no usable rep", i), nil
		}
	}
	if !opts.Mode.LimitsColumns() {
		return "", nil
	}
	if inst.NumLeads() > inst.NumReps() {
		return fmt.Sprintf("%d leads need distinct reps but there are only %d reps", inst.NumLeads(), inst.NumReps()), nil
	}
	pairs, err := LargestMatching(inst)
	if err != nil {
		return "", err
	}
	if len(pairs) < inst.NumLeads() {
		return fmt.Sprintf("at most %d of %d leads can get distinct usable reps", len(pairs), inst.NumLeads()), nil
	}
	return "", nil
}
