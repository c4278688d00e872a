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

package cpmodel

import (
	"sort"

	log "github.com/golang/glog"
	"gopkg.in/dnaeon/go-priorityqueue.v1"
)

func init() {
	registerBackend(func() backend { return greedyBackend{} })
}

// greedyBackend sets variables to true in decreasing order of objective coefficient as
// long as no upper bound is exceeded, then tries to repair unmet lower bounds. It never
// proves anything: results are FEASIBLE or NO_SOLUTION_FOUND.
type greedyBackend struct{}

func (greedyBackend) name() string { return "greedy" }

func (greedyBackend) solve(m *CpModel, params *Parameters, stop chan struct{}) (*backendResult, error) {
	if !m.IsBoolean() {
		return &backendResult{invalid: "greedy backend: only Boolean variables are supported"}, nil
	}

	solution := make([]int64, len(m.Variables))
	free := make([]bool, len(m.Variables))
	for i, v := range m.Variables {
		solution[i] = v.Domain.Start
		free[i] = !v.Domain.IsFixed()
	}

	type incidence struct {
		ct    int
		coeff int64
	}
	occurs := make([][]incidence, len(m.Variables))
	activity := make([]int64, len(m.Constraints))
	for ci, ct := range m.Constraints {
		for k, v := range ct.Vars {
			occurs[v] = append(occurs[v], incidence{ci, ct.Coeffs[k]})
		}
		activity[ci] = ct.activity(solution)
	}

	fits := func(v VarIndex) bool {
		for _, in := range occurs[v] {
			if in.coeff > 0 && activity[in.ct]+in.coeff > m.Constraints[in.ct].Ub {
				return false
			}
		}
		return true
	}
	set := func(v VarIndex) {
		solution[v] = 1
		free[v] = false
		for _, in := range occurs[v] {
			activity[in.ct] += in.coeff
		}
	}
	stopped := func() bool {
		select {
		case <-stop:
			return true
		default:
			return false
		}
	}

	maxCoeffs := maximizationCoeffs(m)
	pq := priorityqueue.New[VarIndex, int64](priorityqueue.MaxHeap)
	for i := range m.Variables {
		if free[i] && maxCoeffs[i] > 0 {
			pq.Put(VarIndex(i), maxCoeffs[i])
		}
	}
	for pq.Len() > 0 {
		if stopped() {
			return &backendResult{}, nil
		}
		item := pq.Get()
		if fits(item.Value) {
			set(item.Value)
		}
	}

	// Repair pass: raise unmet lower bounds with the best fitting candidates.
	for ci, ct := range m.Constraints {
		if activity[ci] >= ct.Lb {
			continue
		}
		var candidates []VarIndex
		for k, v := range ct.Vars {
			if free[v] && ct.Coeffs[k] > 0 {
				candidates = append(candidates, v)
			}
		}
		sort.SliceStable(candidates, func(a, b int) bool {
			return maxCoeffs[candidates[a]] > maxCoeffs[candidates[b]]
		})
		for _, v := range candidates {
			if activity[ci] >= ct.Lb {
				break
			}
			if fits(v) {
				set(v)
			}
		}
	}

	if !m.IsSatisfiedBy(solution) {
		log.V(1).Info("greedy backend: no feasible assignment found")
		return &backendResult{}, nil
	}
	return &backendResult{solution: solution}, nil
}
