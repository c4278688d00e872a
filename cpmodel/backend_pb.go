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
	"github.com/crillab/gophersat/solver"
	log "github.com/golang/glog"
)

func init() {
	registerBackend(func() backend { return pbBackend{} })
}

// pbBackend solves Boolean models with the gophersat pseudo-Boolean optimizer.
type pbBackend struct{}

func (pbBackend) name() string { return "pb" }

func (pbBackend) solve(m *CpModel, params *Parameters, stop chan struct{}) (*backendResult, error) {
	form, err := newPBForm(m)
	if err != nil {
		return &backendResult{invalid: "pb backend: " + err.Error()}, nil
	}
	if form.infeasible != nil {
		log.V(1).Infof("Constraint #%d can never be satisfied", *form.infeasible)
		return &backendResult{proven: true}, nil
	}

	maxCoeffs := maximizationCoeffs(m)
	solution := make([]int64, len(m.Variables))
	for v, val := range form.fixed {
		solution[v] = val
	}

	// Variables that appear in no constraint take their best value directly; the
	// others are numbered from 1 for the solver.
	pbVar := make(map[VarIndex]int)
	var pbVars []VarIndex
	for _, c := range form.constrs {
		for _, l := range c.lits {
			if _, ok := pbVar[l.v]; !ok {
				pbVars = append(pbVars, l.v)
				pbVar[l.v] = len(pbVars)
			}
		}
	}
	for i := range m.Variables {
		v := VarIndex(i)
		if _, ok := form.fixed[v]; ok {
			continue
		}
		if _, ok := pbVar[v]; !ok && maxCoeffs[v] > 0 {
			solution[v] = 1
		}
	}
	if len(form.constrs) == 0 {
		return &backendResult{solution: solution, proven: true}, nil
	}

	constrs := make([]solver.PBConstr, 0, len(form.constrs))
	for _, c := range form.constrs {
		lits := make([]int, len(c.lits))
		weights := make([]int, len(c.lits))
		for k, l := range c.lits {
			lits[k] = pbVar[l.v]
			if l.negated {
				lits[k] = -lits[k]
			}
			weights[k] = int(c.weights[k])
		}
		constrs = append(constrs, solver.GtEq(lits, weights, int(c.atLeast)))
	}
	problem := solver.ParsePBConstrs(constrs)

	// Maximizing sum(c*x) is minimizing sum(c*(not x)) for c > 0 and sum(|c|*x) for c < 0.
	var costLits []solver.Lit
	var costWeights []int
	for _, v := range pbVars {
		c := maxCoeffs[v]
		switch {
		case c > 0:
			costLits = append(costLits, solver.IntToLit(int32(-pbVar[v])))
			costWeights = append(costWeights, int(c))
		case c < 0:
			costLits = append(costLits, solver.IntToLit(int32(pbVar[v])))
			costWeights = append(costWeights, int(-c))
		}
	}

	log.V(1).Infof("pb backend: %d variables, %d constraints, %d cost terms", len(pbVars), len(constrs), len(costLits))

	if len(costLits) > 0 {
		problem.SetCostFunc(costLits, costWeights)
	}
	s := solver.New(problem)
	s.Verbose = params.LogSearchProgress
	res, proven := optimal(s, stop)

	switch {
	case res == nil:
		return &backendResult{}, nil
	case res.Status == solver.Sat:
		for i, v := range pbVars {
			if i < len(res.Model) && res.Model[i] {
				solution[v] = 1
			}
		}
		return &backendResult{solution: solution, proven: proven}, nil
	case res.Status == solver.Unsat && proven:
		return &backendResult{proven: true}, nil
	default:
		return &backendResult{}, nil
	}
}

// optimal runs the gophersat optimization loop until it returns or `stop` is closed.
// The loop itself cannot be interrupted: on stop it is left running in the background,
// its remaining results are discarded, and the best result received so far is returned
// with proven == false. The result is nil when no solution arrived before the stop.
func optimal(s *solver.Solver, stop <-chan struct{}) (res *solver.Result, proven bool) {
	select {
	case <-stop:
		return nil, false
	default:
	}
	results := make(chan solver.Result)
	done := make(chan solver.Result, 1)
	go func() {
		done <- s.Optimal(results, nil)
	}()

	var best *solver.Result
	for {
		select {
		case r, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			if r.Status == solver.Sat {
				best = &r
			}
		case r := <-done:
			return &r, true
		case <-stop:
			select {
			case r := <-done:
				return &r, true
			default:
			}
			if results != nil {
				go func(results <-chan solver.Result) {
					for range results {
					}
				}(results)
			}
			log.V(1).Info("pb backend: stopped before the search completed")
			return best, false
		}
	}
}
