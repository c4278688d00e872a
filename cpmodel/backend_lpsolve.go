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

//go:build lpsolve

package cpmodel

import (
	"fmt"
	"math"

	"github.com/draffensperger/golp"
	log "github.com/golang/glog"
)

func init() {
	registerBackend(func() backend { return lpsolveBackend{} })
}

// lpsolveBackend solves models as mixed integer programs with lp_solve. A stopped
// search reports no solution.
type lpsolveBackend struct{}

func (lpsolveBackend) name() string { return "lpsolve" }

func (lpsolveBackend) solve(m *CpModel, params *Parameters, stop chan struct{}) (*backendResult, error) {
	numCols := len(m.Variables)
	lp := golp.NewLP(0, numCols)
	for j, v := range m.Variables {
		lp.SetInt(j, true)
		lp.SetBounds(j, boundToFloat(v.Domain.Start), boundToFloat(v.Domain.End))
	}

	for i, ct := range m.Constraints {
		row := make([]golp.Entry, 0, len(ct.Vars))
		for k, v := range ct.Vars {
			row = append(row, golp.Entry{Col: int(v), Val: float64(ct.Coeffs[k])})
		}
		b := ClosedInterval{ct.Lb, ct.Ub}
		var err error
		switch {
		case b.IsFixed():
			err = lp.AddConstraintSparse(row, golp.EQ, float64(b.Start))
		default:
			if b.HasLowerBound() {
				err = lp.AddConstraintSparse(row, golp.GE, float64(b.Start))
			}
			if err == nil && b.HasUpperBound() {
				err = lp.AddConstraintSparse(row, golp.LE, float64(b.End))
			}
		}
		if err != nil {
			return nil, fmt.Errorf("constraint #%d: %w", i, err)
		}
	}

	obj := make([]float64, numCols)
	if m.Objective != nil {
		for k, v := range m.Objective.Vars {
			obj[v] += float64(m.Objective.Coeffs[k])
		}
		if m.Objective.Maximize {
			lp.SetMaximize()
		}
	}
	lp.SetObjFn(obj)

	return untilStopped(stop, func() (*backendResult, error) {
		status := lp.Solve()
		log.V(1).Infof("lpsolve backend: status %v", status)
		switch status {
		case golp.OPTIMAL, golp.SUBOPTIMAL:
			vars := lp.Variables()
			values := make([]int64, numCols)
			for j := range values {
				values[j] = int64(math.Round(vars[j]))
			}
			return &backendResult{solution: values, proven: status == golp.OPTIMAL}, nil
		case golp.INFEASIBLE:
			return &backendResult{proven: true}, nil
		default:
			return &backendResult{}, nil
		}
	})
}
