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

//go:build highs

package cpmodel

import (
	"math"

	log "github.com/golang/glog"
	"github.com/lanl/highs"
)

func init() {
	registerBackend(func() backend { return highsBackend{} })
}

// highsBackend solves models as mixed integer programs with HiGHS. A stopped search
// reports no solution.
type highsBackend struct{}

func (highsBackend) name() string { return "highs" }

func (highsBackend) solve(m *CpModel, params *Parameters, stop chan struct{}) (*backendResult, error) {
	numCols := len(m.Variables)
	lp := new(highs.Model)
	lp.VarTypes = make([]highs.VariableType, numCols)
	lp.ColLower = make([]float64, numCols)
	lp.ColUpper = make([]float64, numCols)
	lp.ColCosts = make([]float64, numCols)
	for j, v := range m.Variables {
		lp.VarTypes[j] = highs.IntegerType
		lp.ColLower[j] = boundToFloat(v.Domain.Start)
		lp.ColUpper[j] = boundToFloat(v.Domain.End)
	}
	if m.Objective != nil {
		lp.Maximize = m.Objective.Maximize
		lp.Offset = float64(m.Objective.Offset)
		for k, v := range m.Objective.Vars {
			lp.ColCosts[v] += float64(m.Objective.Coeffs[k])
		}
	}
	for i, ct := range m.Constraints {
		for k, v := range ct.Vars {
			lp.ConstMatrix = append(lp.ConstMatrix, highs.Nonzero{Row: i, Col: int(v), Val: float64(ct.Coeffs[k])})
		}
		lp.RowLower = append(lp.RowLower, boundToFloat(ct.Lb))
		lp.RowUpper = append(lp.RowUpper, boundToFloat(ct.Ub))
	}

	return untilStopped(stop, func() (*backendResult, error) {
		solution, err := lp.Solve()
		if err != nil {
			return nil, err
		}
		log.V(1).Infof("highs backend: status %v", solution.Status.String())
		switch solution.Status {
		case highs.Optimal:
			values := make([]int64, numCols)
			for j := range values {
				values[j] = int64(math.Round(solution.ColumnPrimal[j]))
			}
			return &backendResult{solution: values, proven: true}, nil
		case highs.Infeasible:
			return &backendResult{proven: true}, nil
		default:
			return &backendResult{}, nil
		}
	})
}
