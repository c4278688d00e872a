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
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// ErrRelaxationTooLarge is returned when the dense relaxation exceeds the size limit.
var ErrRelaxationTooLarge = errors.New("relaxation too large")

// RelaxationBound solves the LP relaxation of the model and returns the bound it gives
// on the objective: an upper bound when maximizing, a lower bound when minimizing.
// Every variable must have finite bounds.
//
// The relaxation is written in the standard form `min c^T y s.t. A y = b, y >= 0`
// with y = x - lb, one slack column per variable upper bound and one per inequality.
func RelaxationBound(m *CpModel, maxCells int) (float64, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	if m.Objective == nil {
		return 0, nil
	}

	col := make(map[VarIndex]int)
	var cols []VarIndex
	var objConst float64
	for i, v := range m.Variables {
		if !v.Domain.HasLowerBound() || !v.Domain.HasUpperBound() {
			return 0, fmt.Errorf("variable #%d has unbounded domain %v", i, v.Domain)
		}
		if !v.Domain.IsFixed() {
			col[VarIndex(i)] = len(cols)
			cols = append(cols, VarIndex(i))
		}
	}

	type row struct {
		coeffs map[int]float64
		slack  float64 // +1 for `<=`, -1 for `>=`, 0 for `==`
		rhs    float64
	}
	var rows []row
	for _, v := range cols {
		d := m.Variables[v].Domain
		rows = append(rows, row{coeffs: map[int]float64{col[v]: 1}, slack: 1, rhs: float64(d.End - d.Start)})
	}
	for _, ct := range m.Constraints {
		coeffs := make(map[int]float64)
		var constant float64
		for k, v := range ct.Vars {
			c := float64(ct.Coeffs[k])
			constant += c * float64(m.Variables[v].Domain.Start)
			if j, ok := col[v]; ok && c != 0 {
				coeffs[j] += c
			}
		}
		for j, c := range coeffs {
			if c == 0 {
				delete(coeffs, j)
			}
		}
		if len(coeffs) == 0 {
			continue
		}
		b := ClosedInterval{ct.Lb, ct.Ub}
		switch {
		case b.IsFixed():
			rows = append(rows, row{coeffs: coeffs, rhs: float64(b.Start) - constant})
		default:
			if b.HasUpperBound() {
				rows = append(rows, row{coeffs: coeffs, slack: 1, rhs: float64(b.End) - constant})
			}
			if b.HasLowerBound() {
				rows = append(rows, row{coeffs: coeffs, slack: -1, rhs: float64(b.Start) - constant})
			}
		}
	}

	numSlacks := 0
	for _, r := range rows {
		if r.slack != 0 {
			numSlacks++
		}
	}
	numCols := len(cols) + numSlacks
	if len(rows) == 0 || numCols == 0 {
		return objectiveOnFixed(m), nil
	}
	if len(rows)*numCols > maxCells {
		return 0, fmt.Errorf("%d x %d matrix: %w", len(rows), numCols, ErrRelaxationTooLarge)
	}

	a := mat.NewDense(len(rows), numCols, nil)
	b := make([]float64, len(rows))
	slack := len(cols)
	for i, r := range rows {
		for j, c := range r.coeffs {
			a.Set(i, j, c)
		}
		if r.slack != 0 {
			a.Set(i, slack, r.slack)
			slack++
		}
		b[i] = r.rhs
	}

	c := make([]float64, numCols)
	maxCoeffs := maximizationCoeffs(m)
	for i, v := range m.Variables {
		objConst += float64(maxCoeffs[i]) * float64(v.Domain.Start)
	}
	for j, v := range cols {
		c[j] = -float64(maxCoeffs[v])
	}

	optF, _, err := lp.Simplex(c, a, b, 0, nil)
	if err != nil {
		return 0, fmt.Errorf("simplex: %w", err)
	}

	// optF minimizes the negated maximization objective.
	bound := -optF + objConst
	if !m.Objective.Maximize {
		bound = -bound
	}
	return bound + float64(m.Objective.Offset), nil
}

func objectiveOnFixed(m *CpModel) float64 {
	solution := make([]int64, len(m.Variables))
	for i, v := range m.Variables {
		solution[i] = v.Domain.Start
	}
	return float64(m.Objective.evaluate(solution))
}
