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

import "fmt"

// pbLit is a literal over a Boolean model variable: `v` when positive, not `v` when negated.
type pbLit struct {
	v       VarIndex
	negated bool
}

// pbConstr is `sum(weights[k]*lits[k]) >= atLeast` with strictly positive weights.
type pbConstr struct {
	lits    []pbLit
	weights []int64
	atLeast int64
	origin  ConstrIndex
}

func (c pbConstr) weightSum() int64 {
	var s int64
	for _, w := range c.weights {
		s += w
	}
	return s
}

// pbForm is a Boolean model rewritten as pseudo-Boolean constraints over its
// non-fixed variables.
type pbForm struct {
	constrs []pbConstr
	// fixed holds the value of variables whose domain is a single value.
	fixed map[VarIndex]int64
	// infeasible is set to the index of a constraint that can never be satisfied.
	infeasible *ConstrIndex
}

// newPBForm rewrites every linear constraint of a Boolean model in `>=` form with
// positive weights. Fixed variables are folded into the bounds, trivially satisfied
// sides are dropped and the first trivially violated side marks the form infeasible.
func newPBForm(m *CpModel) (*pbForm, error) {
	if !m.IsBoolean() {
		return nil, fmt.Errorf("only Boolean variables are supported")
	}
	f := &pbForm{fixed: make(map[VarIndex]int64)}
	for i, v := range m.Variables {
		if v.Domain.IsFixed() {
			f.fixed[VarIndex(i)] = v.Domain.Start
		}
	}

	for ci, ct := range m.Constraints {
		var vars []VarIndex
		var coeffs []int64
		var constant int64
		for k, v := range ct.Vars {
			if val, ok := f.fixed[v]; ok {
				constant += ct.Coeffs[k] * val
				continue
			}
			vars = append(vars, v)
			coeffs = append(coeffs, ct.Coeffs[k])
		}
		bounds := ClosedInterval{ct.Lb, ct.Ub}.Offset(-constant)

		var sides []pbConstr
		if bounds.HasLowerBound() {
			sides = append(sides, gtEq(vars, coeffs, bounds.Start))
		}
		if bounds.HasUpperBound() {
			neg := make([]int64, len(coeffs))
			for k, c := range coeffs {
				neg[k] = -c
			}
			sides = append(sides, gtEq(vars, neg, -bounds.End))
		}
		for _, side := range sides {
			if side.atLeast <= 0 {
				continue
			}
			if side.weightSum() < side.atLeast {
				idx := ConstrIndex(ci)
				f.infeasible = &idx
				return f, nil
			}
			side.origin = ConstrIndex(ci)
			f.constrs = append(f.constrs, side)
		}
	}
	return f, nil
}

// gtEq builds `sum(coeffs[k]*vars[k]) >= bound` with positive weights, using
// c*x = c + |c|*(not x) for negative coefficients.
func gtEq(vars []VarIndex, coeffs []int64, bound int64) pbConstr {
	c := pbConstr{atLeast: bound}
	for k, coeff := range coeffs {
		switch {
		case coeff > 0:
			c.lits = append(c.lits, pbLit{v: vars[k]})
			c.weights = append(c.weights, coeff)
		case coeff < 0:
			c.lits = append(c.lits, pbLit{v: vars[k], negated: true})
			c.weights = append(c.weights, -coeff)
			c.atLeast = checkOverflowAndAdd(c.atLeast, -coeff)
		}
	}
	return c
}

// maximizationCoeffs returns, for every variable, its objective coefficient in
// maximization form.
func maximizationCoeffs(m *CpModel) []int64 {
	coeffs := make([]int64, len(m.Variables))
	if m.Objective == nil {
		return coeffs
	}
	sign := int64(1)
	if !m.Objective.Maximize {
		sign = -1
	}
	for k, v := range m.Objective.Vars {
		coeffs[v] += sign * m.Objective.Coeffs[k]
	}
	return coeffs
}
