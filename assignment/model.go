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
	"math"

	log "github.com/golang/glog"
	"github.com/salesopt/leadassign/cpmodel"
)

// Stats counts the elements of a formulation.
type Stats struct {
	Variables                int
	RowConstraints           int
	ColumnConstraints        int
	CompatibilityConstraints int
	CapacityConstraints      int
}

// Constraints returns the total number of constraints.
func (s Stats) Constraints() int {
	return s.RowConstraints + s.ColumnConstraints + s.CompatibilityConstraints + s.CapacityConstraints
}

// Formulation is a built assignment model.
type Formulation struct {
	Instance *Instance
	Options  Options
	Builder  *cpmodel.Builder
	// X is the L×R matrix of decision variables. Omitted pairs hold the constant
	// false variable of Builder.
	X [][]cpmodel.BoolVar
	// Present tells which pairs have a decision variable.
	Present [][]bool
	Stats   Stats
}

// Model returns the built cpmodel.CpModel.
func (f *Formulation) Model() (*cpmodel.CpModel, error) {
	return f.Builder.Model()
}

// BuildModel validates the instance and builds its assignment model:
//
//	maximize   sum_ij E[i][j]*x[i][j]
//	subject to sum_j x[i][j] == 1 (or <= 1)  for every lead i
//	           sum_i x[i][j] <= 1            for every rep j, depending on the mode
//	           x[i][j] == 0                  for incompatible pairs
//	           D[i][j]*x[i][j] <= M[j]       (or sum_i D[i][j]*x[i][j] <= M[j])
//
// Variables are declared in row-major order.
func BuildModel(inst *Instance, opts Options) (*Formulation, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if opts.Mode < ExactlyOnePerLead || opts.Mode > Both {
		return nil, fmt.Errorf("unknown mode %v", opts.Mode)
	}
	if opts.Compatibility != OmitIncompatible && opts.Compatibility != ForbidIncompatible {
		return nil, fmt.Errorf("unknown compatibility %v", opts.Compatibility)
	}
	if opts.Capacity != PerPairCapacity && opts.Capacity != AggregateCapacity {
		return nil, fmt.Errorf("unknown capacity policy %v", opts.Capacity)
	}
	l, r := inst.NumLeads(), inst.NumReps()
	b := cpmodel.NewCpModelBuilder()
	b.SetName("lead_assignment")
	f := &Formulation{
		Instance: inst,
		Options:  opts,
		Builder:  b,
		X:        make([][]cpmodel.BoolVar, l),
		Present:  make([][]bool, l),
	}

	for i := 0; i < l; i++ {
		f.X[i] = make([]cpmodel.BoolVar, r)
		f.Present[i] = make([]bool, r)
		for j := 0; j < r; j++ {
			if !inst.Compatible(i, j) && opts.Compatibility == OmitIncompatible {
				f.X[i][j] = b.FalseVar()
				continue
			}
			f.X[i][j] = b.NewBoolVar().WithName(fmt.Sprintf("x[%d,%d]", i, j))
			f.Present[i][j] = true
			f.Stats.Variables++
		}
	}

	obj := cpmodel.NewLinearExpr()
	f.forPresent(func(i, j int) {
		obj.AddTerm(f.X[i][j], inst.Profit[i][j])
	})
	b.Maximize(obj)
	log.V(1).Infof("objective: %d terms", obj.NumTerms())

	for i := 0; i < l; i++ {
		row := f.row(i)
		if opts.Mode.ExactRows() {
			b.AddExactlyOne(row...).WithName(fmt.Sprintf("lead[%d]", i))
			log.V(2).Infof("constraint sum_j x_ij=1 (i=%d): %d terms", i, len(row))
		} else {
			b.AddAtMostOne(row...).WithName(fmt.Sprintf("lead[%d]", i))
			log.V(2).Infof("constraint sum_j x_ij<=1 (i=%d): %d terms", i, len(row))
		}
		f.Stats.RowConstraints++
	}
	if opts.Mode.ExactRows() {
		log.Info("constraints sum_j x_ij=1 added")
	} else {
		log.Info("constraints sum_j x_ij<=1 added")
	}

	if opts.Mode.LimitsColumns() {
		for j := 0; j < r; j++ {
			col := f.column(j)
			b.AddAtMostOne(col...).WithName(fmt.Sprintf("rep[%d]", j))
			log.V(2).Infof("constraint sum_i x_ij<=1 (j=%d): %d terms", j, len(col))
			f.Stats.ColumnConstraints++
		}
		log.Info("constraints sum_i x_ij<=1 added")
	}

	if opts.Compatibility == ForbidIncompatible {
		for i := 0; i < l; i++ {
			for j := 0; j < r; j++ {
				if inst.Compatible(i, j) {
					continue
				}
				b.AddEquality(f.X[i][j], cpmodel.NewConstant(0)).WithName(fmt.Sprintf("forbid[%d,%d]", i, j))
				log.V(2).Infof("constraint x_ij<=A_ij (i=%d, j=%d): x[%d,%d] = 0", i, j, i, j)
				f.Stats.CompatibilityConstraints++
			}
		}
		log.Info("constraints x_ij <= A_ij added")
	}

	if inst.HasCapacity() {
		switch opts.Capacity {
		case PerPairCapacity:
			f.forPresent(func(i, j int) {
				expr := cpmodel.NewLinearExpr().AddTerm(f.X[i][j], inst.Demand[i][j])
				b.AddLinearConstraint(expr, math.MinInt64, inst.Capacity[j]).WithName(fmt.Sprintf("capacity[%d,%d]", i, j))
				f.Stats.CapacityConstraints++
			})
			log.Info("constraints D_ij*x_ij <= M_j added")
		case AggregateCapacity:
			for j := 0; j < r; j++ {
				expr := cpmodel.NewLinearExpr()
				for i := 0; i < l; i++ {
					if f.Present[i][j] {
						expr.AddTerm(f.X[i][j], inst.Demand[i][j])
					}
				}
				b.AddLinearConstraint(expr, math.MinInt64, inst.Capacity[j]).WithName(fmt.Sprintf("capacity[%d]", j))
				log.V(2).Infof("constraint sum_i D_ij*x_ij<=M_j (j=%d): %d terms", j, expr.NumTerms())
				f.Stats.CapacityConstraints++
			}
			log.Info("constraints sum_i D_ij*x_ij <= M_j added")
		}
	}

	if _, err := b.Model(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Formulation) forPresent(fn func(i, j int)) {
	for i, row := range f.Present {
		for j, ok := range row {
			if ok {
				fn(i, j)
			}
		}
	}
}

// row returns the decision variables of lead i.
func (f *Formulation) row(i int) []cpmodel.BoolVar {
	var out []cpmodel.BoolVar
	for j, ok := range f.Present[i] {
		if ok {
			out = append(out, f.X[i][j])
		}
	}
	return out
}

// column returns the decision variables of rep j.
func (f *Formulation) column(j int) []cpmodel.BoolVar {
	var out []cpmodel.BoolVar
	for i := range f.Present {
		if f.Present[i][j] {
			out = append(out, f.X[i][j])
		}
	}
	return out
}
