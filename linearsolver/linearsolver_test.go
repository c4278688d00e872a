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

package linearsolver

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func approxEq(x, y float64) bool {
	return math.Abs(x-y) < 1e-9
}

func newSolver(t *testing.T) *LinearSolver {
	t.Helper()
	solver, err := New("lp", PBIntegerProgramming)
	if err != nil {
		t.Fatalf("New(PB) err = %v, want nil", err)
	}
	return solver
}

func TestNew(t *testing.T) {
	if _, err := New("lp", ProblemType(99)); err == nil {
		t.Errorf("New(ProblemType(99)) err = nil, want not supported type error")
	}
	solver := newSolver(t)
	if solver.Name() != "lp" {
		t.Errorf("Name() = %q, want %q", solver.Name(), "lp")
	}
	if solver.ProblemType() != PBIntegerProgramming {
		t.Errorf("ProblemType() = %v, want %v", solver.ProblemType(), PBIntegerProgramming)
	}
	solver.EnableOutput()
	if !solver.OutputIsEnabled() {
		t.Errorf("OutputIsEnabled() = false, want true")
	}
	solver.SuppressOutput()
	if solver.OutputIsEnabled() {
		t.Errorf("OutputIsEnabled() = true, want false")
	}
}

func TestSolveEmpty(t *testing.T) {
	solver := newSolver(t)
	if status := solver.Solve(); status != Optimal {
		t.Errorf("Solve() = %v, want %v", status, Optimal)
	}
	if solver.Objective().Value() != 0 {
		t.Errorf("Objective Value() = %f, want 0", solver.Objective().Value())
	}
}

func TestObjective(t *testing.T) {
	solver := newSolver(t)
	o := solver.Objective()
	if !o.Minimization() {
		t.Error("Objective Minimization() = false, want true")
	}
	o.SetMaximization()
	if o.Minimization() {
		t.Error("Objective Minimization() = true, want false")
	}
	if 0 != o.Offset() {
		t.Errorf("Objective Offset() = %f, want 0", o.Offset())
	}
	o.SetOffset(2.5)
	if o.Offset() != 2.5 {
		t.Errorf("Objective Offset() = %f, want 2.5", o.Offset())
	}
	x, err := solver.MakeBoolVar("x")
	if err != nil {
		t.Errorf("MakeBoolVar(x) err = %v, want nil", err)
	}
	if o.Coefficient(x) != 0 {
		t.Errorf("Variable coefficient = %f, want 0", o.Coefficient(x))
	}
	o.SetCoefficient(x, 5.5)
	if o.Coefficient(x) != 5.5 {
		t.Errorf("Variable coefficient = %f, want 5.5", o.Coefficient(x))
	}
	o.Clear()
	if o.Offset() != 0 {
		t.Errorf("Objective Offset() = %f, want 0", o.Offset())
	}
	if o.Maximization() {
		t.Error("Objective Maximization() = true, want false")
	}
	if o.Coefficient(x) != 0 {
		t.Errorf("Variable coefficient = %f, want 0", o.Coefficient(x))
	}
}

func TestVariables(t *testing.T) {
	solver := newSolver(t)
	v, err := solver.MakeVar(0, 2.5, true, "x")
	if err != nil {
		t.Errorf("MakeVar(x) err = %v, want nil", err)
	}
	if _, err := solver.MakeVar(0, 2.5, true, "x"); err == nil {
		t.Error("MakeVar(x) err = nil, want duplicate var error")
	}
	if v.Name() != "x" {
		t.Errorf("Variable Name() = %q, want %q", v.Name(), "x")
	}
	x := solver.LookupVar("x")
	if x.LB() != 0 {
		t.Errorf("Variable LB() = %f, want 0", x.LB())
	}
	if y := solver.LookupVar("y"); y != nil {
		t.Error("Variable y != nil, want nil")
	}
	x.SetUB(3.5)
	if x.UB() != 3.5 {
		t.Errorf("Variable UB() = %f, want 3.5", x.UB())
	}
	auto, err := solver.MakeIntVar(0, 1, "")
	if err != nil {
		t.Errorf("MakeIntVar() err = %v, want nil", err)
	}
	if auto.Name() != "auto_v_000000001" {
		t.Errorf("Variable Name() = %q, want %q", auto.Name(), "auto_v_000000001")
	}
	if solver.NumVariables() != 2 {
		t.Errorf("NumVariables() = %v, want 2", solver.NumVariables())
	}
}

func TestConstraint(t *testing.T) {
	solver := newSolver(t)
	x, err := solver.MakeBoolVar("x")
	if err != nil {
		t.Errorf("MakeBoolVar(x) err = %v, want nil", err)
	}
	c, err := solver.MakeConstraint(0.1, 0.9, "c")
	if err != nil {
		t.Errorf("MakeConstraint() err = %v, want nil", err)
	}
	if c.Coefficient(x) != 0 {
		t.Errorf("Variable coefficient = %f, want 0", c.Coefficient(x))
	}
	c.SetCoefficient(x, 1.5)
	if c.Coefficient(x) != 1.5 {
		t.Errorf("Variable coefficient = %f, want 1.5", c.Coefficient(x))
	}
	if c.UB() != 0.9 {
		t.Errorf("Constraint UB = %f, want 0.9", c.UB())
	}
	c.SetUB(3.5)
	if c.UB() != 3.5 {
		t.Errorf("Constraint UB = %f, want 3.5", c.UB())
	}
	if c.Name() != "c" {
		t.Errorf("Constraint Name() = %q, want %q", c.Name(), "c")
	}
	if c.Index() != 0 {
		t.Errorf("Constraint Index() = %d, want 0", c.Index())
	}
	if _, err := solver.MakeConstraint(0, 0, "c"); err == nil {
		t.Error("MakeConstraint() err = nil, want error")
	}
	if c2 := solver.LookupConstraint("c"); c2.Index() != 0 {
		t.Errorf("Constraint Index() = %d, want 0", c2.Index())
	}
}

func TestBuildAndSolve(t *testing.T) {
	solver := newSolver(t)
	solver.SetTimeLimit(10 * time.Second)
	var vars []*Variable
	for _, name := range []string{"x", "y", "z"} {
		v, err := solver.MakeBoolVar(name)
		if err != nil {
			t.Fatalf("MakeBoolVar() err = %v, want nil", err)
		}
		vars = append(vars, v)
	}
	ct, err := solver.MakeConstraint(1.5, math.Inf(1), "ct")
	if err != nil {
		t.Fatalf("MakeConstraint() err = %v, want nil", err)
	}
	o := solver.Objective()
	for i, v := range vars {
		ct.SetCoefficient(v, 1)
		o.SetCoefficient(v, []float64{3, 1, 2}[i])
	}

	status := solver.Solve()
	if status != Optimal {
		t.Fatalf("Solve() = %v, want %v", status, Optimal)
	}
	if !approxEq(o.Value(), 3) {
		t.Errorf("Objective Value() = %f, want 3", o.Value())
	}
	if !approxEq(o.BestBound(), 3) {
		t.Errorf("Objective BestBound() = %f, want 3", o.BestBound())
	}
	got := []float64{vars[0].SolutionValue(), vars[1].SolutionValue(), vars[2].SolutionValue()}
	if diff := cmp.Diff([]float64{0, 1, 1}, got); diff != "" {
		t.Errorf("SolutionValue() returned with unexpected diff (-want+got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{2}, solver.ConstraintActivities()); diff != "" {
		t.Errorf("ConstraintActivities() returned with unexpected diff (-want+got):\n%s", diff)
	}
	if !solver.VerifySolution(1e-5, true) {
		t.Errorf("VerifySolution() = false, want true")
	}
	if solver.WallTime() > time.Minute {
		t.Errorf("WallTime() = %v which is too long", solver.WallTime())
	}

	solver.Clear()
	if solver.TimeLimit() != 10*time.Second {
		t.Errorf("TimeLimit() = %v, want 10s", solver.TimeLimit())
	}
	if solver.NumVariables() != 0 {
		t.Errorf("NumVariables() = %v, want 0", solver.NumVariables())
	}
	if solver.NumConstraints() != 0 {
		t.Errorf("NumConstraints() = %v, want 0", solver.NumConstraints())
	}
}

func TestSolveInfeasible(t *testing.T) {
	solver := newSolver(t)
	x, _ := solver.MakeBoolVar("x")
	y, _ := solver.MakeBoolVar("y")
	ct, _ := solver.MakeConstraint(3, 3, "ct")
	ct.SetCoefficient(x, 1)
	ct.SetCoefficient(y, 1)

	if status := solver.Solve(); status != Infeasible {
		t.Errorf("Solve() = %v, want %v", status, Infeasible)
	}
	if solver.VerifySolution(1e-5, false) {
		t.Errorf("VerifySolution() = true, want false")
	}
}

func TestSolveModelInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		build func(solver *LinearSolver)
	}{
		{
			name: "ContinuousVariable",
			build: func(solver *LinearSolver) {
				solver.MakeVar(0, 1, false, "x")
			},
		},
		{
			name: "FractionalCoefficient",
			build: func(solver *LinearSolver) {
				x, _ := solver.MakeBoolVar("x")
				c, _ := solver.MakeConstraint(0, 1, "c")
				c.SetCoefficient(x, 0.5)
			},
		},
		{
			name: "FractionalOffset",
			build: func(solver *LinearSolver) {
				solver.Objective().SetOffset(0.25)
			},
		},
		{
			name: "IntegerDomain",
			build: func(solver *LinearSolver) {
				solver.MakeIntVar(0, 5, "x")
			},
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			solver := newSolver(t)
			test.build(solver)
			if status := solver.Solve(); status != ModelInvalid {
				t.Errorf("Solve() = %v, want %v", status, ModelInvalid)
			}
		})
	}
}

func TestExportModelAsLpFormat(t *testing.T) {
	solver := newSolver(t)
	x, _ := solver.MakeBoolVar("x")
	y, _ := solver.MakeBoolVar("y")
	z, _ := solver.MakeIntVar(0, 3, "z")
	solver.MakeBoolVar("unused")
	ct, _ := solver.MakeConstraint(2, math.Inf(1), "ct")
	ct.SetCoefficient(x, 1)
	ct.SetCoefficient(y, 1)
	capacity, _ := solver.MakeConstraint(-1, 1, "cap")
	capacity.SetCoefficient(x, 2)
	capacity.SetCoefficient(z, -1)
	o := solver.Objective()
	o.SetMaximization()
	o.SetCoefficient(x, 3)
	o.SetCoefficient(y, 2)
	o.SetOffset(1)

	model, err := solver.Model()
	if err != nil {
		t.Fatalf("Model() err = %v, want nil", err)
	}
	got, err := ExportModelAsLpFormat(model, ExportOptions{})
	if err != nil {
		t.Fatalf("ExportModelAsLpFormat() err = %v, want nil", err)
	}
	want := strings.Join([]string{
		`\ Generated by leadassign linearsolver`,
		`\ Name: lp`,
		`Maximize`,
		` Obj: + 3 x + 2 y + 1`,
		`Subject To`,
		` ct: + 1 x + 1 y >= 2`,
		` cap_lhs: + 2 x - 1 z >= -1`,
		` cap_rhs: + 2 x - 1 z <= 1`,
		`Bounds`,
		` 0 <= z <= 3`,
		`Binaries`,
		` x`,
		` y`,
		`Generals`,
		` z`,
		`End`,
		``,
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExportModelAsLpFormat() returned with unexpected diff (-want+got):\n%s", diff)
	}

	obfuscated, err := ExportModelAsLpFormat(model, ExportOptions{Obfuscate: true, ShowUnusedVariables: true, MaxLineLength: 80})
	if err != nil {
		t.Fatalf("ExportModelAsLpFormat() err = %v, want nil", err)
	}
	for _, want := range []string{" C0: + 1 V0 + 1 V1 >= 2", " V3\n", "\\ Name: model"} {
		if !strings.Contains(obfuscated, want) {
			t.Errorf("ExportModelAsLpFormat(Obfuscate) = %q, want it to contain %q", obfuscated, want)
		}
	}
	if strings.Contains(obfuscated, "unused") {
		t.Errorf("ExportModelAsLpFormat(Obfuscate) = %q, want no original names", obfuscated)
	}
}

func TestExportModelAsLpFormat_Invalid(t *testing.T) {
	if _, err := ExportModelAsLpFormat(nil, ExportOptions{}); err == nil {
		t.Error("ExportModelAsLpFormat(nil) err = nil, want error")
	}
}
