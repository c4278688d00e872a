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

// Package linearsolver offers a mixed integer programming interface in the style of
// MPSolver: variables and row constraints with floating point bounds and
// coefficients, a mutable objective, and a Solve call. Models are solved by the
// cpmodel backends, so every variable must be integer and every coefficient
// integral.
package linearsolver

import (
	"errors"
	"fmt"
	"math"
	"time"

	log "github.com/golang/glog"
	"github.com/salesopt/leadassign/cpmodel"
)

// ProblemType selects the engine used by Solve.
type ProblemType int

const (
	// PBIntegerProgramming solves with the pseudo-Boolean optimizer.
	PBIntegerProgramming ProblemType = iota
	// GreedyIntegerProgramming returns a greedy feasible solution.
	GreedyIntegerProgramming
	// HighsMixedIntegerProgramming solves with HiGHS; requires the `highs` build tag.
	HighsMixedIntegerProgramming
	// LpSolveMixedIntegerProgramming solves with lp_solve; requires the `lpsolve` build tag.
	LpSolveMixedIntegerProgramming
)

var problemTypeBackends = map[ProblemType]string{
	PBIntegerProgramming:           "pb",
	GreedyIntegerProgramming:       "greedy",
	HighsMixedIntegerProgramming:   "highs",
	LpSolveMixedIntegerProgramming: "lpsolve",
}

func (t ProblemType) String() string {
	switch t {
	case PBIntegerProgramming:
		return "PB_INTEGER_PROGRAMMING"
	case GreedyIntegerProgramming:
		return "GREEDY_INTEGER_PROGRAMMING"
	case HighsMixedIntegerProgramming:
		return "HIGHS_MIXED_INTEGER_PROGRAMMING"
	case LpSolveMixedIntegerProgramming:
		return "LPSOLVE_MIXED_INTEGER_PROGRAMMING"
	}
	return fmt.Sprintf("ProblemType(%d)", int(t))
}

// SupportsProblemType returns whether the given problem type is supported
// (which depends on the build tags the binary was built with).
func SupportsProblemType(t ProblemType) bool {
	name, ok := problemTypeBackends[t]
	if !ok {
		return false
	}
	for _, b := range cpmodel.Backends() {
		if b == name {
			return true
		}
	}
	return false
}

// ResultStatus is the outcome of Solve.
type ResultStatus int

const (
	// Optimal means an optimal solution was found.
	Optimal ResultStatus = iota
	// Feasible means a solution was found, possibly not optimal.
	Feasible
	// Infeasible means the model was proven infeasible.
	Infeasible
	// Abnormal means the engine failed.
	Abnormal
	// ModelInvalid means the model was rejected.
	ModelInvalid
	// NotSolved means no solution was found, for instance because of the time limit.
	NotSolved
)

func (s ResultStatus) String() string {
	switch s {
	case Optimal:
		return "MPSOLVER_OPTIMAL"
	case Feasible:
		return "MPSOLVER_FEASIBLE"
	case Infeasible:
		return "MPSOLVER_INFEASIBLE"
	case Abnormal:
		return "MPSOLVER_ABNORMAL"
	case ModelInvalid:
		return "MPSOLVER_MODEL_INVALID"
	case NotSolved:
		return "MPSOLVER_NOT_SOLVED"
	}
	return fmt.Sprintf("ResultStatus(%d)", int(s))
}

// LinearSolver holds a model and, after Solve, its solution.
type LinearSolver struct {
	name        string
	problemType ProblemType
	vars        []*Variable
	varNames    map[string]*Variable
	cons        []*Constraint
	consNames   map[string]*Constraint
	objective   *Objective
	timeLimit   time.Duration
	output      bool

	response *cpmodel.Response
}

// New initializes a new linear solver, given a name and a problem type.
func New(name string, t ProblemType) (*LinearSolver, error) {
	if !SupportsProblemType(t) {
		return nil, fmt.Errorf("problem type %v not supported, registered backends are %v", t, cpmodel.Backends())
	}
	ls := &LinearSolver{name: name, problemType: t}
	ls.Clear()
	return ls, nil
}

// Clear removes every variable and constraint and resets the objective. The time
// limit is kept.
func (ls *LinearSolver) Clear() {
	ls.vars = nil
	ls.varNames = make(map[string]*Variable)
	ls.cons = nil
	ls.consNames = make(map[string]*Constraint)
	ls.objective = &Objective{bound: math.NaN()}
	ls.response = nil
}

// Name returns the name given to New.
func (ls *LinearSolver) Name() string { return ls.name }

// ProblemType returns the problem type given to New.
func (ls *LinearSolver) ProblemType() ProblemType { return ls.problemType }

// NumVariables returns the number of variables.
func (ls *LinearSolver) NumVariables() int { return len(ls.vars) }

// NumConstraints returns the number of constraints.
func (ls *LinearSolver) NumConstraints() int { return len(ls.cons) }

// Variables returns the variables in creation order.
func (ls *LinearSolver) Variables() []*Variable { return ls.vars }

// SetTimeLimit sets the wall-clock budget of Solve. Zero means the cpmodel default.
func (ls *LinearSolver) SetTimeLimit(d time.Duration) { ls.timeLimit = d }

// TimeLimit returns the wall-clock budget of Solve.
func (ls *LinearSolver) TimeLimit() time.Duration { return ls.timeLimit }

// EnableOutput makes the engine log its search.
func (ls *LinearSolver) EnableOutput() { ls.output = true }

// SuppressOutput silences the engine.
func (ls *LinearSolver) SuppressOutput() { ls.output = false }

// OutputIsEnabled reports whether the engine logs its search.
func (ls *LinearSolver) OutputIsEnabled() bool { return ls.output }

// WallTime returns the duration of the last Solve.
func (ls *LinearSolver) WallTime() time.Duration {
	if ls.response == nil {
		return 0
	}
	return ls.response.WallTime
}

// Variable is a decision variable of a LinearSolver.
type Variable struct {
	index    int
	name     string
	lb, ub   float64
	integer  bool
	solution float64
}

// Name returns the name of the variable.
func (v *Variable) Name() string { return v.name }

// Index returns the position of the variable in the model.
func (v *Variable) Index() int { return v.index }

// LB returns the lower bound.
func (v *Variable) LB() float64 { return v.lb }

// UB returns the upper bound.
func (v *Variable) UB() float64 { return v.ub }

// SetLB sets the lower bound.
func (v *Variable) SetLB(lb float64) { v.lb = lb }

// SetUB sets the upper bound.
func (v *Variable) SetUB(ub float64) { v.ub = ub }

// Integer reports whether the variable was declared integer.
func (v *Variable) Integer() bool { return v.integer }

// SolutionValue returns the value of the variable in the last solution.
func (v *Variable) SolutionValue() float64 { return v.solution }

// MakeVar creates and returns a new variable.
//
// Make `name` an empty string if you would like a unique variable name to be
// generated. Otherwise an error is returned if the provided `name` already
// exists as a variable name.
func (ls *LinearSolver) MakeVar(lb, ub float64, integer bool, name string) (*Variable, error) {
	if name == "" {
		name = fmt.Sprintf("auto_v_%09d", len(ls.vars))
	}
	if ls.LookupVar(name) != nil {
		return nil, fmt.Errorf("variable with name %s already exists", name)
	}
	v := &Variable{index: len(ls.vars), name: name, lb: lb, ub: ub, integer: integer}
	ls.vars = append(ls.vars, v)
	ls.varNames[name] = v
	return v, nil
}

// MakeBoolVar creates a 0-1 integer variable.
func (ls *LinearSolver) MakeBoolVar(name string) (*Variable, error) {
	return ls.MakeVar(0, 1, true, name)
}

// MakeIntVar creates an integer variable.
func (ls *LinearSolver) MakeIntVar(lb, ub float64, name string) (*Variable, error) {
	return ls.MakeVar(lb, ub, true, name)
}

// LookupVar returns the variable with the given name, or nil if not found.
func (ls *LinearSolver) LookupVar(name string) *Variable {
	return ls.varNames[name]
}

// terms keeps the coefficients of a row in insertion order.
type terms struct {
	coeffs map[*Variable]float64
	order  []*Variable
}

func (t *terms) set(v *Variable, coef float64) {
	if t.coeffs == nil {
		t.coeffs = make(map[*Variable]float64)
	}
	if _, ok := t.coeffs[v]; !ok {
		t.order = append(t.order, v)
	}
	t.coeffs[v] = coef
}

func (t *terms) get(v *Variable) float64 {
	return t.coeffs[v]
}

// Constraint is a row `LB <= sum(coef*var) <= UB`.
type Constraint struct {
	terms
	index  int
	name   string
	lb, ub float64
}

// MakeConstraint creates and returns a new constraint.
//
// Make `name` an empty string if you would like a unique constraint name to be
// generated. Otherwise an error is returned if the provided `name` already
// exists as a constraint name.
func (ls *LinearSolver) MakeConstraint(lb, ub float64, name string) (*Constraint, error) {
	if name == "" {
		name = fmt.Sprintf("auto_c_%09d", len(ls.cons))
	}
	if ls.LookupConstraint(name) != nil {
		return nil, fmt.Errorf("constraint with name %s already exists", name)
	}
	c := &Constraint{index: len(ls.cons), name: name, lb: lb, ub: ub}
	ls.cons = append(ls.cons, c)
	ls.consNames[name] = c
	return c, nil
}

// LookupConstraint return the constraint with the given name, or nil if not
// found.
func (ls *LinearSolver) LookupConstraint(name string) *Constraint {
	return ls.consNames[name]
}

// SetCoefficient sets the coefficient on a variable in a constraint.
func (c *Constraint) SetCoefficient(v *Variable, coef float64) { c.set(v, coef) }

// Coefficient gets the coefficient on a variable in a constraint.
func (c *Constraint) Coefficient(v *Variable) float64 { return c.get(v) }

// Name returns the name of the constraint.
func (c *Constraint) Name() string { return c.name }

// Index returns the position of the constraint in the model.
func (c *Constraint) Index() int { return c.index }

// LB returns the lower bound.
func (c *Constraint) LB() float64 { return c.lb }

// UB returns the upper bound.
func (c *Constraint) UB() float64 { return c.ub }

// SetLB sets the lower bound.
func (c *Constraint) SetLB(lb float64) { c.lb = lb }

// SetUB sets the upper bound.
func (c *Constraint) SetUB(ub float64) { c.ub = ub }

// Objective is the linear objective of the model.
type Objective struct {
	terms
	offset   float64
	maximize bool
	value    float64
	bound    float64
}

// Objective returns the model's objective.
func (ls *LinearSolver) Objective() *Objective { return ls.objective }

// SetCoefficient sets the coefficient on a variable in the objective.
func (o *Objective) SetCoefficient(v *Variable, coef float64) { o.set(v, coef) }

// Coefficient gets the coefficient on a variable in the objective.
func (o *Objective) Coefficient(v *Variable) float64 { return o.get(v) }

// SetOffset sets the constant term of the objective.
func (o *Objective) SetOffset(offset float64) { o.offset = offset }

// Offset returns the constant term of the objective.
func (o *Objective) Offset() float64 { return o.offset }

// SetMaximization makes the objective a maximization.
func (o *Objective) SetMaximization() { o.maximize = true }

// SetMinimization makes the objective a minimization.
func (o *Objective) SetMinimization() { o.maximize = false }

// Maximization reports whether the objective is maximized.
func (o *Objective) Maximization() bool { return o.maximize }

// Minimization reports whether the objective is minimized.
func (o *Objective) Minimization() bool { return !o.maximize }

// Clear removes every coefficient and the offset, and makes the objective a minimization.
func (o *Objective) Clear() {
	o.terms = terms{}
	o.offset = 0
	o.maximize = false
}

// Value returns the objective value of the last solution.
func (o *Objective) Value() float64 { return o.value }

// BestBound returns the best bound on the objective proven by the last solve, NaN
// when unknown.
func (o *Objective) BestBound() float64 { return o.bound }

// errNotIntegral is reported for continuous variables and fractional coefficients.
var errNotIntegral = errors.New("only integer variables and integral coefficients are supported")

func toInt(what string, f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%s = %v: %w", what, f, errNotIntegral)
	}
	return int64(f), nil
}

func lowerBound(f float64) int64 {
	if math.IsInf(f, -1) || f <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(math.Ceil(f))
}

func upperBound(f float64) int64 {
	if math.IsInf(f, 1) || f >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(math.Floor(f))
}

// Model returns the model as a cpmodel.CpModel. Bounds are rounded inward to integers.
func (ls *LinearSolver) Model() (*cpmodel.CpModel, error) {
	b := cpmodel.NewCpModelBuilder()
	b.SetName(ls.name)
	cpVars := make([]cpmodel.IntVar, len(ls.vars))
	for i, v := range ls.vars {
		if !v.integer {
			return nil, fmt.Errorf("variable %s: %w", v.name, errNotIntegral)
		}
		cpVars[i] = b.NewIntVar(lowerBound(v.lb), upperBound(v.ub)).WithName(v.name)
	}
	expr := func(what string, t *terms) (*cpmodel.LinearExpr, error) {
		e := cpmodel.NewLinearExpr()
		for _, v := range t.order {
			c, err := toInt(fmt.Sprintf("%s coefficient of %s", what, v.name), t.coeffs[v])
			if err != nil {
				return nil, err
			}
			e.AddTerm(cpVars[v.index], c)
		}
		return e, nil
	}
	for _, c := range ls.cons {
		e, err := expr("constraint "+c.name, &c.terms)
		if err != nil {
			return nil, err
		}
		b.AddLinearConstraint(e, lowerBound(c.lb), upperBound(c.ub)).WithName(c.name)
	}
	obj, err := expr("objective", &ls.objective.terms)
	if err != nil {
		return nil, err
	}
	offset, err := toInt("objective offset", ls.objective.offset)
	if err != nil {
		return nil, err
	}
	obj.AddConstant(offset)
	if ls.objective.maximize {
		b.Maximize(obj)
	} else {
		b.Minimize(obj)
	}
	return b.Model()
}

// Solve solves the model and returns a status. Solution values are available from
// the variables and the objective when the status is Optimal or Feasible.
func (ls *LinearSolver) Solve() ResultStatus {
	ls.response = nil
	for _, v := range ls.vars {
		v.solution = 0
	}
	ls.objective.value, ls.objective.bound = 0, math.NaN()

	m, err := ls.Model()
	if err != nil {
		log.Errorf("linearsolver %s: %v", ls.name, err)
		return ModelInvalid
	}
	params := &cpmodel.Parameters{
		MaxTime:           ls.timeLimit,
		Backend:           problemTypeBackends[ls.problemType],
		LogSearchProgress: ls.output,
	}
	res, err := cpmodel.SolveCpModelWithParameters(m, params)
	if err != nil {
		log.Errorf("linearsolver %s: %v", ls.name, err)
		return Abnormal
	}
	ls.response = res

	switch res.Status {
	case cpmodel.Optimal, cpmodel.Feasible:
		for i, v := range ls.vars {
			v.solution = float64(res.Solution[i])
		}
		ls.objective.value = res.ObjectiveValue
		ls.objective.bound = res.BestObjectiveBound
		if res.Status == cpmodel.Optimal {
			return Optimal
		}
		return Feasible
	case cpmodel.Infeasible:
		return Infeasible
	case cpmodel.ModelInvalid:
		log.Errorf("linearsolver %s: invalid model: %s", ls.name, res.SolutionInfo)
		return ModelInvalid
	default:
		return NotSolved
	}
}

// ConstraintActivities returns the activities of all constraints in the last solution.
func (ls *LinearSolver) ConstraintActivities() []float64 {
	out := make([]float64, len(ls.cons))
	for i, c := range ls.cons {
		for _, v := range c.order {
			out[i] += c.coeffs[v] * v.solution
		}
	}
	return out
}

// VerifySolution reports whether the last solution satisfies every bound and
// constraint within `tolerance`. Violations are logged when `logErrors` is set.
func (ls *LinearSolver) VerifySolution(tolerance float64, logErrors bool) bool {
	if ls.response == nil || !ls.response.Status.HasSolution() {
		return false
	}
	ok := true
	fail := func(format string, args ...any) {
		ok = false
		if logErrors {
			log.Errorf(format, args...)
		}
	}
	for _, v := range ls.vars {
		if v.solution < v.lb-tolerance || v.solution > v.ub+tolerance {
			fail("variable %s = %v is out of [%v, %v]", v.name, v.solution, v.lb, v.ub)
		}
	}
	for i, a := range ls.ConstraintActivities() {
		c := ls.cons[i]
		if a < c.lb-tolerance || a > c.ub+tolerance {
			fail("constraint %s activity %v is out of [%v, %v]", c.name, a, c.lb, c.ub)
		}
	}
	return ok
}
