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

// Package cpmodel offers a small API to build and solve integer models made of
// Boolean and bounded integer variables, linear constraints and one linear objective.
//
// The `Builder` struct owns a `CpModel` and provides helper methods for adding
// variables, constraints and the objective.
// The `IntVar` and `BoolVar` structs are references to specific variables in the
// model and provide helpful methods for interacting with those variables.
// The `LinearExpr` struct provides helper methods for creating constraints and the
// objective from expressions with many variables and coefficients.
//
// Models are solved by one of the registered backends, see `SolveCpModel`.
package cpmodel

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	log "github.com/golang/glog"
)

// ErrMixedModels holds the error when elements added to a model are different.
var ErrMixedModels = errors.New("elements are not part of the same model")

type (
	// VarIndex is the index of a variable in the model, if positive. If this value is
	// negative, it represents the negation of a Boolean variable in the position (-1*VarIndex-1).
	VarIndex int32
	// ConstrIndex is the index of a constraint in the model.
	ConstrIndex int32
)

func (v VarIndex) positiveIndex() VarIndex {
	if v >= 0 {
		return v
	}
	return -1*v - 1
}

// Variable is the definition of one decision variable of a CpModel.
type Variable struct {
	Name   string
	Domain ClosedInterval
}

// LinearConstraint enforces `Lb <= sum(Coeffs[k]*Vars[k]) <= Ub`. Unbounded sides use
// math.MinInt64 and math.MaxInt64.
type LinearConstraint struct {
	Name   string
	Vars   []VarIndex
	Coeffs []int64
	Lb     int64
	Ub     int64
}

// Objective is the linear objective `sum(Coeffs[k]*Vars[k]) + Offset`.
type Objective struct {
	Vars     []VarIndex
	Coeffs   []int64
	Offset   int64
	Maximize bool
}

// CpModel is the solver-facing description of a model. All variable references are
// positive indices into Variables.
type CpModel struct {
	Name        string
	Variables   []*Variable
	Constraints []*LinearConstraint
	Objective   *Objective
}

// LinearArgument provides an interface for BoolVar, IntVar, and LinearExpr.
type LinearArgument interface {
	addToLinearExpr(e *LinearExpr, c int64)
	evaluateSolutionValue(r *Response) int64
}

// LinearExpr is a container for a linear expression.
type LinearExpr struct {
	varCoeffs []varCoeff
	offset    int64
}

type varCoeff struct {
	ind   VarIndex
	coeff int64
}

// NewLinearExpr creates a new empty LinearExpr.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// NewConstant creates and returns a LinearExpr containing the constant `c`.
func NewConstant(c int64) *LinearExpr {
	return &LinearExpr{offset: c}
}

// Add adds the linear argument term to the LinearExpr and returns itself.
func (l *LinearExpr) Add(la LinearArgument) *LinearExpr {
	l.AddTerm(la, 1)
	return l
}

// AddConstant adds the constant to the LinearExpr and returns itself.
func (l *LinearExpr) AddConstant(c int64) *LinearExpr {
	l.offset += c
	return l
}

// AddTerm adds the linear argument term with the given coefficient to the LinearExpr and returns itself.
func (l *LinearExpr) AddTerm(la LinearArgument, coeff int64) *LinearExpr {
	la.addToLinearExpr(l, coeff)
	return l
}

// AddSum adds the sum of the linear arguments to the LinearExpr and returns itself.
func (l *LinearExpr) AddSum(las ...LinearArgument) *LinearExpr {
	for _, la := range las {
		l.Add(la)
	}
	return l
}

// AddWeightedSum adds the linear arguments with the corresponding coefficients to the LinearExpr
// and returns itself.
func (l *LinearExpr) AddWeightedSum(las []LinearArgument, coeffs []int64) *LinearExpr {
	if len(coeffs) != len(las) {
		log.Fatalf("las and coeffs must be the same length: %v != %v", len(las), len(coeffs))
	}
	for i, la := range las {
		l.AddTerm(la, coeffs[i])
	}
	return l
}

// NumTerms returns the number of (variable, coefficient) terms of the expression.
func (l *LinearExpr) NumTerms() int {
	return len(l.varCoeffs)
}

func (l *LinearExpr) addToLinearExpr(e *LinearExpr, c int64) {
	for _, vc := range l.varCoeffs {
		e.varCoeffs = append(e.varCoeffs, varCoeff{ind: vc.ind, coeff: vc.coeff * c})
	}
	e.offset += l.offset * c
}

func (l *LinearExpr) evaluateSolutionValue(r *Response) int64 {
	result := l.offset

	for _, vc := range l.varCoeffs {
		result += r.Solution[vc.ind] * vc.coeff
	}

	return result
}

// merged returns the expression with one term per variable, in first-seen order, and
// without zero coefficients.
func (l *LinearExpr) merged() *LinearExpr {
	pos := make(map[VarIndex]int, len(l.varCoeffs))
	out := &LinearExpr{offset: l.offset}
	for _, vc := range l.varCoeffs {
		if p, ok := pos[vc.ind]; ok {
			out.varCoeffs[p].coeff += vc.coeff
			continue
		}
		pos[vc.ind] = len(out.varCoeffs)
		out.varCoeffs = append(out.varCoeffs, vc)
	}
	kept := out.varCoeffs[:0]
	for _, vc := range out.varCoeffs {
		if vc.coeff != 0 {
			kept = append(kept, vc)
		}
	}
	out.varCoeffs = kept
	return out
}

// IntVar is a reference to an integer variable in the model.
type IntVar struct {
	ind VarIndex
	cpb *Builder
}

// Name returns the name of the variable.
func (i IntVar) Name() string {
	return i.cpb.model.Variables[i.ind].Name
}

// Domain returns the domain of the variable.
func (i IntVar) Domain() ClosedInterval {
	return i.cpb.model.Variables[i.ind].Domain
}

// Index returns the index of the variable.
func (i IntVar) Index() VarIndex {
	return i.ind
}

// WithName sets the name of the variable.
func (i IntVar) WithName(s string) IntVar {
	i.cpb.model.Variables[i.ind].Name = s
	return i
}

func (i IntVar) addToLinearExpr(e *LinearExpr, c int64) {
	e.varCoeffs = append(e.varCoeffs, varCoeff{ind: i.ind, coeff: c})
}

func (i IntVar) evaluateSolutionValue(r *Response) int64 {
	return r.Solution[i.ind]
}

// BoolVar is a reference to a Boolean variable or the negation of a Boolean variable in the
// model.
type BoolVar struct {
	ind VarIndex
	cpb *Builder
}

// Not returns the logical Not of the Boolean variable
func (b BoolVar) Not() BoolVar {
	return BoolVar{ind: -1*b.ind - 1, cpb: b.cpb}
}

// Name returns the name of the variable.
func (b BoolVar) Name() string {
	return b.cpb.model.Variables[b.ind.positiveIndex()].Name
}

// Domain returns the domain of the variable.
func (b BoolVar) Domain() ClosedInterval {
	return b.cpb.model.Variables[b.ind.positiveIndex()].Domain
}

// Index returns the index of the variable. If the variable is a negation of another variable v,
// its index is `-1*v.index-1`.
func (b BoolVar) Index() VarIndex {
	return b.ind
}

// WithName sets the name of the variable.
func (b BoolVar) WithName(s string) BoolVar {
	b.cpb.model.Variables[b.ind.positiveIndex()].Name = s
	return b
}

func (b BoolVar) addToLinearExpr(e *LinearExpr, c int64) {
	if b.ind < 0 {
		e.varCoeffs = append(e.varCoeffs, varCoeff{ind: b.ind.positiveIndex(), coeff: -c})
		e.offset += c
	} else {
		e.varCoeffs = append(e.varCoeffs, varCoeff{ind: b.ind, coeff: c})
	}
}

func (b BoolVar) evaluateSolutionValue(r *Response) int64 {
	if b.ind < 0 {
		return 1 - r.Solution[b.ind.positiveIndex()]
	}
	return r.Solution[b.ind]
}

// Constraint is a reference to a constraint in the model.
type Constraint struct {
	ind ConstrIndex
	cpb *Builder
}

// WithName sets the name of the constraint.
func (c Constraint) WithName(s string) Constraint {
	c.cpb.model.Constraints[c.ind].Name = s
	return c
}

// Name returns the name of the constraint.
func (c Constraint) Name() string {
	return c.cpb.model.Constraints[c.ind].Name
}

// Index returns the index of the constraint.
func (c Constraint) Index() ConstrIndex {
	return c.ind
}

// checkSameModelAndSetErrorf returns true if `cp` and `cp2` point to the same Builder.
// If false, an error with the error message `errString` is set on `cp` if `cp.err`
// is nil.
func (cp *Builder) checkSameModelAndSetErrorf(cp2 *Builder, format string, a ...any) bool {
	if cp == cp2 {
		return true
	}
	var args = make([]any, len(a)+1)
	copy(args, a)
	args[len(a)] = ErrMixedModels
	err := fmt.Errorf(format+": %w", args...)
	log.Errorf("%v; use `-log_backtrace_at` flag to get the error stack", err)
	if cp.err == nil {
		cp.err = err
	}
	return false
}

// Builder provides a wrapper for building a CpModel.
type Builder struct {
	model     *CpModel
	constants map[int64]VarIndex
	// The first and only the first error is reported in Model.
	err error
}

// NewCpModelBuilder creates and returns a new CpModel Builder.
func NewCpModelBuilder() *Builder {
	return &Builder{model: &CpModel{}, constants: make(map[int64]VarIndex)}
}

// SetName sets the name of the model.
func (cp *Builder) SetName(name string) {
	cp.model.Name = name
}

// NumVariables returns the number of variables declared so far.
func (cp *Builder) NumVariables() int {
	return len(cp.model.Variables)
}

// NumConstraints returns the number of constraints added so far.
func (cp *Builder) NumConstraints() int {
	return len(cp.model.Constraints)
}

func (cp *Builder) appendVariable(lb, ub int64) VarIndex {
	ind := VarIndex(len(cp.model.Variables))
	cp.model.Variables = append(cp.model.Variables, &Variable{Domain: ClosedInterval{lb, ub}})
	return ind
}

// NewIntVar creates a new intVar in the model.
func (cp *Builder) NewIntVar(lb, ub int64) IntVar {
	return IntVar{cpb: cp, ind: cp.appendVariable(lb, ub)}
}

// NewBoolVar creates a new BoolVar in the model.
func (cp *Builder) NewBoolVar() BoolVar {
	return BoolVar{cpb: cp, ind: cp.appendVariable(0, 1)}
}

// NewConstant creates a constant variable. If this is called multiple times, the same variable will
// always be returned.
func (cp *Builder) NewConstant(v int64) IntVar {
	if i, ok := cp.constants[v]; ok {
		return IntVar{cpb: cp, ind: i}
	}

	constVar := cp.NewIntVar(v, v)
	cp.constants[v] = constVar.ind

	return constVar
}

// TrueVar creates an always true Boolean variable. If this is called multiple times, the same
// variable will always be returned.
func (cp *Builder) TrueVar() BoolVar {
	return BoolVar{cpb: cp, ind: cp.NewConstant(1).ind}
}

// FalseVar creates an always false Boolean variable. If this is called multiple times, the same
// variable will always be returned.
func (cp *Builder) FalseVar() BoolVar {
	return BoolVar{cpb: cp, ind: cp.NewConstant(0).ind}
}

func (cp *Builder) appendConstraint(ct *LinearConstraint) Constraint {
	i := ConstrIndex(len(cp.model.Constraints))
	cp.model.Constraints = append(cp.model.Constraints, ct)

	return Constraint{cpb: cp, ind: i}
}

// addLinearConstraint adds a linear constraint that enforces the value of `le` to be in
// `bounds`. The constant offset of `le` is subtracted from the bounds.
func (cp *Builder) addLinearConstraint(le *LinearExpr, bounds ClosedInterval) Constraint {
	le = le.merged()
	ct := &LinearConstraint{}
	for _, vc := range le.varCoeffs {
		ct.Vars = append(ct.Vars, vc.ind)
		ct.Coeffs = append(ct.Coeffs, vc.coeff)
	}
	b := bounds.Offset(-le.offset)
	ct.Lb, ct.Ub = b.Start, b.End

	return cp.appendConstraint(ct)
}

func (cp *Builder) boolSum(what string, bvs []BoolVar) *LinearExpr {
	sum := NewLinearExpr()
	for _, b := range bvs {
		cp.checkSameModelAndSetErrorf(b.cpb, "BoolVar %v added to %v constraint %v", b.Index(), what, len(cp.model.Constraints))
		sum.Add(b)
	}
	return sum
}

// AddBoolOr adds the constraint that at least one of the literals must be true.
func (cp *Builder) AddBoolOr(bvs ...BoolVar) Constraint {
	return cp.addLinearConstraint(cp.boolSum("BoolOr", bvs), ClosedInterval{1, math.MaxInt64})
}

// AddAtLeastOne adds the constraint that at least one of the literals must be true.
func (cp *Builder) AddAtLeastOne(bvs ...BoolVar) Constraint {
	return cp.AddBoolOr(bvs...)
}

// AddAtMostOne adds the constraint that at most one of the literals must be true.
func (cp *Builder) AddAtMostOne(bvs ...BoolVar) Constraint {
	return cp.addLinearConstraint(cp.boolSum("AtMostOne", bvs), ClosedInterval{math.MinInt64, 1})
}

// AddExactlyOne adds the constraint that exactly one of the literals must be true.
func (cp *Builder) AddExactlyOne(bvs ...BoolVar) Constraint {
	return cp.addLinearConstraint(cp.boolSum("ExactlyOne", bvs), ClosedInterval{1, 1})
}

// AddLinearConstraint adds the linear constraint `lb <= expr <= ub`
func (cp *Builder) AddLinearConstraint(expr LinearArgument, lb, ub int64) Constraint {
	linExpr := NewLinearExpr().Add(expr)
	return cp.addLinearConstraint(linExpr, ClosedInterval{lb, ub})
}

// AddEquality adds the linear constraint `lhs == rhs`.
func (cp *Builder) AddEquality(lhs LinearArgument, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)

	return cp.addLinearConstraint(diff, ClosedInterval{0, 0})
}

// AddLessOrEqual adds the linear constraint `lhs <= rhs`.
func (cp *Builder) AddLessOrEqual(lhs LinearArgument, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)

	return cp.addLinearConstraint(diff, ClosedInterval{math.MinInt64, 0})
}

// AddGreaterOrEqual adds the linear constraint `lhs >= rhs`.
func (cp *Builder) AddGreaterOrEqual(lhs LinearArgument, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)

	return cp.addLinearConstraint(diff, ClosedInterval{0, math.MaxInt64})
}

func (cp *Builder) setObjective(obj LinearArgument, maximize bool) {
	o := NewLinearExpr().Add(obj).merged()

	opb := &Objective{Offset: o.offset, Maximize: maximize}
	for _, vc := range o.varCoeffs {
		opb.Vars = append(opb.Vars, vc.ind)
		opb.Coeffs = append(opb.Coeffs, vc.coeff)
	}

	cp.model.Objective = opb
}

// Minimize adds a linear minimization objective.
func (cp *Builder) Minimize(obj LinearArgument) {
	cp.setObjective(obj, false)
}

// Maximize adds a linear maximization objective.
func (cp *Builder) Maximize(obj LinearArgument) {
	cp.setObjective(obj, true)
}

// Model returns the built model. The model returned is a pointer to the model in Builder,
// and if modified, future calls to the Builder API can fail or result in an invalid model.
//
// Model returns an error when invalid parameters have been used during model building (e.g.
// passing variables from other builders).
func (cp *Builder) Model() (*CpModel, error) {
	if cp.err != nil {
		return nil, cp.err
	}
	return cp.model, nil
}

// Validate returns an error describing the first structural problem of the model, or nil.
func (m *CpModel) Validate() error {
	for i, v := range m.Variables {
		if v.Domain.IsEmpty() {
			return fmt.Errorf("variable #%d %q has an empty domain %v", i, v.Name, v.Domain)
		}
	}
	checkTerms := func(what string, vars []VarIndex, coeffs []int64) error {
		if len(vars) != len(coeffs) {
			return fmt.Errorf("%s has %d variables and %d coefficients", what, len(vars), len(coeffs))
		}
		for _, v := range vars {
			if v < 0 || int(v) >= len(m.Variables) {
				return fmt.Errorf("%s references unknown variable %d", what, v)
			}
		}
		return nil
	}
	for i, ct := range m.Constraints {
		if err := checkTerms(fmt.Sprintf("constraint #%d %q", i, ct.Name), ct.Vars, ct.Coeffs); err != nil {
			return err
		}
		if ct.Lb > ct.Ub {
			return fmt.Errorf("constraint #%d %q has empty bounds [%d,%d]", i, ct.Name, ct.Lb, ct.Ub)
		}
		if !m.fitsInt64(ct.Vars, ct.Coeffs, 0) {
			return fmt.Errorf("constraint #%d %q can overflow int64", i, ct.Name)
		}
	}
	if m.Objective != nil {
		if err := checkTerms("objective", m.Objective.Vars, m.Objective.Coeffs); err != nil {
			return err
		}
		if !m.fitsInt64(m.Objective.Vars, m.Objective.Coeffs, m.Objective.Offset) {
			return errors.New("objective can overflow int64")
		}
	}
	return nil
}

// fitsInt64 reports whether |offset| + sum(|coeffs[k]| * max|domain of vars[k]|) fits in
// an int64, so that every partial sum of the expression does too.
func (m *CpModel) fitsInt64(vars []VarIndex, coeffs []int64, offset int64) bool {
	total := absUint64(offset)
	for k, v := range vars {
		d := m.Variables[v].Domain
		hi, term := bits.Mul64(absUint64(coeffs[k]), max(absUint64(d.Start), absUint64(d.End)))
		if hi != 0 {
			return false
		}
		var carry uint64
		total, carry = bits.Add64(total, term, 0)
		if carry != 0 {
			return false
		}
	}
	return total <= math.MaxInt64
}

func absUint64(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}

// IsBoolean reports whether every variable of the model has a domain included in [0,1].
func (m *CpModel) IsBoolean() bool {
	for _, v := range m.Variables {
		if v.Domain.Start < 0 || v.Domain.End > 1 {
			return false
		}
	}
	return true
}

// evaluate returns the value of the objective for the given full assignment.
func (o *Objective) evaluate(solution []int64) int64 {
	if o == nil {
		return 0
	}
	value := o.Offset
	for k, v := range o.Vars {
		value += o.Coeffs[k] * solution[v]
	}
	return value
}

// activity returns the value of the constraint expression for the given full assignment.
func (ct *LinearConstraint) activity(solution []int64) int64 {
	var a int64
	for k, v := range ct.Vars {
		a += ct.Coeffs[k] * solution[v]
	}
	return a
}

// IsSatisfiedBy reports whether the assignment satisfies every constraint and every
// variable domain of the model.
func (m *CpModel) IsSatisfiedBy(solution []int64) bool {
	if len(solution) != len(m.Variables) {
		return false
	}
	for i, v := range m.Variables {
		if !v.Domain.Contains(solution[i]) {
			return false
		}
	}
	for _, ct := range m.Constraints {
		a := ct.activity(solution)
		if a < ct.Lb || a > ct.Ub {
			return false
		}
	}
	return true
}
