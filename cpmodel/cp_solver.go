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
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/golang/glog"
)

// DefaultMaxTime is the wall-clock budget used when Parameters.MaxTime is zero.
const DefaultMaxTime = 5000 * time.Second

// DefaultBackend is the backend used when Parameters.Backend is empty.
const DefaultBackend = "pb"

// DefaultRelaxationMaxCells bounds the size of the dense LP used for relaxation bounds.
const DefaultRelaxationMaxCells = 1 << 22

// Status is the outcome classification of a solve.
type Status int

const (
	// Unknown is the zero value; it is never returned by a completed solve.
	Unknown Status = iota
	// ModelInvalid means the model or the parameters were rejected before search.
	ModelInvalid
	// Optimal means a solution was found and proven optimal.
	Optimal
	// Feasible means a solution was found but optimality was not proven.
	Feasible
	// Infeasible means the model was proven to have no solution.
	Infeasible
	// NoSolutionFound means the search ended without a solution and without a proof of
	// infeasibility.
	NoSolutionFound
	// TimedOutWithoutSolution means the wall-clock budget elapsed before any solution was found.
	TimedOutWithoutSolution
)

var statusNames = map[Status]string{
	Unknown:                 "UNKNOWN",
	ModelInvalid:            "MODEL_INVALID",
	Optimal:                 "OPTIMAL",
	Feasible:                "FEASIBLE",
	Infeasible:              "INFEASIBLE",
	NoSolutionFound:         "NO_SOLUTION_FOUND",
	TimedOutWithoutSolution: "TIMED_OUT_WITHOUT_SOLUTION",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// HasSolution reports whether a response with this status carries a solution.
func (s Status) HasSolution() bool {
	return s == Optimal || s == Feasible
}

// Parameters configures a solve.
type Parameters struct {
	// MaxTime is the wall-clock budget. On expiry the search is stopped and the best
	// solution found so far, if any, is returned as FEASIBLE.
	MaxTime time.Duration
	// Backend selects a registered backend by name, see Backends().
	Backend string
	// ComputeRelaxationBound requests an LP relaxation bound for FEASIBLE results.
	ComputeRelaxationBound bool
	// RelaxationMaxCells skips the relaxation when rows*columns of its dense matrix
	// would exceed this value.
	RelaxationMaxCells int
	// LogSearchProgress makes the backend verbose.
	LogSearchProgress bool
}

func (p *Parameters) withDefaults() *Parameters {
	out := Parameters{}
	if p != nil {
		out = *p
	}
	if out.MaxTime == 0 {
		out.MaxTime = DefaultMaxTime
	}
	if out.Backend == "" {
		out.Backend = DefaultBackend
	}
	if out.RelaxationMaxCells == 0 {
		out.RelaxationMaxCells = DefaultRelaxationMaxCells
	}
	return &out
}

// Response is the result of a solve.
type Response struct {
	Status Status
	// ObjectiveValue is meaningful only when Status.HasSolution().
	ObjectiveValue float64
	// IntegerObjective is the exact value of ObjectiveValue.
	IntegerObjective int64
	// BestObjectiveBound is the best proven bound on the objective, NaN when unknown.
	BestObjectiveBound float64
	// Solution holds one value per model variable when Status.HasSolution().
	Solution     []int64
	WallTime     time.Duration
	Backend      string
	SolutionInfo string
}

// backend is a search engine able to solve a validated CpModel. The stop channel is
// closed when the search must end; the backend then returns its best solution so far.
type backend interface {
	name() string
	solve(m *CpModel, params *Parameters, stop chan struct{}) (*backendResult, error)
}

// backendResult is the raw outcome of a backend. `proven` tells whether the
// search completed: a solution with proven == false is only feasible, no solution with
// proven == true is infeasible.
type backendResult struct {
	solution []int64
	proven   bool
	invalid  string
}

var (
	backendsMu sync.RWMutex
	backends   = map[string]func() backend{}
)

// registerBackend makes a backend available under its name.
func registerBackend(f func() backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[f().name()] = f
}

// Backends returns the sorted names of the registered backends.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	var names []string
	for n := range backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newBackend(name string) (backend, error) {
	backendsMu.RLock()
	f, ok := backends[name]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown backend %q, registered backends are %v", name, Backends())
	}
	return f(), nil
}

// SolveCpModel solves a model with the default parameters and returns a Response.
func SolveCpModel(input *CpModel) (*Response, error) {
	return SolveCpModelWithParameters(input, nil)
}

// SolveCpModelWithParameters solves a model with the given parameters and returns a
// Response.
func SolveCpModelWithParameters(input *CpModel, params *Parameters) (*Response, error) {
	return SolveCpModelInterruptibleWithParameters(input, params, nil)
}

type stopReason int32

const (
	notStopped stopReason = iota
	stoppedByDeadline
	stoppedByInterrupt
)

// SolveCpModelInterruptibleWithParameters solves a model with the given parameters and
// returns a Response. The solve can be interrupted by triggering the `interrupt`.
//
// An error is returned only for problems outside the model itself (unknown backend,
// backend failure). A rejected model is reported with the MODEL_INVALID status.
func SolveCpModelInterruptibleWithParameters(input *CpModel, params *Parameters, interrupt <-chan struct{}) (*Response, error) {
	params = params.withDefaults()
	b, err := newBackend(params.Backend)
	if err != nil {
		return nil, err
	}
	res := &Response{Backend: b.name(), BestObjectiveBound: math.NaN()}

	if params.MaxTime < 0 {
		res.Status = ModelInvalid
		res.SolutionInfo = fmt.Sprintf("invalid max time %v", params.MaxTime)
		return res, nil
	}
	if err := input.Validate(); err != nil {
		res.Status = ModelInvalid
		res.SolutionInfo = err.Error()
		return res, nil
	}

	var reason atomic.Int32
	stop := make(chan struct{})
	var once sync.Once
	halt := func(r stopReason) {
		once.Do(func() {
			reason.Store(int32(r))
			close(stop)
		})
	}

	timer := time.NewTimer(params.MaxTime)
	defer timer.Stop()
	solveDone := make(chan struct{})
	defer close(solveDone)
	// Wait for either the solve to finish, the deadline or the interrupt.
	go func() {
		select {
		case <-interrupt:
			halt(stoppedByInterrupt)
		case <-timer.C:
			halt(stoppedByDeadline)
		case <-solveDone:
		}
	}()

	// An already closed `interrupt` must stop the search before it starts, whatever the
	// scheduling of the goroutine above.
	select {
	case <-interrupt:
		halt(stoppedByInterrupt)
	default:
	}

	start := time.Now()
	raw, err := b.solve(input, params, stop)
	res.WallTime = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("backend %q failed: %w", b.name(), err)
	}

	switch {
	case raw.invalid != "":
		res.Status = ModelInvalid
		res.SolutionInfo = raw.invalid
	case raw.solution != nil && raw.proven:
		res.Status = Optimal
	case raw.solution != nil:
		res.Status = Feasible
	case raw.proven:
		res.Status = Infeasible
	case stopReason(reason.Load()) == stoppedByDeadline:
		res.Status = TimedOutWithoutSolution
		res.SolutionInfo = fmt.Sprintf("no solution after %v", res.WallTime)
	default:
		res.Status = NoSolutionFound
	}

	if res.Status.HasSolution() {
		if !input.IsSatisfiedBy(raw.solution) {
			return nil, fmt.Errorf("backend %q returned an assignment violating the model", b.name())
		}
		res.Solution = raw.solution
		res.IntegerObjective = input.Objective.evaluate(raw.solution)
		res.ObjectiveValue = float64(res.IntegerObjective)
		switch {
		case res.Status == Optimal:
			res.BestObjectiveBound = res.ObjectiveValue
		case params.ComputeRelaxationBound:
			bound, err := RelaxationBound(input, params.RelaxationMaxCells)
			if err != nil {
				log.V(1).Infof("No relaxation bound: %v", err)
			} else {
				res.BestObjectiveBound = bound
			}
		}
	}

	log.V(1).Infof("Backend %s finished with status %v in %v", b.name(), res.Status, res.WallTime)
	return res, nil
}

// SolutionBooleanValue returns the value of BoolVar `bv` in the response.
func SolutionBooleanValue(r *Response, bv BoolVar) bool {
	return bv.evaluateSolutionValue(r) != 0
}

// SolutionIntegerValue returns the value of LinearArgument `la` in the response.
func SolutionIntegerValue(r *Response, la LinearArgument) int64 {
	return la.evaluateSolutionValue(r)
}
