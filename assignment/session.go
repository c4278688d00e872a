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
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	log "github.com/golang/glog"
	"github.com/salesopt/leadassign/cpmodel"
	"github.com/samber/lo"
)

// Phase is the state of a Session.
type Phase int

const (
	// PhaseUnbuilt is the initial phase.
	PhaseUnbuilt Phase = iota
	// PhaseModelBuilt follows a successful Build.
	PhaseModelBuilt
	// PhaseSolving lasts while the solver runs.
	PhaseSolving
	// PhaseSolvedOptimal means a proven optimal assignment is available.
	PhaseSolvedOptimal
	// PhaseSolvedFeasible means an assignment is available, not proven optimal.
	PhaseSolvedFeasible
	// PhaseNoSolution means the solve ended without assignment and without proof.
	PhaseNoSolution
	// PhaseTimedOut means the time budget elapsed before any assignment was found.
	PhaseTimedOut
	// PhaseInfeasible means the model was proven to have no assignment.
	PhaseInfeasible
)

var phaseNames = []string{
	"UNBUILT", "MODEL_BUILT", "SOLVING", "SOLVED_OPTIMAL", "SOLVED_FEASIBLE",
	"NO_SOLUTION", "TIMED_OUT", "INFEASIBLE",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Terminal reports whether no further transition is possible.
func (p Phase) Terminal() bool {
	return p >= PhaseSolvedOptimal
}

// HasAssignment reports whether the phase carries an assignment.
func (p Phase) HasAssignment() bool {
	return p == PhaseSolvedOptimal || p == PhaseSolvedFeasible
}

func phaseOf(s cpmodel.Status) Phase {
	switch s {
	case cpmodel.Optimal:
		return PhaseSolvedOptimal
	case cpmodel.Feasible:
		return PhaseSolvedFeasible
	case cpmodel.Infeasible:
		return PhaseInfeasible
	case cpmodel.TimedOutWithoutSolution:
		return PhaseTimedOut
	}
	return PhaseNoSolution
}

// Result is the outcome of a solve that produced an assignment.
type Result struct {
	Status    cpmodel.Status
	Objective int64
	// BestBound is the best proven bound on the objective, NaN when unknown.
	BestBound float64
	Pairs     []Pair
	Leads     int
	Reps      int
	WallTime  time.Duration
	Backend   string
	Stats     Stats
}

// AssignedLeads returns the number of leads with a rep.
func (r *Result) AssignedLeads() int {
	return len(r.Pairs)
}

// Session drives one instance through the phases UNBUILT, MODEL_BUILT, SOLVING and a
// terminal phase. A Session is safe for concurrent use, but solves at most once.
type Session struct {
	inst *Instance
	opts Options

	mu          sync.Mutex
	phase       Phase
	formulation *Formulation
	response    *cpmodel.Response
	result      *Result
	err         error
}

// NewSession returns a session in phase UNBUILT.
func NewSession(inst *Instance, opts Options) *Session {
	return &Session{inst: inst, opts: opts}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Formulation returns the built model, nil before Build.
func (s *Session) Formulation() *Formulation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formulation
}

// Response returns the raw solver response, nil before the solve ends.
func (s *Session) Response() *cpmodel.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.response
}

// Build builds the model. A validation failure leaves the session UNBUILT.
func (s *Session) Build() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildLocked()
}

func (s *Session) buildLocked() error {
	if s.phase != PhaseUnbuilt {
		return fmt.Errorf("cannot build the model in phase %v", s.phase)
	}
	f, err := BuildModel(s.inst, s.opts)
	if err != nil {
		return err
	}
	s.formulation = f
	s.phase = PhaseModelBuilt
	return nil
}

// Solve builds the model if needed, solves it and decodes the assignment. The
// solve stops early when ctx is done; the best assignment found so far is then
// returned as FEASIBLE. Without an assignment, the error matches ErrNoAssignment.
// Calling Solve again returns the first outcome.
func (s *Session) Solve(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.phase.Terminal() {
		defer s.mu.Unlock()
		return s.result, s.err
	}
	if s.phase == PhaseUnbuilt {
		if err := s.buildLocked(); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	if s.phase != PhaseModelBuilt {
		defer s.mu.Unlock()
		return nil, fmt.Errorf("cannot solve in phase %v", s.phase)
	}
	s.phase = PhaseSolving
	f := s.formulation
	s.mu.Unlock()

	resp, res, err := solveFormulation(ctx, f)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.response, s.result, s.err = resp, res, err
	if resp != nil {
		s.phase = phaseOf(resp.Status)
	} else {
		s.phase = PhaseNoSolution
	}
	return res, err
}

// Solve solves one instance in a fresh Session.
func Solve(ctx context.Context, inst *Instance, opts Options) (*Result, error) {
	return NewSession(inst, opts).Solve(ctx)
}

func solveFormulation(ctx context.Context, f *Formulation) (*cpmodel.Response, *Result, error) {
	m, err := f.Model()
	if err != nil {
		return nil, nil, err
	}
	params := f.Options.Solver
	if params.MaxTime == 0 {
		params.MaxTime = cpmodel.DefaultMaxTime
	}
	if !f.Options.DisablePrecheck {
		reason, err := precheck(f.Instance, f.Options)
		if err != nil {
			return nil, nil, err
		}
		if reason != "" {
			resp := &cpmodel.Response{
				Status:             cpmodel.Infeasible,
				BestObjectiveBound: math.NaN(),
				Backend:            "precheck",
				SolutionInfo:       reason,
			}
			err := f.statusError(resp)
			log.Errorf("no assignment: %v", err)
			return resp, nil, err
		}
	}
	log.Infof("starting solver with L=%d, R=%d, timeout=%v", f.Instance.NumLeads(), f.Instance.NumReps(), params.MaxTime)

	var interrupt <-chan struct{}
	if ctx != nil {
		interrupt = ctx.Done()
	}
	resp, err := cpmodel.SolveCpModelInterruptibleWithParameters(m, &params, interrupt)
	if err != nil {
		return nil, nil, fmt.Errorf("solving assignment model: %w", err)
	}
	log.Infof("solver status: %v", resp.Status)

	pairs, err := DecodeSolution(f, resp)
	if err != nil {
		var nse *NoSolutionError
		if errors.As(err, &nse) && ctx != nil {
			nse.Err = ctx.Err()
		}
		log.Errorf("no assignment: %v", err)
		return resp, nil, err
	}

	res := &Result{
		Status:    resp.Status,
		Objective: resp.IntegerObjective,
		BestBound: resp.BestObjectiveBound,
		Pairs:     pairs,
		Leads:     f.Instance.NumLeads(),
		Reps:      f.Instance.NumReps(),
		WallTime:  resp.WallTime,
		Backend:   resp.Backend,
		Stats:     f.Stats,
	}
	log.Infof("objective value: %d", res.Objective)
	lo.ForEach(pairs, func(p Pair, _ int) {
		log.V(1).Info(p)
	})
	return resp, res, nil
}
