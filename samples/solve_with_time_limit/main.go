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

// The solve_with_time_limit command solves a random assignment under a short time
// limit and an interrupt, and reports the best assignment found, if any.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/golang/glog"
	"github.com/salesopt/leadassign/assignment"
	"github.com/salesopt/leadassign/cpmodel"
	"github.com/salesopt/leadassign/datagen"
	"github.com/salesopt/leadassign/report"
)

var (
	leads   = flag.Int("leads", 200, "Number of leads.")
	reps    = flag.Int("reps", 200, "Number of reps.")
	timeout = flag.Duration("timeout", 10*time.Second, "Wall-clock budget of the solver.")
)

func solveWithTimeLimit() error {
	c := datagen.CPSATDemo()
	c.Leads, c.Reps = *leads, *reps
	inst, err := datagen.Generate(datagen.NewRand(datagen.DefaultSeed), c)
	if err != nil {
		return fmt.Errorf("failed to generate the instance: %w", err)
	}

	// Ctrl-C stops the search early, like the time limit.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := assignment.Options{
		Mode:   assignment.Both,
		Solver: cpmodel.Parameters{MaxTime: *timeout, ComputeRelaxationBound: true},
	}
	res, err := assignment.Solve(ctx, inst, opts)
	var timedOut *assignment.TimeoutWithoutSolutionError
	switch {
	case errors.As(err, &timedOut):
		fmt.Printf("Status: %v after %v\n", cpmodel.TimedOutWithoutSolution, timedOut.Elapsed)
		return nil
	case err != nil && !errors.Is(err, assignment.ErrNoAssignment):
		return fmt.Errorf("failed to solve the model: %w", err)
	}
	return report.New("solve_with_time_limit", inst, res, err).WriteText(os.Stdout)
}

func main() {
	flag.Parse()
	if err := solveWithTimeLimit(); err != nil {
		log.Exitf("solveWithTimeLimit returned with error: %v", err)
	}
}
