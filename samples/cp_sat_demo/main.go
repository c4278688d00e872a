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

// The cp_sat_demo command solves a large random assignment: 1000 leads, 1000 reps,
// 70% permitted pairs and per-pair capacities.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/golang/glog"
	"github.com/salesopt/leadassign/assignment"
	"github.com/salesopt/leadassign/cpmodel"
	"github.com/salesopt/leadassign/datagen"
	"github.com/salesopt/leadassign/report"
)

var (
	leads   = flag.Int("leads", 1000, "Number of leads.")
	reps    = flag.Int("reps", 1000, "Number of reps.")
	timeout = flag.Duration("timeout", 5000*time.Second, "Wall-clock budget of the solver.")
)

func cpSatDemo() error {
	c := datagen.CPSATDemo()
	c.Leads, c.Reps = *leads, *reps
	inst, err := datagen.Generate(datagen.NewRand(datagen.DefaultSeed), c)
	if err != nil {
		return fmt.Errorf("failed to generate the instance: %w", err)
	}

	opts := assignment.Options{
		Mode:          assignment.ExactlyOnePerLead,
		Capacity:      assignment.PerPairCapacity,
		Compatibility: assignment.ForbidIncompatible,
		Solver:        cpmodel.Parameters{MaxTime: *timeout},
	}
	res, err := assignment.Solve(context.Background(), inst, opts)
	if err != nil && !errors.Is(err, assignment.ErrNoAssignment) {
		return fmt.Errorf("failed to solve the model: %w", err)
	}
	return report.New("cp_sat_demo", inst, res, err).WriteText(os.Stdout)
}

func main() {
	flag.Parse()
	if err := cpSatDemo(); err != nil {
		log.Exitf("cpSatDemo returned with error: %v", err)
	}
}
