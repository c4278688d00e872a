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

// The mip_simple_example command assigns 5 leads to 7 reps through the linearsolver
// interface, each rep visiting at most one lead per day.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	log "github.com/golang/glog"
	"github.com/salesopt/leadassign/datagen"
	"github.com/salesopt/leadassign/linearsolver"
)

var exportLP = flag.String("export_lp", "", "Write the model to this file in LP format.")

const timeLimit = 5000 * time.Second

func mipSimpleExample() error {
	inst, err := datagen.Generate(datagen.NewRand(datagen.DefaultSeed), datagen.SimpleExample())
	if err != nil {
		return fmt.Errorf("failed to generate the instance: %w", err)
	}
	datagen.LogInstance(inst)
	l, r := inst.NumLeads(), inst.NumReps()

	solver, err := linearsolver.New("mip_simple_example", linearsolver.PBIntegerProgramming)
	if err != nil {
		return fmt.Errorf("failed to create the solver: %w", err)
	}

	x := make([][]*linearsolver.Variable, l)
	for i := range x {
		x[i] = make([]*linearsolver.Variable, r)
		for j := range x[i] {
			if x[i][j], err = solver.MakeBoolVar(fmt.Sprintf("x_%d_%d", i, j)); err != nil {
				return err
			}
		}
	}

	objective := solver.Objective()
	for i := 0; i < l; i++ {
		for j := 0; j < r; j++ {
			objective.SetCoefficient(x[i][j], float64(inst.Profit[i][j]))
		}
	}
	objective.SetMaximization()

	// Every lead is assigned to exactly one rep.
	for i := 0; i < l; i++ {
		ct, err := solver.MakeConstraint(1, 1, fmt.Sprintf("lead_%d", i))
		if err != nil {
			return err
		}
		for j := 0; j < r; j++ {
			ct.SetCoefficient(x[i][j], 1)
		}
		log.V(1).Infof("constraint sum_j x_ij=1 (i=%d): sum_j x[%d,j] = 1", i, i)
	}

	// Every rep visits at most one lead.
	for j := 0; j < r; j++ {
		ct, err := solver.MakeConstraint(math.Inf(-1), 1, fmt.Sprintf("rep_%d", j))
		if err != nil {
			return err
		}
		for i := 0; i < l; i++ {
			ct.SetCoefficient(x[i][j], 1)
		}
		log.V(1).Infof("constraint sum_i x_ij<=1 (j=%d): sum_i x[i,%d] <= 1", j, j)
	}

	if *exportLP != "" {
		m, err := solver.Model()
		if err != nil {
			return fmt.Errorf("failed to instantiate the model: %w", err)
		}
		lp, err := linearsolver.ExportModelAsLpFormat(m, linearsolver.ExportOptions{})
		if err != nil {
			return err
		}
		if err := os.WriteFile(*exportLP, []byte(lp), 0o644); err != nil {
			return err
		}
	}

	solver.SetTimeLimit(timeLimit)
	log.Infof("starting solver with L=%d, R=%d, timeout=%v", l, r, timeLimit)
	status := solver.Solve()

	if status != linearsolver.Optimal {
		fmt.Println("No optimal solution found or time limit reached.")
		return nil
	}
	fmt.Printf("objective value: %v\n", objective.Value())
	fmt.Printf("status: %v (means optimal)\n", status)
	for i := 0; i < l; i++ {
		for j := 0; j < r; j++ {
			if x[i][j].SolutionValue() > 0.5 {
				fmt.Printf("Lead %d is assigned to Rep %d\n", i, j)
			}
		}
	}
	return nil
}

func main() {
	flag.Parse()
	if err := mipSimpleExample(); err != nil {
		log.Exitf("mipSimpleExample returned with error: %v", err)
	}
}
