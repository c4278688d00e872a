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

// The batch_solve command solves several random instances concurrently, one model per
// instance.
package main

import (
	"context"
	"flag"
	"fmt"

	log "github.com/golang/glog"
	"github.com/salesopt/leadassign/assignment"
	"github.com/salesopt/leadassign/datagen"
)

var (
	count   = flag.Int("count", 8, "Number of instances.")
	workers = flag.Int("workers", 0, "Number of workers, GOMAXPROCS when zero.")
)

func batchSolve() error {
	instances := make([]*assignment.Instance, *count)
	for k := range instances {
		inst, err := datagen.Generate(datagen.NewRand(datagen.DefaultSeed+uint64(k)), datagen.SimpleExample())
		if err != nil {
			return fmt.Errorf("failed to generate instance %d: %w", k, err)
		}
		instances[k] = inst
	}

	results := assignment.SolveBatch(context.Background(), instances, assignment.Options{Mode: assignment.Both}, *workers)
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("instance %d: %v\n", r.Index, r.Err)
			continue
		}
		fmt.Printf("instance %d: status %v, objective %d, %d leads assigned\n", r.Index, r.Result.Status, r.Result.Objective, r.Result.AssignedLeads())
	}
	return nil
}

func main() {
	flag.Parse()
	if err := batchSolve(); err != nil {
		log.Exitf("batchSolve returned with error: %v", err)
	}
}
