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

// The example_with_time_slots command assigns 3 leads to 5 reps, where each lead
// needs one of 2 time slots and each rep is available at some of them.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	log "github.com/golang/glog"
	"github.com/salesopt/leadassign/assignment"
	"github.com/salesopt/leadassign/datagen"
	"github.com/salesopt/leadassign/report"
)

func exampleWithTimeSlots() error {
	inst, err := datagen.Generate(datagen.NewRand(datagen.DefaultTimeSlotSeed), datagen.TimeSlotExample())
	if err != nil {
		return fmt.Errorf("failed to generate the instance: %w", err)
	}
	datagen.LogInstance(inst)

	opts := assignment.Options{Compatibility: assignment.ForbidIncompatible}
	res, err := assignment.Solve(context.Background(), inst, opts)
	if err != nil && !errors.Is(err, assignment.ErrNoAssignment) {
		return fmt.Errorf("failed to solve the model: %w", err)
	}
	return report.New("example_with_time_slots", inst, res, err).WriteText(os.Stdout)
}

func main() {
	if err := exampleWithTimeSlots(); err != nil {
		log.Exitf("exampleWithTimeSlots returned with error: %v", err)
	}
}
