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

// The simple_example command assigns 5 leads to 7 reps, each rep visiting at most one
// lead per day.
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

func simpleExample() error {
	inst, err := datagen.Generate(datagen.NewRand(datagen.DefaultSeed), datagen.SimpleExample())
	if err != nil {
		return fmt.Errorf("failed to generate the instance: %w", err)
	}
	datagen.LogInstance(inst)

	res, err := assignment.Solve(context.Background(), inst, assignment.Options{Mode: assignment.Both})
	if err != nil && !errors.Is(err, assignment.ErrNoAssignment) {
		return fmt.Errorf("failed to solve the model: %w", err)
	}
	return report.New("simple_example", inst, res, err).WriteText(os.Stdout)
}

func main() {
	if err := simpleExample(); err != nil {
		log.Exitf("simpleExample returned with error: %v", err)
	}
}
