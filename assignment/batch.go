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
	"runtime"
	"sync"

	log "github.com/golang/glog"
)

// BatchResult is the outcome of one instance of a batch.
type BatchResult struct {
	Index  int
	Result *Result
	Err    error
}

// SolveBatch solves independent instances with the same options on `workers`
// goroutines (GOMAXPROCS when workers <= 0). Each instance gets its own Session and
// model; results are returned in input order.
func SolveBatch(ctx context.Context, instances []*Instance, opts Options, workers int) []BatchResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(instances) {
		workers = len(instances)
	}
	log.Infof("solving %d instances on %d workers", len(instances), workers)

	out := make([]BatchResult, len(instances))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := Solve(ctx, instances[i], opts)
				out[i] = BatchResult{Index: i, Result: res, Err: err}
			}
		}()
	}
	for i := range instances {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}
