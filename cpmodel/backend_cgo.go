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

//go:build highs || lpsolve

package cpmodel

// untilStopped runs a search that cannot be interrupted. When `stop` is closed first
// the search is left running in the background and no solution is reported.
func untilStopped(stop <-chan struct{}, search func() (*backendResult, error)) (*backendResult, error) {
	type outcome struct {
		res *backendResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := search()
		done <- outcome{res, err}
	}()
	select {
	case o := <-done:
		return o.res, o.err
	case <-stop:
		select {
		case o := <-done:
			return o.res, o.err
		default:
			return &backendResult{}, nil
		}
	}
}
