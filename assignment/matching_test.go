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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLargestMatching(t *testing.T) {
	testCases := []struct {
		name string
		inst *Instance
		want int
	}{
		{
			name: "Complete",
			inst: leadsInstance(),
			want: 2,
		},
		{
			name: "Availability",
			inst: &Instance{
				Profit:       [][]int64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}},
				Availability: [][]int64{{1, 0, 0}, {1, 0, 0}, {0, 1, 1}},
			},
			want: 2,
		},
		{
			name: "CapacityRemovesPairs",
			inst: &Instance{
				Profit:   [][]int64{{1, 1}, {1, 1}},
				Demand:   [][]int64{{1, 9}, {1, 9}},
				Capacity: []int64{5, 5},
			},
			want: 1,
		},
		{
			name: "Empty",
			inst: &Instance{},
			want: 0,
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			pairs, err := LargestMatching(test.inst)
			if err != nil {
				t.Fatalf("LargestMatching() returned with unexpected error %v", err)
			}
			if got := len(pairs); got != test.want {
				t.Errorf("len(LargestMatching()) = %v, want %v", got, test.want)
			}
			leads := map[int]bool{}
			reps := map[int]bool{}
			for _, p := range pairs {
				if leads[p.Lead] || reps[p.Rep] || !test.inst.Usable(p.Lead, p.Rep) {
					t.Errorf("LargestMatching() returned invalid pair %+v in %v", p, pairs)
				}
				leads[p.Lead], reps[p.Rep] = true, true
			}
		})
	}
}

func TestLargestMatching_Diagonal(t *testing.T) {
	inst := &Instance{
		Profit:       [][]int64{{1, 2}, {3, 4}},
		Availability: [][]int64{{0, 1}, {1, 0}},
	}
	got, err := LargestMatching(inst)
	if err != nil {
		t.Fatalf("LargestMatching() returned with unexpected error %v", err)
	}
	want := []Pair{{Lead: 0, Rep: 1, Profit: 2}, {Lead: 1, Rep: 0, Profit: 3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LargestMatching() returned with unexpected diff (-want+got):\n%s", diff)
	}
}

func TestPrecheck(t *testing.T) {
	testCases := []struct {
		name string
		inst *Instance
		opts Options
		want string
	}{
		{
			name: "ExactRowsLeadWithoutRep",
			inst: &Instance{Profit: [][]int64{{1, 1}, {1, 1}}, Availability: [][]int64{{1, 1}, {0, 0}}},
			want: "lead 1 has no usable rep",
		},
		{
			name: "AtMostOneLeadWithoutRep",
			inst: &Instance{Profit: [][]int64{{1, 1}, {1, 1}}, Availability: [][]int64{{1, 1}, {0, 0}}},
			opts: Options{Mode: AtMostOnePerRep},
			want: "",
		},
		{
			name: "BothTooFewReps",
			inst: leadsInstance(),
			opts: Options{Mode: Both},
			want: "3 leads need distinct reps but there are only 2 reps",
		},
		{
			name: "BothNoPerfectMatching",
			inst: &Instance{
				Profit:       [][]int64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}},
				Availability: [][]int64{{1, 0, 0}, {1, 0, 0}, {0, 1, 1}},
			},
			opts: Options{Mode: Both},
			want: "at most 2 of 3 leads can get distinct usable reps",
		},
		{
			name: "BothPerfectMatching",
			inst: &Instance{Profit: [][]int64{{5, 1, 0}, {2, 8, 0}, {4, 4, 0}}},
			opts: Options{Mode: Both},
			want: "",
		},
		{
			name: "DemandAboveEveryCapacity",
			inst: &Instance{
				Profit:   [][]int64{{1, 1}},
				Demand:   [][]int64{{6, 7}},
				Capacity: []int64{5, 5},
			},
			opts: Options{Capacity: AggregateCapacity},
			want: "lead 0 has no usable rep",
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			got, err := precheck(test.inst, test.opts)
			if err != nil {
				t.Fatalf("precheck() returned with unexpected error %v", err)
			}
			if got != test.want {
				t.Errorf("precheck() = %q, want %q", got, test.want)
			}
		})
	}
}
