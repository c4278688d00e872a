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

package report

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/salesopt/leadassign/assignment"
	"github.com/salesopt/leadassign/cpmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/structpb"
)

func instance() *assignment.Instance {
	return &assignment.Instance{Profit: [][]int64{{5, 1, 0}, {2, 8, 0}, {4, 4, 0}}}
}

func result() *assignment.Result {
	return &assignment.Result{
		Status:    cpmodel.Feasible,
		Objective: 13,
		BestBound: 14.5,
		Pairs:     []assignment.Pair{{Lead: 0, Rep: 0, Profit: 5}, {Lead: 1, Rep: 1, Profit: 8}},
		Leads:     3,
		Reps:      3,
		WallTime:  1500 * time.Millisecond,
		Backend:   "greedy",
	}
}

func TestNew(t *testing.T) {
	r := New("demo", instance(), result(), nil)
	_, err := uuid.Parse(r.RunID)
	assert.NoError(t, err)
	assert.Equal(t, 3, r.Leads)
	assert.Equal(t, 3, r.Reps)
	assert.NotEqual(t, r.RunID, New("demo", instance(), result(), nil).RunID)
}

func TestLines(t *testing.T) {
	tests := map[string]struct {
		res  *assignment.Result
		err  error
		want []string
	}{
		"feasible": {
			res: result(),
			want: []string{
				"objective value: 13",
				"status: FEASIBLE",
				"best bound: 14.5",
				"Lead 0 is assigned to Rep 0",
				"Lead 1 is assigned to Rep 1",
				"unassigned leads: [2]",
			},
		},
		"optimal": {
			res: &assignment.Result{
				Status:    cpmodel.Optimal,
				Objective: 5,
				BestBound: 5,
				Pairs:     []assignment.Pair{{Lead: 0, Rep: 0, Profit: 5}},
				Leads:     1,
			},
			want: []string{"objective value: 5", "status: OPTIMAL", "Lead 0 is assigned to Rep 0"},
		},
		"no solution": {
			err:  &assignment.TimeoutWithoutSolutionError{Elapsed: time.Second},
			want: []string{NoSolutionMessage, "reason: no solution found within the time budget (elapsed 1s)"},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := New("demo", instance(), tt.res, tt.err)
			assert.Equal(t, tt.want, r.Lines())

			var buf bytes.Buffer
			require.NoError(t, r.WriteText(&buf))
			assert.Equal(t, len(tt.want), bytes.Count(buf.Bytes(), []byte("\n")))
		})
	}
}

func TestStruct(t *testing.T) {
	r := New("demo", instance(), result(), nil)
	r.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got, err := r.Struct()
	require.NoError(t, err)

	want, err := structpb.NewStruct(map[string]any{
		"run_id":            r.RunID,
		"name":              "demo",
		"leads":             3,
		"reps":              3,
		"created_at":        "2024-01-02T03:04:05Z",
		"status":            "FEASIBLE",
		"objective":         13,
		"best_bound":        14.5,
		"wall_time_seconds": 1.5,
		"backend":           "greedy",
		"pairs": []any{
			map[string]any{"lead": 0, "rep": 0, "profit": 5},
			map[string]any{"lead": 1, "rep": 1, "profit": 8},
		},
		"unassigned_leads": []any{2},
	})
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got, protocmp.Transform()))
}

func TestStruct_Error(t *testing.T) {
	r := New("demo", instance(), nil, errors.New("boom"))
	got, err := r.Struct()
	require.NoError(t, err)
	assert.Equal(t, "boom", got.GetFields()["error"].GetStringValue())
	assert.NotContains(t, got.GetFields(), "status")
}

func TestStruct_UnknownBound(t *testing.T) {
	res := result()
	res.BestBound = math.NaN()
	got, err := New("demo", instance(), res, nil).Struct()
	require.NoError(t, err)
	assert.NotContains(t, got.GetFields(), "best_bound")
}

func TestWriteJSON(t *testing.T) {
	r := New("demo", instance(), result(), nil)
	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))

	got := &structpb.Struct{}
	require.NoError(t, protojson.Unmarshal(buf.Bytes(), got))
	want, err := r.Struct()
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(want, got, protocmp.Transform()))

	b, err := r.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), r.RunID)
}
