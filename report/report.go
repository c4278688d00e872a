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

// Package report renders the outcome of a solve as text lines or JSON.
package report

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/salesopt/leadassign/assignment"
	"github.com/samber/lo"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// NoSolutionMessage is the text line of a solve without assignment.
const NoSolutionMessage = "No solution found or time limit reached."

// Report is the outcome of one run.
type Report struct {
	RunID     string
	Name      string
	Leads     int
	Reps      int
	Result    *assignment.Result
	Err       error
	CreatedAt time.Time
}

// New returns the report of a run with a fresh run identifier. Exactly one of res and
// err is expected to be non-nil.
func New(name string, inst *assignment.Instance, res *assignment.Result, err error) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Name:      name,
		Leads:     inst.NumLeads(),
		Reps:      inst.NumReps(),
		Result:    res,
		Err:       err,
		CreatedAt: time.Now().UTC(),
	}
}

// Lines returns the text report: objective, status and one line per assigned pair in
// row-major order, or a single failure line.
func (r *Report) Lines() []string {
	if r.Result == nil {
		lines := []string{NoSolutionMessage}
		if r.Err != nil {
			lines = append(lines, "reason: "+r.Err.Error())
		}
		return lines
	}
	res := r.Result
	lines := []string{
		fmt.Sprintf("objective value: %d", res.Objective),
		fmt.Sprintf("status: %v", res.Status),
	}
	if !math.IsNaN(res.BestBound) && res.BestBound != float64(res.Objective) {
		lines = append(lines, fmt.Sprintf("best bound: %g", res.BestBound))
	}
	lines = append(lines, lo.Map(res.Pairs, func(p assignment.Pair, _ int) string { return p.String() })...)
	if unassigned := res.UnassignedLeads(); len(unassigned) > 0 {
		lines = append(lines, fmt.Sprintf("unassigned leads: %v", unassigned))
	}
	return lines
}

// WriteText writes Lines, one per line.
func (r *Report) WriteText(w io.Writer) error {
	for _, l := range r.Lines() {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// Struct returns the report as a structpb.Struct.
func (r *Report) Struct() (*structpb.Struct, error) {
	m := map[string]any{
		"run_id":     r.RunID,
		"name":       r.Name,
		"leads":      r.Leads,
		"reps":       r.Reps,
		"created_at": r.CreatedAt.Format(time.RFC3339),
	}
	if r.Err != nil {
		m["error"] = r.Err.Error()
	}
	if res := r.Result; res != nil {
		m["status"] = res.Status.String()
		m["objective"] = res.Objective
		if !math.IsNaN(res.BestBound) {
			m["best_bound"] = res.BestBound
		}
		m["wall_time_seconds"] = res.WallTime.Seconds()
		m["backend"] = res.Backend
		m["pairs"] = lo.Map(res.Pairs, func(p assignment.Pair, _ int) any {
			return map[string]any{"lead": p.Lead, "rep": p.Rep, "profit": p.Profit}
		})
		m["unassigned_leads"] = lo.Map(res.UnassignedLeads(), func(i int, _ int) any { return i })
	}
	return structpb.NewStruct(m)
}

// MarshalJSON implements json.Marshaler with the protojson encoding of Struct.
func (r *Report) MarshalJSON() ([]byte, error) {
	s, err := r.Struct()
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(s)
}

// WriteJSON writes the indented JSON report.
func (r *Report) WriteJSON(w io.Writer) error {
	s, err := r.Struct()
	if err != nil {
		return err
	}
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
