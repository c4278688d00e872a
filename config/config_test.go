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

package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/salesopt/leadassign/assignment"
	"github.com/salesopt/leadassign/cpmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(newFlagSet(), nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	opts, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, assignment.ExactlyOnePerLead, opts.Mode)
	assert.Equal(t, assignment.PerPairCapacity, opts.Capacity)
	assert.Equal(t, assignment.OmitIncompatible, opts.Compatibility)
	assert.Equal(t, cpmodel.DefaultMaxTime, opts.Solver.MaxTime)
	assert.Equal(t, cpmodel.DefaultBackend, opts.Solver.Backend)
}

func TestLoad_Flags(t *testing.T) {
	c, err := Load(newFlagSet(), []string{"-mode=both", "-timeout=90s", "-preset=simple", "-leads=4", "-format=json", "-no_precheck"})
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, c.Timeout)
	assert.Equal(t, "json", c.Format)

	opts, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, assignment.Both, opts.Mode)
	assert.True(t, opts.DisablePrecheck)

	g, err := c.Generator()
	require.NoError(t, err)
	assert.Equal(t, 4, g.Leads)
	assert.Equal(t, 7, g.Reps)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "run.yaml", `
name: nightly
preset: time_slots
seed: 7
mode: AT_MOST_ONE_PER_REP
capacity: AGGREGATE
timeout: 2m
backend: greedy
relaxation_bound: true
`)
	c, err := Load(newFlagSet(), []string{"-config=" + path, "-seed=9"})
	require.NoError(t, err)
	assert.Equal(t, "nightly", c.Name)
	assert.Equal(t, "time_slots", c.Preset)
	assert.Equal(t, uint64(9), c.Seed, "flags override the file")
	assert.Equal(t, 2*time.Minute, c.Timeout)
	assert.Equal(t, "greedy", c.Backend)
	assert.True(t, c.RelaxationBound)

	opts, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, assignment.AtMostOnePerRep, opts.Mode)
	assert.Equal(t, assignment.AggregateCapacity, opts.Capacity)
	assert.True(t, opts.Solver.ComputeRelaxationBound)
}

func TestLoad_Errors(t *testing.T) {
	tests := map[string]struct {
		file string
		args []string
	}{
		"unknown key":      {file: "colour: blue\n"},
		"bad duration":     {file: "timeout: soon\n"},
		"bad yaml":         {file: "mode: [\n"},
		"unknown mode":     {args: []string{"-mode=ALL"}},
		"unknown preset":   {args: []string{"-preset=huge"}},
		"unknown format":   {args: []string{"-format=xml"}},
		"negative timeout": {args: []string{"-timeout=-1s"}},
		"negative leads":   {args: []string{"-leads=-3"}},
		"unknown flag":     {args: []string{"-verbose_solver"}},
		"missing file":     {args: []string{"-config=/nonexistent/run.yaml"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			args := tt.args
			if tt.file != "" {
				args = append(args, "-config="+writeFile(t, "run.yaml", tt.file))
			}
			fs := newFlagSet()
			fs.SetOutput(&discard{})
			_, err := Load(fs, args)
			assert.Error(t, err)
		})
	}
}

type discard struct{}

func (*discard) Write(p []byte) (int, error) { return len(p), nil }

func TestGenerator_Slots(t *testing.T) {
	c := Default()
	c.Preset = "simple"
	c.Slots = 3
	g, err := c.Generator()
	require.NoError(t, err)
	assert.Equal(t, 3, g.Slots)
	assert.Equal(t, 0.7, g.SlotAvailability)
	assert.NoError(t, g.Validate())
}

func TestInstanceFiles(t *testing.T) {
	inst := &assignment.Instance{
		Profit:   [][]int64{{5, 1}, {2, 8}},
		Demand:   [][]int64{{3, 3}, {3, 3}},
		Capacity: []int64{4, 5},
	}
	path := filepath.Join(t.TempDir(), "instance.yaml")
	require.NoError(t, WriteInstance(path, inst))
	got, err := LoadInstance(path)
	require.NoError(t, err)
	assert.Equal(t, inst, got)
}

func TestLoadInstance_JSON(t *testing.T) {
	path := writeFile(t, "instance.json", `{"profit": [[5, 1], [2, 8]], "availability": [[1, 0], [1, 1]]}`)
	got, err := LoadInstance(path)
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{1, 0}, {1, 1}}, got.Availability)
}

func TestLoadInstance_Invalid(t *testing.T) {
	path := writeFile(t, "instance.yaml", "profit: [[1, 2], [3]]\n")
	_, err := LoadInstance(path)
	var mismatch *assignment.DimensionMismatchError
	assert.True(t, errors.As(err, &mismatch), "got %v", err)
}
