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

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/salesopt/leadassign/assignment"
	"github.com/salesopt/leadassign/config"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/structpb"
)

func parseReport(t *testing.T, b []byte) *structpb.Struct {
	t.Helper()
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		t.Fatalf("protojson.Unmarshal() returned with unexpected error %v", err)
	}
	return s
}

func testConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	c := config.Default()
	c.Preset = "simple"
	mutate(c)
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() returned with unexpected error %v", err)
	}
	return c
}

func TestRun_Text(t *testing.T) {
	c := testConfig(t, func(c *config.Config) { c.Mode = "BOTH" })
	var out bytes.Buffer
	if err := run(context.Background(), c, &out); err != nil {
		t.Fatalf("run() returned with unexpected error %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if got, want := lines[1], "status: OPTIMAL"; got != want {
		t.Errorf("line 2 = %q, want %q", got, want)
	}
	if got, want := strings.Count(out.String(), "is assigned to Rep"), 5; got != want {
		t.Errorf("run() reported %d pairs, want %d", got, want)
	}
}

func TestRun_FilesAndJSON(t *testing.T) {
	dir := t.TempDir()
	dump := filepath.Join(dir, "instance.yaml")
	lp := filepath.Join(dir, "model.lp")
	c := testConfig(t, func(c *config.Config) {
		c.DumpInstance = dump
		c.ExportLP = lp
		c.Format = "json"
	})
	var out bytes.Buffer
	if err := run(context.Background(), c, &out); err != nil {
		t.Fatalf("run() returned with unexpected error %v", err)
	}
	got := parseReport(t, out.Bytes())
	if status := got.GetFields()["status"].GetStringValue(); status != "OPTIMAL" {
		t.Errorf("run() reported status %q, want OPTIMAL", status)
	}

	b, err := os.ReadFile(lp)
	if err != nil {
		t.Fatalf("ReadFile(%s) returned with unexpected error %v", lp, err)
	}
	if !strings.HasPrefix(string(b), "\\ Generated by leadassign linearsolver") {
		t.Errorf("LP file starts with %q", string(b[:40]))
	}

	// Solving the dumped instance gives the same pairs.
	c2 := testConfig(t, func(c *config.Config) {
		c.Instance = dump
		c.Format = "json"
	})
	var out2 bytes.Buffer
	if err := run(context.Background(), c2, &out2); err != nil {
		t.Fatalf("run() returned with unexpected error %v", err)
	}
	loaded := parseReport(t, out2.Bytes())
	if diff := cmp.Diff(got.GetFields()["pairs"], loaded.GetFields()["pairs"], protocmp.Transform()); diff != "" {
		t.Errorf("pairs of the dumped instance have unexpected diff (-generated+loaded):\n%s", diff)
	}
}

func TestRun_NoAssignment(t *testing.T) {
	c := testConfig(t, func(c *config.Config) {
		c.Mode = "BOTH"
		c.Leads = 8
	})
	var out bytes.Buffer
	err := run(context.Background(), c, &out)
	var infeasible *assignment.InfeasibleModelError
	if !errors.As(err, &infeasible) {
		t.Fatalf("run() returned %v, want an *InfeasibleModelError", err)
	}
	if !strings.HasPrefix(out.String(), "No solution found or time limit reached.") {
		t.Errorf("run() output = %q", out.String())
	}
}
