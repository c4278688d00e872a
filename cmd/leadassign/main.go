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

// The leadassign command generates or loads an assignment instance, solves it and
// reports the assignment.
//
// Usage:
//
//	leadassign -preset=simple -mode=BOTH -format=json
//	leadassign -config=run.yaml -instance=instance.yaml -export_lp=model.lp
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"

	log "github.com/golang/glog"
	"github.com/salesopt/leadassign/assignment"
	"github.com/salesopt/leadassign/config"
	"github.com/salesopt/leadassign/datagen"
	"github.com/salesopt/leadassign/linearsolver"
	"github.com/salesopt/leadassign/metrics"
	"github.com/salesopt/leadassign/report"
)

func instance(c *config.Config) (*assignment.Instance, error) {
	if c.Instance != "" {
		return config.LoadInstance(c.Instance)
	}
	g, err := c.Generator()
	if err != nil {
		return nil, err
	}
	return datagen.Generate(datagen.NewRand(c.Seed), g)
}

func exportLP(path string, f *assignment.Formulation) error {
	m, err := f.Model()
	if err != nil {
		return err
	}
	lp, err := linearsolver.ExportModelAsLpFormat(m, linearsolver.ExportOptions{MaxLineLength: 255})
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(lp), 0o644)
}

func run(ctx context.Context, c *config.Config, out io.Writer) error {
	inst, err := instance(c)
	if err != nil {
		return fmt.Errorf("failed to get the instance: %w", err)
	}
	datagen.LogInstance(inst)
	if c.DumpInstance != "" {
		if err := config.WriteInstance(c.DumpInstance, inst); err != nil {
			return fmt.Errorf("failed to write the instance: %w", err)
		}
	}

	opts, err := c.Options()
	if err != nil {
		return err
	}
	metrics.ResetRunGauges()
	s := assignment.NewSession(inst, opts)
	if err := s.Build(); err != nil {
		metrics.RecordError(err)
		return fmt.Errorf("failed to build the model: %w", err)
	}
	metrics.RecordStats(s.Formulation().Stats)
	if c.ExportLP != "" {
		if err := exportLP(c.ExportLP, s.Formulation()); err != nil {
			return fmt.Errorf("failed to export the model: %w", err)
		}
	}

	res, solveErr := s.Solve(ctx)
	if solveErr != nil {
		metrics.RecordError(solveErr)
		if !errors.Is(solveErr, assignment.ErrNoAssignment) {
			return fmt.Errorf("failed to solve the model: %w", solveErr)
		}
		log.Errorf("No solution found or time limit reached: %v", solveErr)
	} else {
		metrics.RecordResult(res)
		if err := res.Verify(inst, opts); err != nil {
			return err
		}
	}

	r := report.New(c.Name, inst, res, solveErr)
	if c.Format == "json" {
		err = r.WriteJSON(out)
	} else {
		err = r.WriteText(out)
	}
	if err != nil {
		return err
	}
	return solveErr
}

func main() {
	c, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Exitf("invalid configuration: %v", err)
	}

	if c.MetricsAddr != "" {
		go func() {
			http.Handle("/metrics", metrics.Handler())
			log.Infof("serving metrics on %s", c.MetricsAddr)
			if err := http.ListenAndServe(c.MetricsAddr, nil); err != nil {
				log.Errorf("metrics server failed: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = run(ctx, c, os.Stdout)
	stop()

	if c.PushURL != "" {
		if perr := metrics.Push(c.PushURL, c.Name); perr != nil {
			log.Errorf("failed to push metrics: %v", perr)
		}
	}
	switch {
	case errors.Is(err, assignment.ErrNoAssignment):
		log.Flush()
		os.Exit(1)
	case err != nil:
		log.Exitf("leadassign returned with error: %v", err)
	}
}
