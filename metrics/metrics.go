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

// Package metrics provides Prometheus metrics of assignment solves.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/salesopt/leadassign/assignment"
)

// Registry is the registry of every metric of this package.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// =============================================================================
// Solve outcome
// =============================================================================

// SolvesTotal counts finished solves by status and backend.
var SolvesTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "leadassign",
	Name:      "solves_total",
	Help:      "Finished solves by solver status and backend",
}, []string{"status", "backend"})

// SolveErrorsTotal counts solves that produced no assignment, by error type.
var SolveErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "leadassign",
	Name:      "solve_errors_total",
	Help:      "Solves without assignment by error type",
}, []string{"error_type"})

// SolveDurationSeconds tracks the wall time of the solver.
var SolveDurationSeconds = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "leadassign",
	Name:      "solve_duration_seconds",
	Help:      "Wall time of the solver",
	Buckets:   []float64{0.001, 0.01, 0.1, 1, 10, 60, 300, 1800, 5000},
})

// ObjectiveValue is the objective of the last assignment.
var ObjectiveValue = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "leadassign",
	Name:      "objective_value",
	Help:      "Total profit of the last assignment",
})

// ObjectiveBound is the best proven bound of the last assignment, NaN when unknown.
var ObjectiveBound = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "leadassign",
	Name:      "objective_bound",
	Help:      "Best proven bound on the total profit of the last assignment",
})

// AssignedLeads is the number of leads with a rep in the last assignment.
var AssignedLeads = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "leadassign",
	Name:      "assigned_leads",
	Help:      "Leads with a rep in the last assignment",
})

// UnassignedLeads is the number of leads without rep in the last assignment.
var UnassignedLeads = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "leadassign",
	Name:      "unassigned_leads",
	Help:      "Leads without rep in the last assignment",
})

// =============================================================================
// Model size
// =============================================================================

// ModelVariables is the number of decision variables of the last model.
var ModelVariables = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "leadassign",
	Name:      "model_variables",
	Help:      "Decision variables of the last model",
})

// ModelConstraints is the number of constraints of the last model by family.
var ModelConstraints = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "leadassign",
	Name:      "model_constraints",
	Help:      "Constraints of the last model by family",
}, []string{"family"})

// =============================================================================
// Helper Functions
// =============================================================================

// ResetRunGauges resets the gauges describing the last run.
func ResetRunGauges() {
	ObjectiveValue.Set(0)
	ObjectiveBound.Set(0)
	AssignedLeads.Set(0)
	UnassignedLeads.Set(0)
	ModelVariables.Set(0)
	ModelConstraints.Reset()
}

// RecordStats sets the model size gauges.
func RecordStats(s assignment.Stats) {
	ModelVariables.Set(float64(s.Variables))
	ModelConstraints.WithLabelValues("row").Set(float64(s.RowConstraints))
	ModelConstraints.WithLabelValues("column").Set(float64(s.ColumnConstraints))
	ModelConstraints.WithLabelValues("compatibility").Set(float64(s.CompatibilityConstraints))
	ModelConstraints.WithLabelValues("capacity").Set(float64(s.CapacityConstraints))
}

// RecordResult records a solve that produced an assignment.
func RecordResult(res *assignment.Result) {
	SolvesTotal.WithLabelValues(res.Status.String(), res.Backend).Inc()
	SolveDurationSeconds.Observe(res.WallTime.Seconds())
	ObjectiveValue.Set(float64(res.Objective))
	ObjectiveBound.Set(res.BestBound)
	AssignedLeads.Set(float64(res.AssignedLeads()))
	UnassignedLeads.Set(float64(res.Leads - res.AssignedLeads()))
	RecordStats(res.Stats)
}

// RecordError records a solve that failed.
func RecordError(err error) {
	SolveErrorsTotal.WithLabelValues(ErrorType(err)).Inc()
}

// ErrorType classifies a solve error for the error_type label.
func ErrorType(err error) string {
	var (
		mismatch   *assignment.DimensionMismatchError
		infeasible *assignment.InfeasibleModelError
		timeout    *assignment.TimeoutWithoutSolutionError
		noSolution *assignment.NoSolutionError
	)
	switch {
	case errors.As(err, &mismatch):
		return "dimension_mismatch"
	case errors.Is(err, assignment.ErrInvalidValue):
		return "invalid_value"
	case errors.As(err, &infeasible):
		return "infeasible"
	case errors.As(err, &timeout):
		return "timeout"
	case errors.As(err, &noSolution):
		return "no_solution"
	}
	return "other"
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Push pushes Registry to a Pushgateway under the given job name.
func Push(url, job string) error {
	return push.New(url, job).Gatherer(Registry).Push()
}
