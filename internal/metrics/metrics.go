// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paiban_http_requests_total",
		Help: "Total HTTP requests served, by method, path and status.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paiban_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"method", "path"})

	solveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paiban_solve_total",
		Help: "Total solve requests completed, by outcome status.",
	}, []string{"status"})

	solveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paiban_solve_duration_seconds",
		Help:    "Solve wall-clock time in seconds, by outcome status.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 15.0, 30.0},
	}, []string{"status"})

	activeSolves = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "paiban_active_solves",
		Help: "Number of solve requests currently in flight.",
	})

	solveObjective = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "paiban_solve_objective_last",
		Help: "Objective value of the most recently completed feasible solve.",
	})

	constraintEvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paiban_constraint_evaluations_total",
		Help: "Constraint clauses evaluated while building a model, by kind and match outcome.",
	}, []string{"constraint_type", "result"})

	dbConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "paiban_db_connections",
		Help: "Snapshot store connection pool gauge, by state.",
	}, []string{"state"})

	infeasibilityReasonsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paiban_infeasibility_reasons_total",
		Help: "Infeasibility reasons surfaced to callers, by reason code.",
	}, []string{"code"})
)

// Handler returns the HTTP handler serving Prometheus text exposition.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records one finished HTTP request.
func RecordRequest(method, path string, status int, duration time.Duration) {
	statusLabel := http.StatusText(status)
	if statusLabel == "" {
		statusLabel = "unknown"
	}
	httpRequestsTotal.WithLabelValues(method, path, statusLabel).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSolveStart marks one solve beginning; the returned func records
// its completion with the given outcome status.
func RecordSolveStart() func(status string) {
	activeSolves.Inc()
	start := time.Now()
	return func(status string) {
		activeSolves.Dec()
		solveTotal.WithLabelValues(status).Inc()
		solveDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}
}

// SetSolveObjective records the objective value of the latest feasible solve.
func SetSolveObjective(value float64) {
	solveObjective.Set(value)
}

// RecordConstraintEvaluation records whether a constraint filter matched
// at least one employee or shift while building a model.
func RecordConstraintEvaluation(constraintType string, matched bool) {
	result := "matched"
	if !matched {
		result = "unmatched"
	}
	constraintEvaluationsTotal.WithLabelValues(constraintType, result).Inc()
}

// SetDBConnections records the snapshot store's pool occupancy.
func SetDBConnections(state string, count float64) {
	dbConnections.WithLabelValues(state).Set(count)
}

// RecordInfeasibilityReason records one infeasibility reason surfaced to
// a caller, keyed by its reason code.
func RecordInfeasibilityReason(code string) {
	infeasibilityReasonsTotal.WithLabelValues(code).Inc()
}
