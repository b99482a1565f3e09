package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
)

// Request outcomes. Failures are split by the engine's error taxonomy so a
// dashboard can tell a lost route from a broken database.
const (
	ResultOK           = "ok"
	ResultInvalid      = "invalid"
	ResultUnreachable  = "unreachable"
	ResultUnevaluable  = "unevaluable"
	ResultPersistence  = "persistence"
	ResultInconsistent = "inconsistent"
	ResultError        = "error"
)

// CommandMetricsCollector times every request dispatched through the mediator
type CommandMetricsCollector struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
}

// NewCommandMetricsCollector creates the request series
func NewCommandMetricsCollector() *CommandMetricsCollector {
	return &CommandMetricsCollector{
		// routing dominates, sqlite round trips sit at the low end
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of engine commands and queries",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 5},
			},
			[]string{"request", "kind"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Engine commands and queries by outcome",
			},
			[]string{"request", "kind", "result"},
		),
	}
}

// Register adds the request series to the global registry
func (c *CommandMetricsCollector) Register() error {
	if Registry == nil {
		return nil
	}
	for _, metric := range []prometheus.Collector{c.requestDuration, c.requestsTotal} {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}
	return nil
}

// RecordRequest records one dispatched request
func (c *CommandMetricsCollector) RecordRequest(name, kind string, seconds float64, err error) {
	c.requestDuration.WithLabelValues(name, kind).Observe(seconds)
	c.requestsTotal.WithLabelValues(name, kind, ResultOf(err)).Inc()
}

// ResultOf maps a request error onto a result label
func ResultOf(err error) string {
	var (
		validation   *shared.ValidationError
		unreachable  *shared.UnreachableError
		evaluation   *shared.EvaluationError
		persistence  *shared.PersistenceError
		inconsistent *shared.InconsistentRegistryError
	)
	switch {
	case err == nil:
		return ResultOK
	case errors.As(err, &inconsistent):
		return ResultInconsistent
	case errors.As(err, &persistence):
		return ResultPersistence
	case errors.As(err, &unreachable):
		return ResultUnreachable
	case errors.As(err, &evaluation):
		return ResultUnevaluable
	case errors.As(err, &validation):
		return ResultInvalid
	default:
		return ResultError
	}
}
