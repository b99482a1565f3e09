package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Claim outcomes
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// RemoteMetricsCollector handles assignment engine metrics
type RemoteMetricsCollector struct {
	claimsTotal      *prometheus.CounterVec
	releasesTotal    *prometheus.CounterVec
	evaluationsTotal *prometheus.CounterVec
	netIncome        *prometheus.GaugeVec
	driftTotal       *prometheus.CounterVec

	plannerEvaluations prometheus.Histogram
	plannerDeferred    prometheus.Gauge
}

var _ RemoteMetricsRecorder = (*RemoteMetricsCollector)(nil)

// NewRemoteMetricsCollector creates a new assignment engine metrics collector
func NewRemoteMetricsCollector() *RemoteMetricsCollector {
	return &RemoteMetricsCollector{
		claimsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "claims_total",
				Help:      "Total number of claim attempts by base and outcome",
			},
			[]string{"base", "outcome"},
		),

		releasesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "releases_total",
				Help:      "Total number of released assignments by base",
			},
			[]string{"base"},
		),

		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of economic evaluations by route mode and outcome",
			},
			[]string{"mode", "outcome"},
		),

		netIncome: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "assignment_net_income",
				Help:      "Net income per regeneration period of each active assignment",
			},
			[]string{"base", "node"},
		),

		driftTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "profile_drift_total",
				Help:      "Total number of reevaluations that drifted past the threshold",
			},
			[]string{"base"},
		),

		plannerEvaluations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "planner_tick_evaluations",
				Help:      "Jobs processed per planner tick",
				Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
		),

		plannerDeferred: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "planner_deferred_jobs",
				Help:      "Jobs carried over to the next tick by the evaluation budget",
			},
		),
	}
}

// Register registers all assignment engine metrics with the Prometheus registry
func (c *RemoteMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		c.claimsTotal,
		c.releasesTotal,
		c.evaluationsTotal,
		c.netIncome,
		c.driftTotal,
		c.plannerEvaluations,
		c.plannerDeferred,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

func (c *RemoteMetricsCollector) RecordClaim(base string, outcome string) {
	c.claimsTotal.WithLabelValues(base, outcome).Inc()
}

func (c *RemoteMetricsCollector) RecordRelease(base string) {
	c.releasesTotal.WithLabelValues(base).Inc()
}

func (c *RemoteMetricsCollector) RecordEvaluation(mode string, outcome string) {
	c.evaluationsTotal.WithLabelValues(mode, outcome).Inc()
}

func (c *RemoteMetricsCollector) RecordNetIncome(base string, nodeID string, netIncome float64) {
	c.netIncome.WithLabelValues(base, nodeID).Set(netIncome)
}

func (c *RemoteMetricsCollector) ClearNetIncome(base string, nodeID string) {
	c.netIncome.DeleteLabelValues(base, nodeID)
}

func (c *RemoteMetricsCollector) RecordDrift(base string) {
	c.driftTotal.WithLabelValues(base).Inc()
}

func (c *RemoteMetricsCollector) RecordPlannerTick(evaluations int, deferred int) {
	c.plannerEvaluations.Observe(float64(evaluations))
	c.plannerDeferred.Set(float64(deferred))
}
