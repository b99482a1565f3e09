package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "remoteminer"
	// Subsystem for assignment engine metrics
	subsystem = "engine"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalRemoteCollector is set by SetGlobalRemoteCollector() when metrics are enabled
	globalRemoteCollector RemoteMetricsRecorder
)

// RemoteMetricsRecorder defines the interface for recording assignment engine events.
// Application code records through the package-level functions below.
type RemoteMetricsRecorder interface {
	RecordClaim(base string, outcome string)
	RecordRelease(base string)
	RecordEvaluation(mode string, outcome string)
	RecordNetIncome(base string, nodeID string, netIncome float64)
	ClearNetIncome(base string, nodeID string)
	RecordDrift(base string)
	RecordPlannerTick(evaluations int, deferred int)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalRemoteCollector sets the global assignment engine collector
func SetGlobalRemoteCollector(collector RemoteMetricsRecorder) {
	globalRemoteCollector = collector
}

// RecordClaim records a claim attempt globally
func RecordClaim(base string, outcome string) {
	if globalRemoteCollector != nil {
		globalRemoteCollector.RecordClaim(base, outcome)
	}
}

// RecordRelease records a release globally
func RecordRelease(base string) {
	if globalRemoteCollector != nil {
		globalRemoteCollector.RecordRelease(base)
	}
}

// RecordEvaluation records one economic evaluation globally
func RecordEvaluation(mode string, outcome string) {
	if globalRemoteCollector != nil {
		globalRemoteCollector.RecordEvaluation(mode, outcome)
	}
}

// RecordNetIncome sets the net income gauge of an active assignment
func RecordNetIncome(base string, nodeID string, netIncome float64) {
	if globalRemoteCollector != nil {
		globalRemoteCollector.RecordNetIncome(base, nodeID, netIncome)
	}
}

// ClearNetIncome drops the gauge of a released assignment
func ClearNetIncome(base string, nodeID string) {
	if globalRemoteCollector != nil {
		globalRemoteCollector.ClearNetIncome(base, nodeID)
	}
}

// RecordDrift records a reevaluation whose profile moved past the threshold
func RecordDrift(base string) {
	if globalRemoteCollector != nil {
		globalRemoteCollector.RecordDrift(base)
	}
}

// RecordPlannerTick records the work done by one planner tick
func RecordPlannerTick(evaluations int, deferred int) {
	if globalRemoteCollector != nil {
		globalRemoteCollector.RecordPlannerTick(evaluations, deferred)
	}
}
