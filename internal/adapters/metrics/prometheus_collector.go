package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "kanban"
	// Subsystem for simulation metrics
	subsystem = "simulation"
)

var (
	// Registry is the global Prometheus registry for all metrics.
	// It stays nil while metrics are disabled.
	Registry *prometheus.Registry

	// globalCollector is set by SetGlobalCollector() when metrics are enabled
	globalCollector SimulationRecorder
)

// SimulationRecorder defines the events application code reports
type SimulationRecorder interface {
	RecordAllocation(workerType, outcome string)
	RecordUnit(workerType string, buildTime time.Duration)
	RecordReplenishment(interval time.Duration)
	RecordStoreRetry(op string)
	RecordProcessFinished(kind, status string, runtime time.Duration)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at process startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalCollector sets the global metrics collector
func SetGlobalCollector(collector SimulationRecorder) {
	globalCollector = collector
}

// RecordAllocation records the outcome of one allocation attempt
func RecordAllocation(workerType, outcome string) {
	if globalCollector != nil {
		globalCollector.RecordAllocation(workerType, outcome)
	}
}

// RecordUnit records one reported production unit
func RecordUnit(workerType string, buildTime time.Duration) {
	if globalCollector != nil {
		globalCollector.RecordUnit(workerType, buildTime)
	}
}

// RecordReplenishment records one applied replenishment tick
func RecordReplenishment(interval time.Duration) {
	if globalCollector != nil {
		globalCollector.RecordReplenishment(interval)
	}
}

// RecordStoreRetry records a retried store call
func RecordStoreRetry(op string) {
	if globalCollector != nil {
		globalCollector.RecordStoreRetry(op)
	}
}

// RecordProcessFinished records a process reaching a terminal state
func RecordProcessFinished(kind, status string, runtime time.Duration) {
	if globalCollector != nil {
		globalCollector.RecordProcessFinished(kind, status, runtime)
	}
}
