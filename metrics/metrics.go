// Package metrics exposes batch rewrite counters for Prometheus. A batch run
// is short-lived, so metrics are written to a node_exporter textfile instead
// of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provides observability for lifecycle rewrite runs.
type Metrics struct {
	registry *prometheus.Registry

	// Documents processed by outcome (updated, unchanged, skipped, failed)
	Documents *prometheus.CounterVec

	// Status changes by target status
	Transitions *prometheus.CounterVec

	// Duration of the last run
	RunDuration prometheus.Gauge

	// Unix time the last run finished
	LastRun prometheus.Gauge
}

// New creates a Metrics instance on its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cipctl_documents_total",
			Help: "Documents processed by the lifecycle rewriter by outcome",
		}, []string{"outcome"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cipctl_status_transitions_total",
			Help: "Lifecycle status changes written, by new status",
		}, []string{"status"}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cipctl_run_duration_seconds",
			Help: "Duration of the last lifecycle rewrite run",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cipctl_last_run_timestamp_seconds",
			Help: "Unix time of the last completed lifecycle rewrite run",
		}),
	}
	m.registry.MustRegister(m.Documents, m.Transitions, m.RunDuration, m.LastRun)
	return m
}

// Registry returns the registry holding all metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// IncrementDocument records one document outcome.
func (m *Metrics) IncrementDocument(outcome string) {
	if m != nil {
		m.Documents.WithLabelValues(outcome).Inc()
	}
}

// IncrementTransition records a status change that was persisted.
func (m *Metrics) IncrementTransition(status string) {
	if m != nil {
		m.Transitions.WithLabelValues(status).Inc()
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(d time.Duration, finished time.Time) {
	if m != nil {
		m.RunDuration.Set(d.Seconds())
		m.LastRun.Set(float64(finished.Unix()))
	}
}

// WriteTextfile writes all metrics in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
