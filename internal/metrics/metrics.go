// Package metrics holds the router's Prometheus collectors. The CLI is short
// lived, so metrics are written to a node_exporter textfile instead of served.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config selects the textfile export target; empty disables the export
type Config struct {
	TextfilePath string `envconfig:"METRICS_FILE" yaml:"textfile_path"`
}

// Metrics contains the routing metrics
type Metrics struct {
	Dispatches       *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	Classifications  *prometheus.CounterVec
	Visualizations   *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers the routing metrics on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		Dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "graph_router",
				Subsystem: "dispatch",
				Name:      "total",
				Help:      "Total number of dispatched operations",
			},
			[]string{"category", "status"},
		),

		DispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "graph_router",
				Subsystem: "dispatch",
				Name:      "duration_seconds",
				Help:      "Dispatch duration in seconds, visualization included",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"category"},
		),

		Classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "graph_router",
				Subsystem: "classifier",
				Name:      "total",
				Help:      "Total number of classified queries",
			},
			[]string{"category"},
		),

		Visualizations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "graph_router",
				Subsystem: "visualizer",
				Name:      "total",
				Help:      "Total number of visualization outcomes",
			},
			[]string{"message"},
		),

		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(m.Dispatches, m.DispatchDuration, m.Classifications, m.Visualizations)
	return m
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordDispatch counts one dispatch and observes its duration
func (m *Metrics) RecordDispatch(category string, ok bool, duration time.Duration) {
	status := "ok"
	if !ok {
		status = "error"
	}
	m.Dispatches.WithLabelValues(category, status).Inc()
	m.DispatchDuration.WithLabelValues(category).Observe(duration.Seconds())
}

// RecordClassification counts one classifier outcome; failures use "error"
func (m *Metrics) RecordClassification(category string) {
	m.Classifications.WithLabelValues(category).Inc()
}

// RecordVisualization counts one visualizer outcome
func (m *Metrics) RecordVisualization(message string) {
	m.Visualizations.WithLabelValues(message).Inc()
}

// WriteTextfile writes the registry in text exposition format to path
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
