// Package metrics exposes Prometheus counters for scoring and ingest runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"NewsLens/internal/domain"
)

const namespace = "newslens"

// Metrics owns a private registry so batch runs can dump it to a textfile
// without a long-lived HTTP endpoint. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	records            *prometheus.CounterVec
	classifierDuration prometheus.Histogram
	ingested           *prometheus.CounterVec
	lastRun            prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Records handled by the scoring pipeline, by outcome",
			},
			[]string{"status"},
		),
		classifierDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "classifier_duration_seconds",
				Help:      "Duration of framing classifier calls in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
			},
		),
		ingested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingested_articles_total",
				Help:      "Feed entries handled by ingest, by publisher and result",
			},
			[]string{"publisher", "result"},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time of the last completed run",
			},
		),
	}

	m.registry.MustRegister(m.records, m.classifierDuration, m.ingested, m.lastRun)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordOutcome counts one record by its final status.
func (m *Metrics) RecordOutcome(status domain.OutcomeStatus) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) ObserveClassifier(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.classifierDuration.Observe(elapsed.Seconds())
}

// RecordIngest counts one feed entry; result is inserted, duplicate or failed.
func (m *Metrics) RecordIngest(publisher, result string) {
	if m == nil {
		return
	}
	m.ingested.WithLabelValues(publisher, result).Inc()
}

func (m *Metrics) MarkRun(at time.Time) {
	if m == nil {
		return
	}
	m.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
