package httpapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arbitrage-finder/internal/dataset"
)

// Metrics groups the collectors exposed on /metrics.
type Metrics struct {
	registry     *prometheus.Registry
	analyses     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	snapshotRows *prometheus.GaugeVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbfinder_analyses_total",
				Help: "Number of analyses served, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arbfinder_analysis_duration_seconds",
				Help:    "Analysis latency",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"kind"},
		),
		snapshotRows: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "arbfinder_snapshot_rows",
				Help: "Rows in the currently served dataset, by table",
			},
			[]string{"table"},
		),
	}

	m.registry.MustRegister(
		m.analyses,
		m.duration,
		m.snapshotRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAnalysis records one analysis outcome.
func (m *Metrics) ObserveAnalysis(kind, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(took.Seconds())
}

// ObserveSnapshot updates the row gauges after a reload.
func (m *Metrics) ObserveSnapshot(ds *dataset.Dataset) {
	if m == nil || ds == nil {
		return
	}
	for table, n := range ds.Rows() {
		m.snapshotRows.WithLabelValues(table).Set(float64(n))
	}
}
