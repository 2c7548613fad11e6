package observe

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports pipeline events as Prometheus metrics on its own registry.
type Metrics struct {
	reg         *prometheus.Registry
	stages      *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	lastSuccess prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{reg: prometheus.NewRegistry()}
	m.stages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "digest",
		Name:      "stage_total",
		Help:      "Pipeline stage completions by outcome",
	}, []string{"stage", "outcome"})
	m.durations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "digest",
		Name:      "stage_duration_seconds",
		Help:      "Time spent in each pipeline stage",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"stage"})
	m.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "digest",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last run that completed without a fatal error",
	})
	m.reg.MustRegister(m.stages, m.durations, m.lastSuccess)
	return m
}

func (m *Metrics) Observe(_ context.Context, e Event) {
	m.stages.WithLabelValues(string(e.Stage), string(e.Outcome)).Inc()
	m.durations.WithLabelValues(string(e.Stage)).Observe(e.Duration.Seconds())
	if e.Stage == StageRun && e.Outcome == OK {
		m.lastSuccess.Set(float64(e.At.Unix()))
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
