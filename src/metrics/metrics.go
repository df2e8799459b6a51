// Package metrics counts gate checks for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "contentgate"

// Metrics holds the gate collectors on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry
	checks   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go
// runtime collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Gate checks by check name and verdict.",
		}, []string{"check", "verdict"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Gate check latency.",
			Buckets:   []float64{.00005, .0001, .0005, .001, .005, .01, .05},
		}, []string{"check"}),
	}

	m.registry.MustRegister(
		m.checks,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCheck records one check outcome.
func (m *Metrics) ObserveCheck(check, verdict string, d time.Duration) {
	if m == nil {
		return
	}
	m.checks.WithLabelValues(check, verdict).Inc()
	m.duration.WithLabelValues(check).Observe(d.Seconds())
}

// Count returns the current counter value for check and verdict.
func (m *Metrics) Count(check, verdict string) float64 {
	if m == nil {
		return 0
	}
	c, err := m.checks.GetMetricWithLabelValues(check, verdict)
	if err != nil {
		return 0
	}
	return counterValue(c)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
