// Package prometheus exposes the service's operational metrics on a private
// registry, so tests and multiple instances never trip over duplicate
// registration in the global default registry.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every instrument the service records.
type Metrics struct {
	registry *prometheus.Registry

	translateRequests *prometheus.CounterVec
	translateDuration prometheus.Histogram
	remoteCalls       *prometheus.CounterVec
	pipelineWarnings  prometheus.Counter
	indexRecords      prometheus.Gauge
}

// NewMetrics builds and registers all instruments under namespace.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		translateRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translate_requests_total",
			Help:      "Translation requests by outcome status.",
		}, []string{"status"}),
		translateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "translate_duration_seconds",
			Help:      "End-to-end translation pipeline latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		}),
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Remote terminology API calls by target and outcome.",
		}, []string{"target", "outcome"}),
		pipelineWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_warnings_total",
			Help:      "Non-fatal degradations recorded during resolution.",
		}),
		indexRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_index_terms",
			Help:      "Legal-term records in the loaded snapshot index.",
		}),
	}

	registry.MustRegister(
		m.translateRequests,
		m.translateDuration,
		m.remoteCalls,
		m.pipelineWarnings,
		m.indexRecords,
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTranslate records one finished translation request.
func (m *Metrics) ObserveTranslate(status string, elapsed time.Duration) {
	m.translateRequests.WithLabelValues(status).Inc()
	m.translateDuration.Observe(elapsed.Seconds())
}

// RemoteCall records one remote API call outcome.
func (m *Metrics) RemoteCall(target, outcome string) {
	m.remoteCalls.WithLabelValues(target, outcome).Inc()
}

// Warning records one pipeline degradation.
func (m *Metrics) Warning() {
	m.pipelineWarnings.Inc()
}

// SetIndexRecords publishes the size of the active snapshot index.
func (m *Metrics) SetIndexRecords(n int) {
	m.indexRecords.Set(float64(n))
}
