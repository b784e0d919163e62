// Package metrics exposes Prometheus instrumentation for the dashboard.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "weather_dashboard"

// Metrics groups the collectors used across the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	providerFetches    *prometheus.CounterVec
	readingsStored     *prometheus.CounterVec
	volatilityScore    *prometheus.GaugeVec
	volatilityComputes prometheus.Counter
	rangeQueries       *prometheus.CounterVec
}

// New builds a Metrics instance on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		providerFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_fetches_total",
			Help:      "Provider fetch attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		readingsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_stored_total",
			Help:      "Readings persisted, by source.",
		}, []string{"source"}),
		volatilityScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "volatility_score",
			Help:      "Most recently computed volatility score by scope.",
		}, []string{"scope"}),
		volatilityComputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "volatility_computations_total",
			Help:      "Number of volatility scores computed.",
		}),
		rangeQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "range_queries_total",
			Help:      "Reading queries by range mode (preset name or custom).",
		}, []string{"mode"}),
	}

	reg.MustRegister(
		m.providerFetches,
		m.readingsStored,
		m.volatilityScore,
		m.volatilityComputes,
		m.rangeQueries,
	)
	return m
}

// Registry returns the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ProviderFetch records one provider call.
func (m *Metrics) ProviderFetch(provider string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.providerFetches.WithLabelValues(provider, outcome).Inc()
}

// ReadingStored records a persisted reading. source is "api" or "provider".
func (m *Metrics) ReadingStored(source string) {
	if m == nil {
		return
	}
	m.readingsStored.WithLabelValues(source).Inc()
}

// VolatilityComputed records a computed score for scope ("all" or a location id).
func (m *Metrics) VolatilityComputed(scope string, score float64) {
	if m == nil {
		return
	}
	m.volatilityComputes.Inc()
	m.volatilityScore.WithLabelValues(scope).Set(score)
}

// ForgetScope drops the volatility gauge for scope, so deleted locations do
// not linger as label values.
func (m *Metrics) ForgetScope(scope string) {
	if m == nil {
		return
	}
	m.volatilityScore.DeleteLabelValues(scope)
}

// RangeQuery records a query issued with the given range mode.
func (m *Metrics) RangeQuery(mode string) {
	if m == nil {
		return
	}
	m.rangeQueries.WithLabelValues(mode).Inc()
}
