// Package metrics exposes the Prometheus collectors for the dex service.
//
// Collectors are registered on an explicit registry so tests and multiple
// binaries in one process never collide on the default registerer. Every
// recording method is safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rowedex"

// Metrics groups the dex collectors.
type Metrics struct {
	registry *prometheus.Registry

	// resolutions counts entity resolutions.
	// Labels: result (found, not_found, sentinel, error)
	resolutions *prometheus.CounterVec

	// routes counts routed control activations by final state.
	// Labels: view (levelup, typeeffectiveness, ..., unknown), state (responded, routing_failed)
	routes *prometheus.CounterVec

	// interactions counts inbound transport events.
	// Labels: kind (command, autocomplete, component, other), outcome (ok, error)
	interactions *prometheus.CounterVec

	// storeQuery measures store query latency.
	// Labels: query
	storeQuery *prometheus.HistogramVec
}

// New registers the dex collectors plus Go runtime and process collectors on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dex",
			Name:      "resolutions_total",
			Help:      "Entity resolutions by result",
		}, []string{"result"}),
		routes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dex",
			Name:      "routes_total",
			Help:      "Control activations by view and final routing state",
		}, []string{"view", "state"}),
		interactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dex",
			Name:      "interactions_total",
			Help:      "Inbound interactions by kind and outcome",
		}, []string{"kind", "outcome"}),
		storeQuery: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dex",
			Name:      "store_query_seconds",
			Help:      "Store query latency by query name",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"query"}),
	}
}

// Registry returns the underlying registry.
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
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveResolution records one resolver outcome.
func (m *Metrics) ObserveResolution(result string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(result).Inc()
}

// ObserveRoute records the final state of one routed activation.
func (m *Metrics) ObserveRoute(view, state string) {
	if m == nil {
		return
	}
	if view == "" {
		view = "unknown"
	}
	m.routes.WithLabelValues(view, state).Inc()
}

// ObserveInteraction records one inbound transport event.
func (m *Metrics) ObserveInteraction(kind, outcome string) {
	if m == nil {
		return
	}
	m.interactions.WithLabelValues(kind, outcome).Inc()
}

// ObserveStoreQuery records the latency of one store query.
func (m *Metrics) ObserveStoreQuery(query string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.storeQuery.WithLabelValues(query).Observe(elapsed.Seconds())
}
