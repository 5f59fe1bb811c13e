// Package metrics exposes Prometheus collectors for route matches, misses
// and notification outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricNamespace = "canaryd"

// Notification results used as the "result" label.
const (
	ResultSent   = "sent"
	ResultFailed = "failed"
)

// Metrics holds the collectors for one server instance. Each instance owns
// its registry so several servers (and tests) do not collide.
type Metrics struct {
	registry *prometheus.Registry

	RouteMatches     *prometheus.CounterVec
	RouteMisses      prometheus.Counter
	Notifications    *prometheus.CounterVec
	RoutesConfigured prometheus.Gauge
}

// New creates and registers the collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RouteMatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Subsystem: "route",
				Name:      "matches_total",
				Help:      "Count of requests that matched a configured route, by path.",
			},
			[]string{"path"},
		),
		RouteMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Subsystem: "route",
				Name:      "misses_total",
				Help:      "Count of requests that matched no configured route.",
			},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricNamespace,
				Name:      "notifications_total",
				Help:      "Count of notification attempts, by result.",
			},
			[]string{"result"},
		),
		RoutesConfigured: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricNamespace,
				Name:      "routes_configured",
				Help:      "Number of routes in the route table.",
			},
		),
	}

	m.registry.MustRegister(
		m.RouteMatches,
		m.RouteMisses,
		m.Notifications,
		m.RoutesConfigured,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing these collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveMatch records a request that matched path.
func (m *Metrics) ObserveMatch(path string) {
	if m == nil {
		return
	}
	m.RouteMatches.WithLabelValues(path).Inc()
}

// ObserveMiss records a request that matched nothing.
func (m *Metrics) ObserveMiss() {
	if m == nil {
		return
	}
	m.RouteMisses.Inc()
}

// ObserveNotification records a notification attempt.
func (m *Metrics) ObserveNotification(err error) {
	if m == nil {
		return
	}
	result := ResultSent
	if err != nil {
		result = ResultFailed
	}
	m.Notifications.WithLabelValues(result).Inc()
}

// SetRoutes records the size of the route table.
func (m *Metrics) SetRoutes(n int) {
	if m == nil {
		return
	}
	m.RoutesConfigured.Set(float64(n))
}
