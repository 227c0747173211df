// Package metrics exposes Prometheus metrics for the dashboard server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fitsphere_dashboard"

// Metrics owns its registry so tests and multiple servers don't collide.
type Metrics struct {
	registry *prometheus.Registry

	BackendRequests  *prometheus.HistogramVec
	BookingOutcomes  *prometheus.CounterVec
	CheckoutOutcomes *prometheus.CounterVec
	RealtimeEvents   *prometheus.CounterVec
	ActiveAttempts   prometheus.Gauge
	RateLimited      prometheus.Counter
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		BackendRequests: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Duration of backend REST calls by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		BookingOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_outcomes_total",
			Help:      "Booking attempts by final outcome.",
		}, []string{"outcome"}),

		CheckoutOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_outcomes_total",
			Help:      "Cart checkouts by final outcome.",
		}, []string{"outcome"}),

		RealtimeEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "realtime_events_total",
			Help:      "Chat frames by direction and event.",
		}, []string{"direction", "event"}),

		ActiveAttempts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "booking_attempts_active",
			Help:      "Booking attempts currently held for browser sessions.",
		}),

		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the per-session limiter.",
		}),
	}
}

// ObserveRequest records one backend call.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.BackendRequests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObserveRealtime records one chat frame.
func (m *Metrics) ObserveRealtime(direction, event string) {
	m.RealtimeEvents.WithLabelValues(direction, event).Inc()
}

func (m *Metrics) IncBookingOutcome(outcome string) {
	m.BookingOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncCheckoutOutcome(outcome string) {
	m.CheckoutOutcomes.WithLabelValues(outcome).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
