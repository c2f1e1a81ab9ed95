// Package metrics exposes Prometheus collectors for the HTTP layer and the
// ticketing core.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector. Outcome labels are "ok" or the error kind.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	registrationsTotal  *prometheus.CounterVec
	paymentsTotal       *prometheus.CounterVec
	refundsTotal        *prometheus.CounterVec
	walletMovements     *prometheus.CounterVec
	notificationsTotal  *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		gatherer: reg,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		registrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registrations_total",
				Help: "Registration create and cancel attempts by outcome",
			},
			[]string{"action", "outcome"},
		),
		paymentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_total",
				Help: "Wallet payment attempts by outcome",
			},
			[]string{"outcome"},
		),
		refundsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refunds_total",
				Help: "Refund attempts by outcome",
			},
			[]string{"outcome"},
		),
		walletMovements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wallet_transactions_total",
				Help: "Committed wallet transactions by type",
			},
			[]string{"type"},
		),
		notificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_dispatched_total",
				Help: "Notices handed to sinks by sink and outcome",
			},
			[]string{"sink", "outcome"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.registrationsTotal,
		m.paymentsTotal,
		m.refundsTotal,
		m.walletMovements,
		m.notificationsTotal,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordRegistration counts a registration create or cancel attempt.
func (m *Metrics) RecordRegistration(action, outcome string) {
	m.registrationsTotal.WithLabelValues(action, outcome).Inc()
}

// RecordPayment counts a wallet payment attempt.
func (m *Metrics) RecordPayment(outcome string) {
	m.paymentsTotal.WithLabelValues(outcome).Inc()
}

// RecordRefund counts a refund attempt.
func (m *Metrics) RecordRefund(outcome string) {
	m.refundsTotal.WithLabelValues(outcome).Inc()
}

// RecordWallet counts a committed wallet transaction of txType.
func (m *Metrics) RecordWallet(txType string) {
	m.walletMovements.WithLabelValues(txType).Inc()
}

// RecordNotification counts one notice handed to sink.
func (m *Metrics) RecordNotification(sink, outcome string) {
	m.notificationsTotal.WithLabelValues(sink, outcome).Inc()
}
