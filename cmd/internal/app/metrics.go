package app

import (
	"net/http"
	"strconv"

	"shopgate/cmd/internal/ratelimit"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the process metric registry and the counters exported by the
// request gate. It implements ratelimit.Metrics.
type Metrics struct {
	registry *prometheus.Registry

	rateAdmitted *prometheus.CounterVec
	rateRejected *prometheus.CounterVec
	authFailures *prometheus.CounterVec
}

// NewMetrics builds a registry with the standard Go and process collectors
// plus the gate counters.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		rateAdmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopgate",
			Subsystem: "ratelimit",
			Name:      "admitted_total",
			Help:      "Requests admitted by the rate limiter, by category.",
		}, []string{"category"}),
		rateRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopgate",
			Subsystem: "ratelimit",
			Name:      "rejected_total",
			Help:      "Requests rejected by the rate limiter, by category.",
		}, []string{"category"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopgate",
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Requests refused with 401 or 403, by status.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.rateAdmitted, m.rateRejected, m.authFailures)
	return m
}

// RequestAdmitted implements ratelimit.Metrics.
func (m *Metrics) RequestAdmitted(cat ratelimit.Category) {
	m.rateAdmitted.WithLabelValues(string(cat)).Inc()
}

// RequestRejected implements ratelimit.Metrics.
func (m *Metrics) RequestRejected(cat ratelimit.Category) {
	m.rateRejected.WithLabelValues(string(cat)).Inc()
}

// CountAuthFailures wraps next and counts 401/403 responses.
func (m *Metrics) CountAuthFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		if sw.status == http.StatusUnauthorized || sw.status == http.StatusForbidden {
			m.authFailures.WithLabelValues(strconv.Itoa(sw.status)).Inc()
		}
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
