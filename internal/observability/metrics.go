package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ticket_import"

// Metrics holds the service's Prometheus collectors on a private registry.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorTotal      *prometheus.CounterVec
	rowTotal        *prometheus.CounterVec
	runTotal        *prometheus.CounterVec
}

// NewMetrics registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Total number of HTTP errors by domain code.",
		}, []string{"route", "method", "code"}),
		rowTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Imported CSV rows by outcome.",
		}, []string{"outcome"}),
		runTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Import runs by final status.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.errorTotal,
		m.rowTotal,
		m.runTotal,
		collectors.NewGoCollector(),
	)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(path, method, code).Inc()
}

// RecordRow counts one processed CSV row.
func (m *Metrics) RecordRow(outcome string) {
	if m == nil {
		return
	}
	m.rowTotal.WithLabelValues(outcome).Inc()
}

// RecordRun counts one finished import run.
func (m *Metrics) RecordRun(status string) {
	if m == nil {
		return
	}
	m.runTotal.WithLabelValues(status).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
