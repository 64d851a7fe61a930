// Package metrics owns the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "roomtreat"

// Import results.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
)

// Metrics groups the collectors on a private registry. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	analyses *prometheus.CounterVec
	imports  *prometheus.CounterVec
}

// New registers the service collectors plus the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analysis operations.",
		}, []string{"operation"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurement_imports_total",
			Help:      "Measurement imports by detected format and result.",
		}, []string{"format", "result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.analyses,
		m.imports,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveAnalysis counts one successful operation.
func (m *Metrics) ObserveAnalysis(operation string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(operation).Inc()
}

// ObserveImport counts one measurement import attempt.
func (m *Metrics) ObserveImport(format, result string) {
	if m == nil {
		return
	}
	if format == "" {
		format = "unknown"
	}
	m.imports.WithLabelValues(format, result).Inc()
}
