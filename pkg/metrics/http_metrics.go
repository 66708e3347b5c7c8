package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetrics owns the service's registry so several routers can coexist
// in one process (tests build many).
type HTTPMetrics struct {
	ServiceName string

	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	backendReady    *prometheus.GaugeVec
	backendFailures *prometheus.CounterVec
}

// NewHTTPMetrics creates a new HTTP metrics collector for a specific service
func NewHTTPMetrics(serviceName string) *HTTPMetrics {
	m := &HTTPMetrics{
		ServiceName: serviceName,
		registry:    prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"service", "method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "path", "status"},
		),
		backendReady: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "backend_ready",
				Help: "1 when the backing store is connected, 0 otherwise",
			},
			[]string{"service", "backend"},
		),
		backendFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_errors_total",
				Help: "Store errors surfaced as 5xx responses",
			},
			[]string{"service", "backend", "kind"},
		),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.backendReady,
		m.backendFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records count and latency per route template. Unmatched
// paths are folded into one label to keep cardinality bounded.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.requests.WithLabelValues(m.ServiceName, method, path, status).Inc()
		m.duration.WithLabelValues(m.ServiceName, method, path, status).Observe(time.Since(start).Seconds())
	}
}

// SetBackendReady publishes a store's readiness.
func (m *HTTPMetrics) SetBackendReady(backend string, ready bool) {
	v := 0.0
	if ready {
		v = 1
	}
	m.backendReady.WithLabelValues(m.ServiceName, backend).Set(v)
}

// RecordBackendError counts a failed store call; kind is "unavailable" or "internal".
func (m *HTTPMetrics) RecordBackendError(backend, kind string) {
	m.backendFailures.WithLabelValues(m.ServiceName, backend, kind).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *HTTPMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
