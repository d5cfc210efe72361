// Package metrics exposes Prometheus counters for pipeline transitions and
// HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"rivo_backend/internal/pipeline/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	transitionsApplied  *prometheus.CounterVec
	transitionsRejected *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		transitionsApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_transitions_applied_total",
				Help: "Committed status and stage transitions",
			},
			[]string{"entity", "operation", "to"},
		),
		transitionsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_transitions_rejected_total",
				Help: "Transitions refused by the state machine rules",
			},
			[]string{"entity", "operation"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.transitionsApplied,
		m.transitionsRejected,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) TransitionApplied(entity, operation, to string) {
	m.transitionsApplied.WithLabelValues(entity, operation, to).Inc()
}

func (m *Metrics) TransitionRejected(entity, operation string) {
	m.transitionsRejected.WithLabelValues(entity, operation).Inc()
}

// Middleware records request counts and latency keyed by the matched route
// template, so path ids do not explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var _ ports.TransitionObserver = (*Metrics)(nil)
