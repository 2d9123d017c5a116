// Package metrics exposes application-level prometheus instruments.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's counters. Served by promhttp on /metrics.
type Metrics struct {
	UsageConflicts    prometheus.Counter
	ScanRuns          prometheus.Counter
	ScanNotifications prometheus.Counter
	ScanFailures      prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		UsageConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paperforge_usage_cas_conflicts_total",
			Help: "Usage counter compare-and-swap conflicts.",
		}),
		ScanRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paperforge_expiration_scan_runs_total",
			Help: "Expiration scan invocations.",
		}),
		ScanNotifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paperforge_expiration_notifications_total",
			Help: "Expiration warnings delivered.",
		}),
		ScanFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "paperforge_expiration_notification_failures_total",
			Help: "Expiration warnings that failed to deliver.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "paperforge_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paperforge_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	prometheus.MustRegister(
		m.UsageConflicts,
		m.ScanRuns,
		m.ScanNotifications,
		m.ScanFailures,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// NewUnregistered returns instruments detached from the default registry,
// for tests that construct services directly.
func NewUnregistered() *Metrics {
	return &Metrics{
		UsageConflicts: prometheus.NewCounter(prometheus.CounterOpts{Name: "usage_cas_conflicts_total"}),
		ScanRuns:       prometheus.NewCounter(prometheus.CounterOpts{Name: "expiration_scan_runs_total"}),
		ScanNotifications: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "expiration_notifications_total",
		}),
		ScanFailures: prometheus.NewCounter(prometheus.CounterOpts{Name: "expiration_notification_failures_total"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "http_requests_total"}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "http_request_duration_seconds"}, []string{"method", "route"}),
	}
}

// GinMiddleware records request counts and latency.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
