// Package metrics holds the process-wide HTTP metrics. Domain counters live
// in each module's own metrics package.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	endpointLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "privid_http_request_duration_seconds",
		Help:    "Latency of HTTP requests in seconds, labeled by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "privid_http_requests_total",
		Help: "Total number of HTTP requests, labeled by route pattern and status",
	}, []string{"route", "method", "status"})

	authFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "privid_http_auth_failures_total",
		Help: "Total number of requests rejected for a missing or invalid bearer token",
	})
)

// Metrics is a handle on the package collectors.
type Metrics struct{}

func New() *Metrics {
	return &Metrics{}
}

// ObserveRequest records one completed request.
func (m *Metrics) ObserveRequest(route, method, status string, d time.Duration) {
	endpointLatency.WithLabelValues(route, method).Observe(d.Seconds())
	requestsTotal.WithLabelValues(route, method, status).Inc()
}

func (m *Metrics) IncrementAuthFailures() {
	authFailures.Inc()
}
