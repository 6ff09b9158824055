package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "privid_verification_requests_total",
		Help: "Total number of verification requests created, by credential type",
	}, []string{"credential_type"})
	requestsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "privid_verification_resolutions_total",
		Help: "Total number of verification requests resolved, by status and resolution",
	}, []string{"status", "resolution"})
	resolveConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "privid_verification_resolve_conflicts_total",
		Help: "Resolution attempts rejected because the request had already left pending",
	})
	timeToResolve = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "privid_verification_time_to_resolve_seconds",
		Help:    "Time between request creation and resolution",
		Buckets: []float64{1, 10, 60, 300, 1800, 3600, 21600, 86400},
	})
)

type Metrics struct{}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncrementRequested(credentialType string) {
	requestsCreated.WithLabelValues(credentialType).Inc()
}

func (m *Metrics) IncrementResolved(status, resolution string) {
	requestsResolved.WithLabelValues(status, resolution).Inc()
}

func (m *Metrics) IncrementResolveConflict() {
	resolveConflicts.Inc()
}

func (m *Metrics) ObserveTimeToResolve(d time.Duration) {
	timeToResolve.Observe(d.Seconds())
}
