package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	adjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "privid_reputation_adjustments_total",
		Help: "Total number of reputation adjustments, by role",
	}, []string{"role"})
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "privid_reputation_cache_lookups_total",
		Help: "Reputation cache lookups, by result (hit, miss, error)",
	}, []string{"result"})
)

type Metrics struct{}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncrementAdjustment(role string) {
	adjustments.WithLabelValues(role).Inc()
}

func (m *Metrics) RecordCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}
