package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	credentialsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "privid_credentials_created_total",
		Help: "Total number of credentials created, by credential type",
	}, []string{"type"})
	credentialsRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "privid_credentials_revoked_total",
		Help: "Total number of credentials revoked",
	})
)

type Metrics struct{}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncrementCreated(credentialType string) {
	credentialsCreated.WithLabelValues(credentialType).Inc()
}

func (m *Metrics) IncrementRevoked() {
	credentialsRevoked.Inc()
}
