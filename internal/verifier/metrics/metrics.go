package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var authorizationChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "privid_verifier_authorization_changes_total",
	Help: "Total number of verifier authorization toggles, by new state",
}, []string{"authorized"})

type Metrics struct{}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncrementAuthorizationChange(authorized bool) {
	label := "false"
	if authorized {
		label = "true"
	}
	authorizationChanges.WithLabelValues(label).Inc()
}
