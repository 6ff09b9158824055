package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var proofsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "privid_zkproofs_issued_total",
	Help: "Total number of ZK proof records issued, by proof type",
}, []string{"proof_type"})

type Metrics struct{}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncrementIssued(proofType string) {
	proofsIssued.WithLabelValues(proofType).Inc()
}
