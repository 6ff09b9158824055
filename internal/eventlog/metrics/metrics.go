package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors are registered once per process; every Metrics value shares them
// so engines built side by side in tests do not collide in the registry.
var (
	eventsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "privid_events_appended_total",
		Help: "Total number of events appended to the log",
	}, []string{"type"})
	relayPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "privid_event_relay_published_total",
		Help: "Total number of events delivered to a sink",
	}, []string{"sink"})
	relayFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "privid_event_relay_failures_total",
		Help: "Total number of failed relay batches",
	}, []string{"sink"})
	relayLag = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "privid_event_relay_lag",
		Help: "Events appended but not yet delivered to a sink",
	}, []string{"sink"})
	relayCircuitOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "privid_event_relay_sink_suspended",
		Help: "1 while a sink's circuit breaker is open",
	}, []string{"sink"})
	relayBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "privid_event_relay_batch_size",
		Help:    "Number of events per relay batch",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
	})
)

type Metrics struct{}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncAppended(eventType string) {
	eventsAppended.WithLabelValues(eventType).Inc()
}

func (m *Metrics) AddPublished(sink string, n int) {
	relayPublished.WithLabelValues(sink).Add(float64(n))
}

func (m *Metrics) IncRelayFailure(sink string) {
	relayFailures.WithLabelValues(sink).Inc()
}

func (m *Metrics) SetLag(sink string, lag uint64) {
	relayLag.WithLabelValues(sink).Set(float64(lag))
}

func (m *Metrics) ObserveBatchSize(n int) {
	relayBatchSize.Observe(float64(n))
}

func (m *Metrics) SetSinkSuspended(sink string, suspended bool) {
	v := 0.0
	if suspended {
		v = 1
	}
	relayCircuitOpen.WithLabelValues(sink).Set(v)
}
