package fetch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for retrieval runs.
type Metrics struct {
	Documents       *prometheus.CounterVec
	RequestDuration prometheus.Histogram
}

// NewMetrics registers the retrieval metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Documents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lattes_fetch_documents_total",
			Help: "Roster entries processed by outcome",
		}, []string{"outcome"}),
		RequestDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lattes_fetch_request_duration_seconds",
			Help:    "Duration of one profile download including retries",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) incrementOutcome(outcome string) {
	if m != nil {
		m.Documents.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) observeRequest(d time.Duration) {
	if m != nil {
		m.RequestDuration.Observe(d.Seconds())
	}
}
