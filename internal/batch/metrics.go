package batch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Document outcomes used as the metric label and in reports.
const (
	OutcomeAssembled     = "assembled"
	OutcomeLoadError     = "load_error"
	OutcomeAssemblyError = "assembly_error"
	OutcomeEmptyIdentity = "empty_identity"
)

// Metrics provides observability for batch runs.
type Metrics struct {
	// Documents processed by outcome
	Documents *prometheus.CounterVec

	// Time spent assembling one document
	AssemblyLatency prometheus.Histogram
}

// NewMetrics registers the batch metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Documents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lattes_batch_documents_total",
			Help: "Profile documents processed by outcome",
		}, []string{"outcome"}),

		AssemblyLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lattes_batch_assembly_duration_seconds",
			Help:    "Duration of assembling one profile document",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementOutcome records one processed document.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.Documents.WithLabelValues(outcome).Inc()
	}
}

// ObserveAssembly records the duration of one assembly.
func (m *Metrics) ObserveAssembly(d time.Duration) {
	if m != nil {
		m.AssemblyLatency.Observe(d.Seconds())
	}
}
