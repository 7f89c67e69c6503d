package sentiment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts classification outcomes and times LLM calls.
type Metrics struct {
	outcomes *prometheus.CounterVec
	latency  prometheus.Histogram
}

// NewMetrics registers the classifier collectors on reg. A nil reg leaves
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sentiment_classifications_total",
			Help: "Total number of sentiment classifications by outcome and reason",
		}, []string{"outcome", "reason"}),
		latency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sentiment_llm_request_duration_seconds",
			Help:    "Duration of LLM chat completion calls in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2, 4, 8, 15, 30},
		}),
	}
}

func (m *Metrics) record(o outcome) {
	reason := o.reason
	if reason == "" {
		reason = "none"
	}
	m.outcomes.WithLabelValues(o.kind.String(), reason).Inc()
}
