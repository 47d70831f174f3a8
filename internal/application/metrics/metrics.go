package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for application intake.
type Metrics struct {
	// Evaluations by decision and path
	Evaluations *prometheus.CounterVec

	// Evaluations that failed after the decision was made
	Failures *prometheus.CounterVec

	// Duration of a full intake including persistence and audit
	EvaluateLatency prometheus.Histogram
}

// New creates application metrics registered with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates application metrics registered with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardeval_application_evaluations_total",
			Help: "Total applications evaluated by decision and path",
		}, []string{"decision", "path"}),

		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardeval_application_failures_total",
			Help: "Application intakes that failed by stage",
		}, []string{"stage"}), // stage: "store", "audit"

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardeval_application_evaluate_duration_seconds",
			Help:    "Duration of application intake",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementEvaluation records an evaluation outcome.
func (m *Metrics) IncrementEvaluation(decision, path string) {
	if m != nil {
		m.Evaluations.WithLabelValues(decision, path).Inc()
	}
}

// IncrementFailure records a failed intake stage.
func (m *Metrics) IncrementFailure(stage string) {
	if m != nil {
		m.Failures.WithLabelValues(stage).Inc()
	}
}

// ObserveEvaluateLatency records the total intake duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
