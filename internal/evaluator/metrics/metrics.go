package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the evaluator.
type Metrics struct {
	// Decisions by outcome and entry point
	Decisions *prometheus.CounterVec

	// Lookups reported by the validator
	Lookups prometheus.Counter

	// Validity checks that failed and fell back to human review
	ValidatorErrors prometheus.Counter
}

// New creates evaluator metrics registered with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates evaluator metrics registered with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardeval_evaluator_decisions_total",
			Help: "Total application decisions by outcome and evaluation path",
		}, []string{"decision", "path"}),

		Lookups: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardeval_evaluator_lookups_total",
			Help: "Total frequent flyer lookups reported by the validator",
		}),

		ValidatorErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "cardeval_evaluator_validator_errors_total",
			Help: "Validity checks that failed and were referred to a human",
		}),
	}
}

// IncrementDecision records a decision outcome.
func (m *Metrics) IncrementDecision(decision, path string) {
	if m != nil {
		m.Decisions.WithLabelValues(decision, path).Inc()
	}
}

// IncrementLookup records one validator lookup.
func (m *Metrics) IncrementLookup() {
	if m != nil {
		m.Lookups.Inc()
	}
}

// IncrementValidatorError records a validity check failure.
func (m *Metrics) IncrementValidatorError() {
	if m != nil {
		m.ValidatorErrors.Inc()
	}
}
