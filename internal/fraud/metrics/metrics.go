package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the fraud lookup.
type Metrics struct {
	// Applications flagged by reason
	Flagged *prometheus.CounterVec

	// 1 while the watchlist breaker is open
	BreakerOpen prometheus.Gauge
}

// New creates fraud metrics registered with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates fraud metrics registered with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Flagged: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardeval_fraud_flagged_total",
			Help: "Applications flagged for fraud review by reason",
		}, []string{"reason"}),

		BreakerOpen: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cardeval_fraud_watchlist_breaker_open",
			Help: "Whether the fraud watchlist circuit breaker is open",
		}),
	}
}

func (m *Metrics) IncrementFlagged(reason string) {
	if m != nil {
		m.Flagged.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}
