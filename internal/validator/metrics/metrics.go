package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the frequent flyer validator.
type Metrics struct {
	// Lookups by validation mode and result ("valid", "invalid", "error")
	Lookups *prometheus.CounterVec

	// Cache hits and misses in Quick mode
	CacheResults *prometheus.CounterVec

	LookupLatency prometheus.Histogram
}

// New creates validator metrics registered with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates validator metrics registered with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardeval_validator_lookups_total",
			Help: "Frequent flyer lookups by validation mode and result",
		}, []string{"mode", "result"}),

		CacheResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cardeval_validator_cache_results_total",
			Help: "Quick mode cache hits and misses",
		}, []string{"result"}),

		LookupLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "cardeval_validator_lookup_duration_seconds",
			Help:    "Duration of frequent flyer lookups",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementLookup(mode, result string) {
	if m != nil {
		m.Lookups.WithLabelValues(mode, result).Inc()
	}
}

func (m *Metrics) IncrementCacheResult(result string) {
	if m != nil {
		m.CacheResults.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveLookupLatency(d time.Duration) {
	if m != nil {
		m.LookupLatency.Observe(d.Seconds())
	}
}
