package fraud

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cardeval/internal/evaluator"
	"cardeval/internal/fraud/metrics"
	"cardeval/internal/fraud/watchlist"
	"cardeval/pkg/platform/circuit"
)

// flakyWatchlist fails while err is set.
type flakyWatchlist struct {
	*watchlist.InMemory
	err   error
	calls int
}

func (w *flakyWatchlist) Contains(ctx context.Context, number string) (bool, error) {
	w.calls++
	if w.err != nil {
		return false, w.err
	}
	return w.InMemory.Contains(ctx, number)
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watchlist is required")
}

func TestIsFraudRisk_BuiltInRules(t *testing.T) {
	check, err := New(watchlist.NewInMemory("FR666"))
	require.NoError(t, err)

	cases := []struct {
		name     string
		app      evaluator.Application
		expected bool
	}{
		{"empty application is clean", evaluator.Application{}, false},
		{"watchlisted number is flagged", evaluator.Application{FrequentFlyerNumber: "FR666"}, true},
		{"watchlist match is case insensitive", evaluator.Application{FrequentFlyerNumber: " fr666 "}, true},
		{"other number is clean", evaluator.Application{FrequentFlyerNumber: "FR667", Age: 40}, false},
		{"age 120 is plausible", evaluator.Application{Age: 120}, false},
		{"age above 120 is flagged", evaluator.Application{Age: 121}, true},
		{"negative income is flagged", evaluator.Application{GrossAnnualIncome: -1}, true},
		{"malformed number skips watchlist", evaluator.Application{FrequentFlyerNumber: "FR 666!"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, check.IsFraudRisk(tc.app))
		})
	}
}

func TestIsFraudRisk_Override(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	check, err := New(watchlist.NewInMemory("FR666"),
		WithMetrics(m),
		WithRiskFunc(func(app evaluator.Application) bool {
			return app.GrossAnnualIncome == 42
		}),
	)
	require.NoError(t, err)

	assert.True(t, check.IsFraudRisk(evaluator.Application{GrossAnnualIncome: 42}))
	assert.False(t, check.IsFraudRisk(evaluator.Application{FrequentFlyerNumber: "FR666"}), "override replaces built-in rules")
	assert.Equal(t, float64(1), promtestutil.ToFloat64(m.Flagged.WithLabelValues(ReasonOverride)))
}

func TestIsFraudRisk_WatchlistFailover(t *testing.T) {
	primary := &flakyWatchlist{InMemory: watchlist.NewInMemory("FR666")}
	fallback := watchlist.NewInMemory("FR666", "LC1")
	breaker := circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(2))
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())

	check, err := New(primary, WithFallback(fallback), WithBreaker(breaker), WithMetrics(m))
	require.NoError(t, err)

	t.Run("primary answers while healthy", func(t *testing.T) {
		assert.False(t, check.IsFraudRisk(evaluator.Application{FrequentFlyerNumber: "LC1"}))
	})

	t.Run("failure uses fallback list", func(t *testing.T) {
		primary.err = errors.New("redis down")
		calls := primary.calls
		assert.True(t, check.IsFraudRisk(evaluator.Application{FrequentFlyerNumber: "LC1"}))
		assert.Equal(t, calls+1, primary.calls, "shared watchlist consulted before falling back")
		assert.False(t, breaker.IsOpen())
	})

	t.Run("repeated failures open the breaker", func(t *testing.T) {
		assert.True(t, check.IsFraudRisk(evaluator.Application{FrequentFlyerNumber: "FR666"}))
		assert.True(t, breaker.IsOpen())
		assert.Equal(t, float64(1), promtestutil.ToFloat64(m.BreakerOpen))
	})

	t.Run("recovering primary is not trusted until threshold", func(t *testing.T) {
		primary.err = nil
		assert.True(t, check.IsFraudRisk(evaluator.Application{FrequentFlyerNumber: "LC1"}))
		assert.True(t, breaker.IsOpen())

		assert.False(t, check.IsFraudRisk(evaluator.Application{FrequentFlyerNumber: "LC1"}))
		assert.False(t, breaker.IsOpen())
		assert.Equal(t, float64(0), promtestutil.ToFloat64(m.BreakerOpen))
	})

	t.Run("no fallback means not flagged", func(t *testing.T) {
		failing := &flakyWatchlist{InMemory: watchlist.NewInMemory("FR666"), err: errors.New("down")}
		c, err := New(failing)
		require.NoError(t, err)
		assert.False(t, c.IsFraudRisk(evaluator.Application{FrequentFlyerNumber: "FR666"}))
	})
}
