package fraud

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"cardeval/internal/evaluator"
	"cardeval/internal/fraud/metrics"
	"cardeval/internal/validator"
	"cardeval/pkg/platform/circuit"
)

const (
	// MaxPlausibleAge is the oldest declared age accepted without review.
	MaxPlausibleAge = 120

	defaultWatchlistTimeout = 500 * time.Millisecond
)

// Flag reasons reported to metrics and logs.
const (
	ReasonWatchlisted    = "watchlisted"
	ReasonImplausibleAge = "implausible_age"
	ReasonNegativeIncome = "negative_income"
	ReasonOverride       = "override"
)

// Watchlist holds frequent flyer numbers linked to confirmed fraud.
type Watchlist interface {
	Contains(ctx context.Context, number string) (bool, error)
}

// RiskFunc replaces the built-in rules of a Check.
type RiskFunc func(app evaluator.Application) bool

// Check is the default fraud lookup. It flags implausible declarations and
// numbers on the watchlist.
//
// The shared watchlist is guarded by a circuit breaker. On failure, and while
// the breaker is open, the local fallback list answers instead.
type Check struct {
	watchlist Watchlist
	fallback  Watchlist
	breaker   *circuit.Breaker
	override  RiskFunc
	logger    *slog.Logger
	metrics   *metrics.Metrics
	timeout   time.Duration
}

var _ evaluator.FraudLookup = (*Check)(nil)

type Option func(*Check)

// WithFallback sets the list consulted when the watchlist is unavailable.
func WithFallback(fallback Watchlist) Option {
	return func(c *Check) {
		c.fallback = fallback
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Check) {
		if b != nil {
			c.breaker = b
		}
	}
}

// WithRiskFunc overrides the built-in rules entirely.
func WithRiskFunc(fn RiskFunc) Option {
	return func(c *Check) {
		c.override = fn
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Check) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Check) {
		c.metrics = m
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Check) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func New(watchlist Watchlist, opts ...Option) (*Check, error) {
	if watchlist == nil {
		return nil, errors.New("watchlist is required")
	}
	c := &Check{
		watchlist: watchlist,
		breaker:   circuit.New("fraud-watchlist"),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout:   defaultWatchlistTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// IsFraudRisk reports whether the application needs fraud review.
func (c *Check) IsFraudRisk(app evaluator.Application) bool {
	reason := c.risk(app)
	if reason == "" {
		return false
	}
	c.metrics.IncrementFlagged(reason)
	c.logger.Info("application flagged for fraud review", "reason", reason)
	return true
}

func (c *Check) risk(app evaluator.Application) string {
	if c.override != nil {
		if c.override(app) {
			return ReasonOverride
		}
		return ""
	}

	// The intake API rejects negative income before evaluation; this covers
	// callers that use the evaluator directly.
	if app.GrossAnnualIncome < 0 {
		return ReasonNegativeIncome
	}
	if app.Age > MaxPlausibleAge {
		return ReasonImplausibleAge
	}

	number, ok := validator.Normalize(app.FrequentFlyerNumber)
	if !ok {
		return ""
	}
	if c.onWatchlist(number) {
		return ReasonWatchlisted
	}
	return ""
}

func (c *Check) onWatchlist(number string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	listed, err := c.watchlist.Contains(ctx, number)
	if err != nil {
		_, change := c.breaker.RecordFailure()
		if change.Opened {
			c.logger.Warn("fraud watchlist circuit opened", "breaker", c.breaker.Name())
		}
		c.metrics.SetBreakerOpen(c.breaker.IsOpen())
		c.logger.Warn("fraud watchlist lookup failed, using fallback", "error", err)
		return c.fallbackContains(ctx, number)
	}

	usePrimary, change := c.breaker.RecordSuccess()
	if change.Closed {
		c.logger.Info("fraud watchlist circuit closed", "breaker", c.breaker.Name())
	}
	c.metrics.SetBreakerOpen(c.breaker.IsOpen())
	if !usePrimary {
		return c.fallbackContains(ctx, number)
	}
	return listed
}

func (c *Check) fallbackContains(ctx context.Context, number string) bool {
	if c.fallback == nil {
		return false
	}
	listed, err := c.fallback.Contains(ctx, number)
	if err != nil {
		c.logger.Warn("fraud fallback lookup failed", "error", err)
		return false
	}
	return listed
}
