package evaluator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"cardeval/internal/evaluator/metrics"
)

// Evaluator classifies credit card applications. Rules and thresholds are
// fixed; the collaborators are swappable.
//
// Evaluate and EvaluateUsingOut run synchronously on the caller's goroutine.
// The lookup counter is atomic, so one Evaluator may be shared.
type Evaluator struct {
	validator   Validator
	fraudLookup FraudLookup
	logger      *slog.Logger
	metrics     *metrics.Metrics

	lookupCount atomic.Int64

	closeOnce   sync.Once
	closed      atomic.Bool
	unsubscribe func()
}

type Option func(*Evaluator)

// WithFraudLookup enables the fraud rule. Without it the rule is skipped.
func WithFraudLookup(lookup FraudLookup) Option {
	return func(e *Evaluator) {
		e.fraudLookup = lookup
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Evaluator) {
		e.metrics = m
	}
}

// New constructs an Evaluator and subscribes it to the validator's lookup
// notifications for its whole lifetime (until Close).
func New(validator Validator, opts ...Option) (*Evaluator, error) {
	if validator == nil {
		return nil, errors.New("validator is required")
	}

	e := &Evaluator{
		validator: validator,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	e.unsubscribe = validator.OnLookupPerformed(e.handleLookupPerformed)
	return e, nil
}

func (e *Evaluator) handleLookupPerformed() {
	if e.closed.Load() {
		return
	}
	e.lookupCount.Add(1)
	e.metrics.IncrementLookup()
}

// LookupCount returns the number of lookups the validator has reported since
// construction.
func (e *Evaluator) LookupCount() int64 {
	return e.lookupCount.Load()
}

// Close stops counting lookups and releases the validator subscription.
func (e *Evaluator) Close() {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		if e.unsubscribe != nil {
			e.unsubscribe()
		}
	})
}

// Evaluate applies the rule chain. The first matching rule wins:
//  1. Fraud risk (when a fraud lookup is configured)
//  2. High income
//  3. Expired validator license
//  4. Validation mode selection by age
//  5. Frequent flyer validity; failures refer to a human
//  6. Young applicant
//  7. Low income
//  8. Everything else goes to a human
//
// Evaluate never fails.
func (e *Evaluator) Evaluate(app Application) Decision {
	decision := e.evaluate(app)
	e.metrics.IncrementDecision(decision.String(), string(PathStandard))
	return decision
}

func (e *Evaluator) evaluate(app Application) Decision {
	if e.fraudLookup != nil && e.fraudLookup.IsFraudRisk(app) {
		return ReferredToHumanFraudRisk
	}

	if app.GrossAnnualIncome >= HighIncomeThreshold {
		return AutoAccepted
	}

	if e.validator.LicenseKey() == LicenseKeyExpired {
		return ReferredToHuman
	}

	e.validator.SetValidationMode(modeForAge(app.Age))

	valid, err := e.checkValid(app.FrequentFlyerNumber)
	if err != nil {
		e.logger.Warn("frequent flyer validation failed, referring to human",
			"error", err,
		)
		e.metrics.IncrementValidatorError()
		return ReferredToHuman
	}
	if !valid {
		return ReferredToHuman
	}

	if app.Age <= YoungApplicantAge {
		return ReferredToHuman
	}

	if app.GrossAnnualIncome < LowIncomeThreshold {
		return AutoDeclined
	}

	return ReferredToHuman
}

// checkValid calls the validator, turning a panic into an error so the
// application is referred instead of crashing the caller.
func (e *Evaluator) checkValid(number string) (valid bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			valid, err = false, fmt.Errorf("validator panicked: %v", r)
		}
	}()
	return e.validator.IsValid(number)
}

// EvaluateUsingOut validates through the output-parameter convention and maps
// a valid number to AutoDeclined and anything else to ReferredToHuman. It does
// not run the rule chain.
func (e *Evaluator) EvaluateUsingOut(app Application) Decision {
	var isValid bool
	e.validator.CheckValidity(app.FrequentFlyerNumber, &isValid)

	decision := ReferredToHuman
	if isValid {
		decision = AutoDeclined
	}
	e.metrics.IncrementDecision(decision.String(), string(PathOut))
	return decision
}
