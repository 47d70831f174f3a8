package application

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"cardeval/internal/evaluator"
	dErrors "cardeval/pkg/domain-errors"
)

// MaxFrequentFlyerNumberLength bounds the raw number accepted at intake.
const MaxFrequentFlyerNumberLength = 32

// Record is a persisted evaluation outcome.
type Record struct {
	ID          uuid.UUID
	Application evaluator.Application
	Decision    evaluator.Decision
	Path        evaluator.Path
	// LookupCount is the number of validator lookups this evaluation caused.
	LookupCount int64
	EvaluatedAt time.Time
	RequestID   string
	ActorID     string
	Channel     string
}

// EvaluateRequest carries an application plus the request metadata that ends
// up on the record and in the audit trail.
type EvaluateRequest struct {
	Application evaluator.Application
	Path        evaluator.Path
	RequestID   string
	ActorID     string
	Channel     string
}

// Validate checks the application fields the rule chain cannot judge itself.
func (r EvaluateRequest) Validate() error {
	if r.Application.GrossAnnualIncome < 0 {
		return dErrors.New(dErrors.CodeValidation, "gross_annual_income must not be negative")
	}
	if r.Application.Age < 0 {
		return dErrors.New(dErrors.CodeValidation, "age must not be negative")
	}
	if len(strings.TrimSpace(r.Application.FrequentFlyerNumber)) > MaxFrequentFlyerNumberLength {
		return dErrors.New(dErrors.CodeValidation, "frequent_flyer_number must be at most 32 characters")
	}
	switch r.Path {
	case "", evaluator.PathStandard, evaluator.PathOut:
	default:
		return dErrors.New(dErrors.CodeValidation, "path must be standard or out")
	}
	return nil
}

// Stats summarizes the service since start-up.
type Stats struct {
	LookupCount int64
	Evaluated   int64
}
