package handler

import (
	"strings"

	"cardeval/internal/application"
	"cardeval/internal/evaluator"
	dErrors "cardeval/pkg/domain-errors"
)

// EvaluateRequest is the HTTP request body for POST /applications/evaluate.
type EvaluateRequest struct {
	GrossAnnualIncome   *float64 `json:"gross_annual_income"`
	Age                 *int     `json:"age"`
	FrequentFlyerNumber string   `json:"frequent_flyer_number"`
	Path                string   `json:"path,omitempty"`

	// Parsed values (populated by Validate)
	parsedPath evaluator.Path
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast)
	r.FrequentFlyerNumber = strings.TrimSpace(r.FrequentFlyerNumber)
	if len(r.FrequentFlyerNumber) > application.MaxFrequentFlyerNumberLength {
		return dErrors.New(dErrors.CodeValidation, "frequent_flyer_number must be at most 32 characters")
	}

	// Required fields
	if r.GrossAnnualIncome == nil {
		return dErrors.New(dErrors.CodeValidation, "gross_annual_income is required")
	}
	if r.Age == nil {
		return dErrors.New(dErrors.CodeValidation, "age is required")
	}

	if *r.GrossAnnualIncome < 0 {
		return dErrors.New(dErrors.CodeValidation, "gross_annual_income must not be negative")
	}
	if *r.Age < 0 {
		return dErrors.New(dErrors.CodeValidation, "age must not be negative")
	}

	path, err := evaluator.ParsePath(r.Path)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "path must be standard or out")
	}
	r.parsedPath = path

	return nil
}

// ParsedPath returns the validated evaluation path.
func (r *EvaluateRequest) ParsedPath() evaluator.Path {
	return r.parsedPath
}

// Application converts the request into the evaluator's input.
func (r *EvaluateRequest) Application() evaluator.Application {
	return evaluator.Application{
		GrossAnnualIncome:   *r.GrossAnnualIncome,
		Age:                 *r.Age,
		FrequentFlyerNumber: r.FrequentFlyerNumber,
	}
}
