package evaluator

import (
	"fmt"
	"strings"
)

// Thresholds are fixed rule constants, not configuration.
const (
	HighIncomeThreshold = 100_000
	LowIncomeThreshold  = 20_000
	YoungApplicantAge   = 20
	DetailedModeAge     = 30

	// LicenseKeyExpired is the only license key value the evaluator interprets.
	LicenseKeyExpired = "EXPIRED"
)

// Application describes a credit card applicant. It is passed by value so
// evaluation cannot mutate the caller's copy.
type Application struct {
	GrossAnnualIncome   float64
	Age                 int
	FrequentFlyerNumber string
}

// Decision is the outcome of evaluating an application.
type Decision string

const (
	AutoAccepted             Decision = "auto_accepted"
	AutoDeclined             Decision = "auto_declined"
	ReferredToHuman          Decision = "referred_to_human"
	ReferredToHumanFraudRisk Decision = "referred_to_human_fraud_risk"
)

func (d Decision) String() string {
	return string(d)
}

// IsValid reports whether d is one of the four known decisions.
func (d Decision) IsValid() bool {
	switch d {
	case AutoAccepted, AutoDeclined, ReferredToHuman, ReferredToHumanFraudRisk:
		return true
	}
	return false
}

// IsReferral reports whether the decision hands the application to a human reviewer.
func (d Decision) IsReferral() bool {
	return d == ReferredToHuman || d == ReferredToHumanFraudRisk
}

// ParseDecision converts a stored decision string back into a Decision.
func ParseDecision(s string) (Decision, error) {
	d := Decision(strings.TrimSpace(strings.ToLower(s)))
	if !d.IsValid() {
		return "", fmt.Errorf("unknown decision %q", s)
	}
	return d, nil
}

// ValidationMode controls how thoroughly the validator checks a number.
type ValidationMode string

const (
	Quick    ValidationMode = "quick"
	Detailed ValidationMode = "detailed"
)

func (m ValidationMode) String() string {
	return string(m)
}

// modeForAge returns Detailed for applicants aged DetailedModeAge or older.
func modeForAge(age int) ValidationMode {
	if age >= DetailedModeAge {
		return Detailed
	}
	return Quick
}

// Path identifies which entry point produced a decision.
type Path string

const (
	PathStandard Path = "standard"
	PathOut      Path = "out"
)

// ParsePath accepts "", "standard" and "out".
func ParsePath(s string) (Path, error) {
	switch Path(strings.TrimSpace(strings.ToLower(s))) {
	case "", PathStandard:
		return PathStandard, nil
	case PathOut:
		return PathOut, nil
	}
	return "", fmt.Errorf("unknown evaluation path %q", s)
}
