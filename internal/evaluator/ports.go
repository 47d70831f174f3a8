package evaluator

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks Validator,FraudLookup

// Validator checks frequent flyer numbers. Implementations own their lookup
// strategy; the evaluator only drives the contract below.
type Validator interface {
	// IsValid reports whether the number is valid. It may fail when the
	// validator cannot produce a trustworthy answer.
	IsValid(frequentFlyerNumber string) (bool, error)

	// CheckValidity writes the validity result into isValid. It never fails.
	CheckValidity(frequentFlyerNumber string, isValid *bool)

	ValidationMode() ValidationMode
	SetValidationMode(mode ValidationMode)

	// LicenseKey returns the validator's current license key. Empty means
	// no license information, which is not treated as expired.
	LicenseKey() string

	// OnLookupPerformed registers fn to run once per lookup. The returned
	// function removes the registration.
	OnLookupPerformed(fn func()) (unsubscribe func())
}

// FraudLookup flags applications that should go to fraud review.
type FraudLookup interface {
	IsFraudRisk(app Application) bool
}

// FraudLookupFunc adapts a plain function to FraudLookup.
type FraudLookupFunc func(app Application) bool

func (f FraudLookupFunc) IsFraudRisk(app Application) bool {
	return f(app)
}
