package validator

import (
	"context"

	"cardeval/internal/validator/license"
)

// Directory is the authoritative source of frequent flyer memberships.
type Directory interface {
	// Lookup reports whether number belongs to an active member.
	Lookup(ctx context.Context, number string) (bool, error)
}

// Cache holds recent lookup results for Quick mode.
type Cache interface {
	// Get returns the cached result and whether one was found.
	Get(ctx context.Context, number string) (valid bool, found bool, err error)
	Set(ctx context.Context, number string, valid bool) error
}

// LicenseSource provides the validator's service information.
type LicenseSource interface {
	ServiceInformation() *license.ServiceInformation
}
