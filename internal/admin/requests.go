package admin

import (
	"cardeval/internal/validator"
	dErrors "cardeval/pkg/domain-errors"
)

// UpsertMemberRequest is the body of PUT /admin/members/{number}.
type UpsertMemberRequest struct {
	Active *bool `json:"active"`
}

func (r *UpsertMemberRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Active == nil {
		return dErrors.New(dErrors.CodeValidation, "active is required")
	}
	return nil
}

// AddWatchlistRequest is the body of POST /admin/watchlist.
type AddWatchlistRequest struct {
	FrequentFlyerNumber string `json:"frequent_flyer_number"`
}

// Validate normalizes the number in place.
func (r *AddWatchlistRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.FrequentFlyerNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "frequent_flyer_number is required")
	}
	number, ok := validator.Normalize(r.FrequentFlyerNumber)
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "frequent_flyer_number is malformed")
	}
	r.FrequentFlyerNumber = number
	return nil
}
