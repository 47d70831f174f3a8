package jwttoken

import (
	"strings"

	authmw "cardeval/pkg/platform/middleware/auth"
)

// MiddlewareValidator exposes a JWTService to the auth middleware, which only
// needs the caller identity and role.
type MiddlewareValidator struct {
	service *JWTService
}

func NewMiddlewareValidator(service *JWTService) *MiddlewareValidator {
	return &MiddlewareValidator{service: service}
}

// ValidateToken verifies the token and reduces it to middleware claims. Roles
// compare case-insensitively downstream, so they are lower-cased here.
func (v *MiddlewareValidator) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{
		ActorID: claims.ActorID,
		Role:    strings.ToLower(strings.TrimSpace(claims.Role)),
		JTI:     claims.ID,
	}, nil
}
