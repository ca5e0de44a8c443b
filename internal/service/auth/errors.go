package auth

import "errors"

// Token errors. The middleware and API layer report all of them as 401.
var (
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
	ErrMissingToken     = errors.New("authentication token is missing")
)

// ErrInvalidCredentials is returned by Login for an unknown email, a wrong
// password and a deactivated account alike, so callers cannot tell which.
var ErrInvalidCredentials = errors.New("invalid credentials")
