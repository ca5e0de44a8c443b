package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and validates session tokens.
type JWTService interface {
	// GenerateToken creates a signed session token for userID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken verifies the signature and expiry of tokenString and
	// returns its claims. Errors are ErrInvalidToken, ErrExpiredToken or
	// ErrTokenNotYetValid.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// TokenLifetime reports how long issued tokens stay valid.
	TokenLifetime() time.Duration
}

// Claims represents the custom claims structure for the session token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
