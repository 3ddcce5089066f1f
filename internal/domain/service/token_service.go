package service

import (
	"time"

	"harbor/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type markers carried in the Type claim. Validation rejects a refresh
// token presented where an access token is expected, and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims defines the custom claims for the JWT tokens. The registered
// Subject claim holds the session ID, so a token is only as alive as the
// session row it points at.
type Claims struct {
	AccountID uuid.UUID   `json:"account_id,omitempty"`
	Role      entity.Role `json:"role,omitempty"`
	Type      string      `json:"type"`
	jwt.RegisteredClaims
}

// SessionID returns the session ID carried in the Subject claim.
func (c *Claims) SessionID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenService defines the interface for generating and validating JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// GenerateAuthTokens creates a new access token and refresh token bound
	// to the given session.
	GenerateAuthTokens(sessionID, accountID uuid.UUID, role entity.Role) (accessToken string, refreshToken string, err error)

	// ValidateAccessToken checks an access token's signature, expiry and type.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// ValidateRefreshToken checks a refresh token's signature, expiry and type.
	ValidateRefreshToken(tokenString string) (*Claims, error)

	// GetAccessTokenDuration returns the configured lifetime for access tokens.
	GetAccessTokenDuration() time.Duration

	// GetRefreshTokenDuration returns the configured lifetime for refresh tokens.
	GetRefreshTokenDuration() time.Duration
}
