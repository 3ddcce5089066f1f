package entity

import (
	"time"

	"github.com/google/uuid"
)

// TokenType distinguishes the purposes a VerificationToken can serve.
type TokenType string

const (
	// TokenTypePasswordReset authorizes a one-time password change.
	TokenTypePasswordReset TokenType = "PASSWORD_RESET"
	// TokenTypeEmailVerification proves ownership of the account email.
	TokenTypeEmailVerification TokenType = "EMAIL_VERIFICATION"
	// TokenTypeTwoFactor carries a short-lived OTP in Value.
	TokenTypeTwoFactor TokenType = "TWO_FACTOR"
)

// IsValid checks if the TokenType is a known value.
func (t TokenType) IsValid() bool {
	switch t {
	case TokenTypePasswordReset, TokenTypeEmailVerification, TokenTypeTwoFactor:
		return true
	default:
		return false
	}
}

// VerificationToken is a single-use, typed, expiring secret handed to the
// account owner out-of-band. Consumption deletes the row; at-most-once use
// is enforced by a conditional delete, not a "used" flag.
type VerificationToken struct {
	ID        uuid.UUID
	Token     string    // The opaque secret mailed to the user.
	Type      TokenType // What consuming this token authorizes.
	Value     string    // Optional secondary payload, e.g. OTP digits.
	AccountID uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the token has lapsed at the given instant.
func (t *VerificationToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
