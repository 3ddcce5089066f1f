package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session represents the server-side record backing a refresh token.
// It is replaced, inside one transaction, on every refresh (rotation) and
// deleted on sign-out, revocation or the expiry sweep.
type Session struct {
	ID        uuid.UUID // The unique ID for this session; also the token subject claim.
	AccountID uuid.UUID // Links this session to the Account it belongs to.
	IPAddress string    // Audit metadata captured at creation; may be empty.
	UserAgent string    // Audit metadata captured at creation; may be empty.
	ExpiresAt time.Time // Required. The session is expired iff now is after this.
	CreatedAt time.Time
}

// IsExpired reports whether the session has lapsed at the given instant.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
