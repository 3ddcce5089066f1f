package repository

import (
	"context"

	"harbor/internal/domain/entity"
	"harbor/internal/errors"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when no session matches the lookup, or when
// a conditional delete touched zero rows.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired is returned when the session row exists but has lapsed.
var ErrSessionExpired = errors.New("session expired")

// SessionRepository defines persistence operations for Session entities.
type SessionRepository interface {
	// Create persists a new session. The entity's ID and CreatedAt are
	// filled in from the generated row.
	Create(ctx context.Context, session *entity.Session) error

	// FindActiveByID loads an unexpired session. An existing but lapsed row
	// yields ErrSessionExpired; this is the database-side expiry check that
	// backs up the token's own exp claim.
	FindActiveByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)

	// FindActiveByAccountID lists a user's unexpired sessions, newest first.
	FindActiveByAccountID(ctx context.Context, accountID uuid.UUID) ([]*entity.Session, error)

	// Delete removes a session by ID. Deleting an absent row returns
	// ErrSessionNotFound, which is what makes rotation race-safe: of two
	// concurrent refreshes only one delete reports an affected row.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByAccountID removes every session owned by the account.
	DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error

	// DeleteExpired removes lapsed sessions and reports how many went.
	DeleteExpired(ctx context.Context) (int64, error)
}
