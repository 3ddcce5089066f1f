// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"harbor/internal/domain/entity"
)

// SessionUsecase defines the interface for session management operations.
// All operations are scoped to the calling account; a session belonging to
// someone else is indistinguishable from one that does not exist.
type SessionUsecase interface {
	// ListSessions returns the account's active sessions, newest first.
	ListSessions(ctx context.Context, accountID uuid.UUID) ([]*entity.Session, error)

	// RevokeSession deletes one of the account's sessions by ID.
	RevokeSession(ctx context.Context, accountID, sessionID uuid.UUID) error

	// RevokeAllSessions deletes every session of the account, including the
	// one making the call.
	RevokeAllSessions(ctx context.Context, accountID uuid.UUID) error

	// RevokeAllOtherSessions deletes every session except the current one.
	RevokeAllOtherSessions(ctx context.Context, accountID, currentSessionID uuid.UUID) error
}
