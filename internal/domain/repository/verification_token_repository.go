package repository

import (
	"context"

	"harbor/internal/domain/entity"
	"harbor/internal/errors"

	"github.com/google/uuid"
)

// ErrVerificationTokenNotFound is returned when the token is absent, expired,
// or was already consumed by a concurrent request.
var ErrVerificationTokenNotFound = errors.New("verification token not found")

// VerificationTokenRepository defines persistence operations for single-use
// verification tokens.
type VerificationTokenRepository interface {
	// Create persists a new token.
	Create(ctx context.Context, token *entity.VerificationToken) error

	// FindByToken loads an unexpired token of the given type.
	FindByToken(ctx context.Context, token string, tokenType entity.TokenType) (*entity.VerificationToken, error)

	// Consume deletes the token row by ID. Zero affected rows returns
	// ErrVerificationTokenNotFound so that of two concurrent redemptions
	// exactly one succeeds.
	Consume(ctx context.Context, id uuid.UUID) error

	// DeleteByAccountAndType removes an account's outstanding tokens of one
	// type; issuing a new token supersedes the previous ones.
	DeleteByAccountAndType(ctx context.Context, accountID uuid.UUID, tokenType entity.TokenType) error

	// DeleteExpired removes lapsed tokens and reports how many went.
	DeleteExpired(ctx context.Context) (int64, error)
}
