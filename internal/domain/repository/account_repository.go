package repository

import (
	"context"

	"harbor/internal/domain/entity"
	"harbor/internal/errors"

	"github.com/google/uuid"
)

// ErrAccountNotFound is returned when no account matches the lookup.
var ErrAccountNotFound = errors.New("account not found")

// ErrDuplicateEmail is returned when a create or update collides with the
// unique, case-insensitive email constraint.
var ErrDuplicateEmail = errors.New("email already in use")

// AccountRepository defines persistence operations for Account entities and
// their role-specific profiles.
type AccountRepository interface {
	// Create persists a new account together with its profile. The entity's
	// ID and timestamps are filled in from the generated row.
	Create(ctx context.Context, account *entity.Account) error

	// FindByID loads an account with its profile.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByEmail loads an account by its normalized email.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// FindByProvider loads an account by its linked OAuth identity.
	FindByProvider(ctx context.Context, provider entity.ProviderType, providerAccountID string) (*entity.Account, error)

	// Update persists credential, linkage and profile changes. The role is
	// never written back; it is immutable after creation.
	Update(ctx context.Context, account *entity.Account) error
}
