package repository

import (
	"context"
	"time"

	"harbor/internal/domain/entity"
	"harbor/internal/errors"

	"github.com/google/uuid"
)

// ErrMediaNotFound is returned when a media record does not exist.
var ErrMediaNotFound = errors.New("media not found")

// MediaRepository defines persistence operations for uploaded media records.
type MediaRepository interface {
	// Create persists a new media record.
	Create(ctx context.Context, media *entity.Media) error

	// FindByID loads a media record by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Media, error)

	// ListByOwner pages through an account's media, newest first, and
	// reports the total count for the pagination envelope.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Media, int64, error)

	// Delete removes a media record. Zero affected rows returns ErrMediaNotFound.
	Delete(ctx context.Context, id uuid.UUID) error

	// FindOrphans lists ownerless media created before the cutoff.
	FindOrphans(ctx context.Context, olderThan time.Time) ([]*entity.Media, error)

	// DeleteByIDs removes a batch of media records and reports how many went.
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}
