package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/infra/persistence/model"
)

// mediaRepository implements the domain.MediaRepository interface.
type mediaRepository struct {
	db *gorm.DB
}

// NewMediaRepository is the constructor for mediaRepository.
func NewMediaRepository(db *gorm.DB) repository.MediaRepository {
	return &mediaRepository{db: db}
}

// Create persists a new media record.
func (repo *mediaRepository) Create(ctx context.Context, media *entity.Media) error {
	mediaM := fromMediaDomain(media)

	if err := repo.db.WithContext(ctx).Create(mediaM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrMediaUploadFailed.WrapMessage("storage key already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrAccountNotFound.WrapMessage("invalid owner reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create media record")
	}

	// Update the entity with generated values
	media.ID = mediaM.ID
	media.CreatedAt = mediaM.CreatedAt

	return nil
}

// FindByID retrieves a media record by its ID.
func (repo *mediaRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Media, error) {
	var mediaM model.MediaModel

	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&mediaM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMediaNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toMediaDomain(&mediaM), nil
}

// ListByOwner pages through an account's media, newest first.
func (repo *mediaRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Media, int64, error) {
	var total int64

	query := repo.db.WithContext(ctx).
		Model(&model.MediaModel{}).
		Where("owner_id = ?", ownerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.WithStack(err)
	}

	var mediaModels []*model.MediaModel
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&mediaModels).Error
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	items := make([]*entity.Media, 0, len(mediaModels))
	for _, mediaM := range mediaModels {
		items = append(items, toMediaDomain(mediaM))
	}

	return items, total, nil
}

// Delete removes a media record. Zero affected rows means it was already gone.
func (repo *mediaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.MediaModel{})
	if result.Error != nil {
		return errors.WithStack(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrMediaNotFound
	}

	return nil
}

// FindOrphans lists ownerless media created before the cutoff.
func (repo *mediaRepository) FindOrphans(ctx context.Context, olderThan time.Time) ([]*entity.Media, error) {
	var mediaModels []*model.MediaModel

	err := repo.db.WithContext(ctx).
		Where("owner_id IS NULL AND created_at < ?", olderThan).
		Find(&mediaModels).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	items := make([]*entity.Media, 0, len(mediaModels))
	for _, mediaM := range mediaModels {
		items = append(items, toMediaDomain(mediaM))
	}

	return items, nil
}

// DeleteByIDs removes a batch of media records and reports how many went.
func (repo *mediaRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := repo.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&model.MediaModel{})
	if result.Error != nil {
		return 0, errors.WithStack(result.Error)
	}

	return result.RowsAffected, nil
}

// --- Mapper Functions ---

// toMediaDomain converts a GORM MediaModel to a domain Media entity.
func toMediaDomain(data *model.MediaModel) *entity.Media {
	if data == nil {
		return nil
	}

	return &entity.Media{
		ID:         data.ID,
		FileName:   data.FileName,
		StorageKey: data.StorageKey,
		MimeType:   data.MimeType,
		Size:       data.Size,
		OwnerID:    data.OwnerID,
		CreatedAt:  data.CreatedAt,
	}
}

// fromMediaDomain converts a domain Media entity to a GORM MediaModel.
func fromMediaDomain(data *entity.Media) *model.MediaModel {
	if data == nil {
		return nil
	}

	return &model.MediaModel{
		ID:         data.ID,
		FileName:   data.FileName,
		StorageKey: data.StorageKey,
		MimeType:   data.MimeType,
		Size:       data.Size,
		OwnerID:    data.OwnerID,
		CreatedAt:  data.CreatedAt,
	}
}
