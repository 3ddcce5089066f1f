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

// verificationTokenRepository implements the domain.VerificationTokenRepository interface.
type verificationTokenRepository struct {
	db *gorm.DB
}

// NewVerificationTokenRepository is the constructor for verificationTokenRepository.
func NewVerificationTokenRepository(db *gorm.DB) repository.VerificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

// Create persists a new verification token.
func (repo *verificationTokenRepository) Create(ctx context.Context, token *entity.VerificationToken) error {
	tokenM := fromVerificationTokenDomain(token)

	if err := repo.db.WithContext(ctx).Create(tokenM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrVerificationTokenInvalid.WrapMessage("token value already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrAccountNotFound.WrapMessage("invalid account reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create verification token")
	}

	// Update the entity with generated values
	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindByToken retrieves an unexpired token of the given type by its value.
func (repo *verificationTokenRepository) FindByToken(ctx context.Context, token string, tokenType entity.TokenType) (*entity.VerificationToken, error) {
	var tokenM model.VerificationTokenModel

	err := repo.db.WithContext(ctx).
		Where("token = ? AND type = ?", token, string(tokenType)).
		First(&tokenM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrVerificationTokenNotFound
		}

		return nil, errors.WithStack(err)
	}

	// An expired token is indistinguishable from an absent one to callers.
	if tokenM.ExpiresAt.Before(time.Now()) {
		return nil, repository.ErrVerificationTokenNotFound
	}

	return toVerificationTokenDomain(&tokenM), nil
}

// Consume deletes the token row by its ID. Zero affected rows means another
// request already redeemed it, so exactly one of two concurrent redemptions
// succeeds.
func (repo *verificationTokenRepository) Consume(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.VerificationTokenModel{})
	if result.Error != nil {
		return errors.WithStack(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrVerificationTokenNotFound
	}

	return nil
}

// DeleteByAccountAndType removes all of an account's tokens of one type.
func (repo *verificationTokenRepository) DeleteByAccountAndType(ctx context.Context, accountID uuid.UUID, tokenType entity.TokenType) error {
	err := repo.db.WithContext(ctx).
		Where("account_id = ? AND type = ?", accountID, string(tokenType)).
		Delete(&model.VerificationTokenModel{}).Error
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// DeleteExpired removes all lapsed tokens and reports how many went.
func (repo *verificationTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.VerificationTokenModel{})
	if result.Error != nil {
		return 0, errors.WithStack(result.Error)
	}

	return result.RowsAffected, nil
}

// --- Mapper Functions ---

// toVerificationTokenDomain converts a GORM VerificationTokenModel to a domain entity.
func toVerificationTokenDomain(data *model.VerificationTokenModel) *entity.VerificationToken {
	if data == nil {
		return nil
	}

	return &entity.VerificationToken{
		ID:        data.ID,
		Token:     data.Token,
		Type:      entity.TokenType(data.Type),
		Value:     data.Value,
		AccountID: data.AccountID,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}

// fromVerificationTokenDomain converts a domain entity to a GORM VerificationTokenModel.
func fromVerificationTokenDomain(data *entity.VerificationToken) *model.VerificationTokenModel {
	if data == nil {
		return nil
	}

	return &model.VerificationTokenModel{
		ID:        data.ID,
		Token:     data.Token,
		Type:      string(data.Type),
		Value:     data.Value,
		AccountID: data.AccountID,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}
