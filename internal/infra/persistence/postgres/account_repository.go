package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/infra/persistence/model"
)

// accountRepository implements the domain.AccountRepository interface.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

// Create persists a new account together with its role-specific profile.
// GORM inserts the associated profile row in the same statement batch.
func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountM := fromAccountDomain(account)

	if err := repo.db.WithContext(ctx).Create(accountM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateEmail
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrAccountCreationFailed.WrapMessage("missing required account information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create account")
	}

	// Update the entity with generated values
	account.ID = accountM.ID
	account.CreatedAt = accountM.CreatedAt
	account.UpdatedAt = accountM.UpdatedAt

	return nil
}

// FindByID retrieves an account with its profile preloaded.
func (repo *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	var accountM model.AccountModel

	err := repo.db.WithContext(ctx).
		Preload("CustomerProfile").
		Preload("AdminProfile").
		Where("id = ?", id).
		First(&accountM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toAccountDomain(&accountM), nil
}

// FindByEmail retrieves an account by its normalized email.
func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	var accountM model.AccountModel

	err := repo.db.WithContext(ctx).
		Preload("CustomerProfile").
		Preload("AdminProfile").
		Where("email = ?", email).
		First(&accountM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toAccountDomain(&accountM), nil
}

// FindByProvider retrieves an account by its linked OAuth identity.
func (repo *accountRepository) FindByProvider(ctx context.Context, provider entity.ProviderType, providerAccountID string) (*entity.Account, error) {
	var accountM model.AccountModel

	err := repo.db.WithContext(ctx).
		Preload("CustomerProfile").
		Preload("AdminProfile").
		Where("provider = ? AND provider_account_id = ?", string(provider), providerAccountID).
		First(&accountM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toAccountDomain(&accountM), nil
}

// Update persists credential, linkage and profile changes. The role column
// is deliberately left out of the update set; roles never change after
// creation.
func (repo *accountRepository) Update(ctx context.Context, account *entity.Account) error {
	updates := map[string]any{
		"email":               account.Email,
		"password_hash":       account.PasswordHash,
		"provider":            string(account.Provider),
		"provider_account_id": account.ProviderAccountID,
		"email_verified":      account.EmailVerified,
	}

	result := repo.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("id = ?", account.ID).
		Updates(updates)
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return repository.ErrDuplicateEmail
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update account")
	}
	if result.RowsAffected == 0 {
		return repository.ErrAccountNotFound
	}

	if account.CustomerProfile != nil {
		profileM := fromCustomerProfileDomain(account.ID, account.CustomerProfile)
		if err := repo.db.WithContext(ctx).Save(profileM).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to update customer profile")
		}
	}
	if account.AdminProfile != nil {
		profileM := fromAdminProfileDomain(account.ID, account.AdminProfile)
		if err := repo.db.WithContext(ctx).Save(profileM).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to update admin profile")
		}
	}

	return nil
}

// --- Mapper Functions ---

// toAccountDomain converts a GORM AccountModel to a domain Account entity.
func toAccountDomain(data *model.AccountModel) *entity.Account {
	if data == nil {
		return nil
	}

	account := &entity.Account{
		ID:                data.ID,
		Email:             data.Email,
		PasswordHash:      data.PasswordHash,
		Role:              entity.Role(data.Role),
		Provider:          entity.ProviderType(data.Provider),
		ProviderAccountID: data.ProviderAccountID,
		EmailVerified:     data.EmailVerified,
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}

	if data.CustomerProfile != nil {
		account.CustomerProfile = &entity.CustomerProfile{
			AccountID: data.CustomerProfile.AccountID,
			Country:   data.CustomerProfile.Country,
			City:      data.CustomerProfile.City,
			UpdatedAt: data.CustomerProfile.UpdatedAt,
		}
	}
	if data.AdminProfile != nil {
		account.AdminProfile = &entity.AdminProfile{
			AccountID:    data.AdminProfile.AccountID,
			ContactEmail: data.AdminProfile.ContactEmail,
			UpdatedAt:    data.AdminProfile.UpdatedAt,
		}
	}

	return account
}

// fromAccountDomain converts a domain Account entity to a GORM AccountModel.
func fromAccountDomain(data *entity.Account) *model.AccountModel {
	if data == nil {
		return nil
	}

	accountM := &model.AccountModel{
		ID:                data.ID,
		Email:             data.Email,
		PasswordHash:      data.PasswordHash,
		Role:              string(data.Role),
		Provider:          string(data.Provider),
		ProviderAccountID: data.ProviderAccountID,
		EmailVerified:     data.EmailVerified,
		CreatedAt:         data.CreatedAt,
		UpdatedAt:         data.UpdatedAt,
	}

	if data.CustomerProfile != nil {
		accountM.CustomerProfile = fromCustomerProfileDomain(data.ID, data.CustomerProfile)
	}
	if data.AdminProfile != nil {
		accountM.AdminProfile = fromAdminProfileDomain(data.ID, data.AdminProfile)
	}

	return accountM
}

func fromCustomerProfileDomain(accountID uuid.UUID, data *entity.CustomerProfile) *model.CustomerProfileModel {
	return &model.CustomerProfileModel{
		AccountID: accountID,
		Country:   data.Country,
		City:      data.City,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromAdminProfileDomain(accountID uuid.UUID, data *entity.AdminProfile) *model.AdminProfileModel {
	return &model.AdminProfileModel{
		AccountID:    accountID,
		ContactEmail: data.ContactEmail,
		UpdatedAt:    data.UpdatedAt,
	}
}
