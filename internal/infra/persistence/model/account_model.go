// Package model holds the GORM models mirroring the PostgreSQL schema.
package model

import (
	"time"

	"github.com/google/uuid"
)

// AccountModel mirrors the 'accounts' table. PostgreSQL generates UUIDs via uuid_generate_v7().
type AccountModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email             string    `gorm:"type:varchar(255);unique;not null"`
	PasswordHash      string    `gorm:"type:varchar(255)"`
	Role              string    `gorm:"type:varchar(20);not null"`
	Provider          string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_accounts_provider_provider_account_id"`
	ProviderAccountID string    `gorm:"type:varchar(255);uniqueIndex:idx_accounts_provider_provider_account_id"`
	EmailVerified     bool      `gorm:"not null;default:false"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	CustomerProfile *CustomerProfileModel `gorm:"foreignKey:AccountID"`
	AdminProfile    *AdminProfileModel    `gorm:"foreignKey:AccountID"`
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}

// CustomerProfileModel mirrors the 'customer_profiles' table. AccountID references accounts.id (UUID).
type CustomerProfileModel struct {
	AccountID uuid.UUID `gorm:"primaryKey"`
	Country   string    `gorm:"type:varchar(100)"`
	City      string    `gorm:"type:varchar(100)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (CustomerProfileModel) TableName() string {
	return "customer_profiles"
}

// AdminProfileModel mirrors the 'admin_profiles' table. AccountID references accounts.id (UUID).
type AdminProfileModel struct {
	AccountID    uuid.UUID `gorm:"primaryKey"`
	ContactEmail string    `gorm:"type:varchar(255)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (AdminProfileModel) TableName() string {
	return "admin_profiles"
}
