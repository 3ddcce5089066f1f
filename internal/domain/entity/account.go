package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account is the root identity record, unifying the login credential and the
// role. Exactly one of CustomerProfile or AdminProfile is set, matching Role.
type Account struct {
	ID    uuid.UUID // The unique identifier for this account.
	Email string    // Normalized (lowercase) login email, unique across accounts.
	// PasswordHash stores the bcrypt hash of the local credential.
	// Empty when the account only authenticates through an OAuth provider.
	PasswordHash string
	Role         Role // Fixed at creation; never updated afterwards.
	// Provider and ProviderAccountID record a linked OAuth identity.
	Provider          ProviderType
	ProviderAccountID string
	EmailVerified     bool
	CustomerProfile   *CustomerProfile // Set when Role == RoleCustomer.
	AdminProfile      *AdminProfile    // Set when Role == RoleAdmin.
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CustomerProfile holds data specific to customer accounts.
type CustomerProfile struct {
	AccountID uuid.UUID // Foreign key to the owning Account.
	Country   string
	City      string
	UpdatedAt time.Time
}

// AdminProfile holds data specific to administrator accounts.
type AdminProfile struct {
	AccountID    uuid.UUID // Foreign key to the owning Account.
	ContactEmail string
	UpdatedAt    time.Time
}

// HasPassword reports whether the account carries a local credential.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// IsLinkedTo reports whether the account is linked to the given provider identity.
func (a *Account) IsLinkedTo(provider ProviderType, providerAccountID string) bool {
	return a.Provider == provider && a.ProviderAccountID == providerAccountID
}
