package entity

// ProviderType identifies how an account authenticates.
type ProviderType string

const (
	// ProviderTypeEmail is the local email/password credential.
	ProviderTypeEmail ProviderType = "email"
	// ProviderTypeGoogle is a linked Google account.
	ProviderTypeGoogle ProviderType = "google"
)

// String returns the string representation of the ProviderType.
func (p ProviderType) String() string {
	return string(p)
}
