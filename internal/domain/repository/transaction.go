// Package repository defines the persistence contracts the use cases depend
// on, keeping the domain free of storage concerns.
package repository

import "context"

// RepositoryFactory creates repository instances bound to one transaction.
type RepositoryFactory interface {
	AccountRepo() AccountRepository
	SessionRepo() SessionRepository
	VerificationTokenRepo() VerificationTokenRepository
	MediaRepo() MediaRepository
}

// TransactionManager runs a function within a single database transaction.
// Returning an error from fn rolls everything back.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(repoFactory RepositoryFactory) error) error
}
