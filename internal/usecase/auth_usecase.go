// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"harbor/internal/domain/entity"
)

// --- Input DTOs ---

// SignUpCustomerInput defines the data required to register a customer account.
type SignUpCustomerInput struct {
	Email    string
	Password string
	Country  string
	City     string
}

// SignInInput defines the data required for an email/password sign-in.
type SignInInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// RefreshInput carries the refresh token presented for rotation, plus the
// client details recorded on the replacement session.
type RefreshInput struct {
	RefreshToken string
	IPAddress    string
	UserAgent    string
}

// GoogleCallbackInput carries the provider redirect parameters plus the
// client details recorded on the new session.
type GoogleCallbackInput struct {
	Code      string
	State     string
	IPAddress string
	UserAgent string
}

// ResetPasswordInput carries a password-reset token and the replacement password.
type ResetPasswordInput struct {
	Token       string
	NewPassword string
}

// --- Output DTOs ---

// SignUpOutput returns the newly created account's basic information.
type SignUpOutput struct {
	Account *entity.Account
}

// AuthOutput returns the token pair and account after a successful
// authentication or rotation.
type AuthOutput struct {
	AccessToken  string
	RefreshToken string
	Account      *entity.Account
}

// AuthUsecase defines the interface for authentication business operations.
// This is the contract that the delivery layer (API handlers) depends on.
type AuthUsecase interface {
	// SignUpCustomer registers a customer account and emits an email
	// verification event. Admin accounts are provisioned out-of-band and
	// have no signup path.
	SignUpCustomer(ctx context.Context, input SignUpCustomerInput) (*SignUpOutput, error)

	// SignIn authenticates an email/password pair, creates a session, and
	// returns a token pair.
	SignIn(ctx context.Context, input SignInInput) (*AuthOutput, error)

	// Refresh rotates a refresh token: the presented token's session is
	// atomically replaced by a new one and a fresh pair is returned. A
	// token that lost a rotation race fails the same way an expired one does.
	Refresh(ctx context.Context, input RefreshInput) (*AuthOutput, error)

	// SignOut revokes the session behind the presented refresh token.
	SignOut(ctx context.Context, refreshToken string) error

	// SignOutSession revokes the session directly by ID, for callers
	// authenticated with an access token.
	SignOutSession(ctx context.Context, sessionID uuid.UUID) error

	// GetAccount loads the authenticated account's profile.
	GetAccount(ctx context.Context, accountID uuid.UUID) (*entity.Account, error)

	// SignInWithGoogleIDToken authenticates a Google ID token obtained by the
	// client itself (mobile flows), creating a customer account on first sight.
	SignInWithGoogleIDToken(ctx context.Context, idToken, ipAddress, userAgent string) (*AuthOutput, error)

	// GoogleAuthURL builds the provider consent URL. The admin variant uses
	// the admin callback, which never auto-creates accounts.
	GoogleAuthURL(ctx context.Context, admin bool) (string, error)

	// GoogleCallbackCustomer completes the customer code flow; an unknown
	// Google identity gets a customer account created on the fly.
	GoogleCallbackCustomer(ctx context.Context, input GoogleCallbackInput) (*AuthOutput, error)

	// GoogleCallbackAdmin completes the admin code flow; the Google identity
	// must belong to an existing admin account.
	GoogleCallbackAdmin(ctx context.Context, input GoogleCallbackInput) (*AuthOutput, error)

	// RequestPasswordReset issues a reset token for the account, delivered
	// via the event pipeline. It reports success whether or not the email
	// is registered.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword redeems a reset token, replaces the password, and
	// revokes every session of the account.
	ResetPassword(ctx context.Context, input ResetPasswordInput) error

	// RequestEmailVerification issues a fresh verification token for the
	// account, delivered via the event pipeline.
	RequestEmailVerification(ctx context.Context, accountID uuid.UUID) error

	// VerifyEmail redeems a verification token and marks the email verified.
	VerifyEmail(ctx context.Context, token string) error
}
