package service

import (
	"context"

	"harbor/internal/domain/entity"
)

// OAuthUser represents user information from OAuth providers
type OAuthUser struct {
	ID            string              // Provider-specific user ID (e.g., Google's 'sub' claim)
	Email         string              // User's email address
	Name          string              // User's display name
	Provider      entity.ProviderType // The OAuth provider
	AvatarURL     string              // URL to user's profile picture
	EmailVerified bool                // Whether the email is verified by the provider
	Locale        string              // User's locale/language preference
}

// OAuthAuthService defines the interface for OAuth authentication operations
// This is specifically for ID token verification (like Google ID tokens)
type OAuthAuthService interface {
	// VerifyIDToken verifies an OAuth ID token and returns user information
	// This is primarily used for Google Sign-In where the client sends an ID token directly
	VerifyIDToken(ctx context.Context, idToken string) (*OAuthUser, error)

	// GetProvider returns the OAuth provider type
	GetProvider() entity.ProviderType
}

// OAuthCodeFlowService drives the server-side authorization code flow:
// the browser is redirected to the provider's consent page, and the callback
// exchanges the returned code for the user's identity.
type OAuthCodeFlowService interface {
	// AuthorizationURL builds the provider consent URL with a fresh
	// single-use state parameter.
	AuthorizationURL(ctx context.Context, redirectURI string) (string, error)

	// Exchange validates the state, trades the authorization code for
	// tokens, and returns the provider's view of the user.
	Exchange(ctx context.Context, code, state string) (*OAuthUser, error)

	// GetProvider returns the OAuth provider type
	GetProvider() entity.ProviderType
}
