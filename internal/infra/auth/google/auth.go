// Package google implements the Google sign-in integrations: ID token
// verification for clients that obtain a credential themselves, and the
// server-side authorization code flow for browser redirects.
package google

import (
	"context"
	"log/slog"

	"google.golang.org/api/idtoken"

	"harbor/config"
	"harbor/internal/domain/entity"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
)

// AuthServiceImpl implements service.OAuthAuthService for Google ID tokens.
type AuthServiceImpl struct {
	clientID string
	logger   *slog.Logger

	// validate is swappable so tests can avoid Google's certificate endpoint.
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewAuthService creates a new Google AuthService
func NewAuthService(cfg *config.Config, logger *slog.Logger) service.OAuthAuthService {
	return &AuthServiceImpl{
		clientID: cfg.GoogleOAuth.ClientID,
		logger:   logger,
		validate: idtoken.Validate,
	}
}

// VerifyIDToken implements service.OAuthAuthService interface
func (s *AuthServiceImpl) VerifyIDToken(ctx context.Context, token string) (*service.OAuthUser, error) {
	payload, err := s.validate(ctx, token, s.clientID)
	if err != nil {
		s.logger.Error("Failed to verify Google ID token", slog.Any("error", err))

		return nil, errors.Wrap(err, "invalid ID token")
	}

	user := oauthUserFromClaims(payload.Subject, payload.Claims)
	if user.Email == "" {
		return nil, errors.New("ID token carries no email claim")
	}
	if !user.EmailVerified {
		return nil, errors.New("email not verified by provider")
	}

	s.logger.Info("Google ID token verified",
		slog.String("subject", user.ID),
		slog.String("email", user.Email))

	return user, nil
}

// GetProvider returns the OAuth provider type
func (s *AuthServiceImpl) GetProvider() entity.ProviderType {
	return entity.ProviderTypeGoogle
}

// oauthUserFromClaims maps Google's claim set onto the provider-neutral user.
func oauthUserFromClaims(subject string, claims map[string]any) *service.OAuthUser {
	user := &service.OAuthUser{
		ID:       subject,
		Provider: entity.ProviderTypeGoogle,
	}

	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if verified, ok := claims["email_verified"].(bool); ok {
		user.EmailVerified = verified
	}
	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}
	if picture, ok := claims["picture"].(string); ok {
		user.AvatarURL = picture
	}
	if locale, ok := claims["locale"].(string); ok {
		user.Locale = locale
	}

	return user
}
