package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"harbor/config"
	"harbor/internal/domain/entity"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// Tokens are signed with RS256 so downstream services can verify them with
// the public key alone.
type jwtService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTService is the constructor for jwtService.
// It decodes the base64-encoded PEM key pair from configuration.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SigningKeys.Private == "" || cfg.SigningKeys.Public == "" {
		return nil, errors.New("jwt signing keys must be provided")
	}

	privatePEM, err := base64.StdEncoding.DecodeString(cfg.SigningKeys.Private)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode private signing key")
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse private signing key")
	}

	publicPEM, err := base64.StdEncoding.DecodeString(cfg.SigningKeys.Public)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode public signing key")
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse public signing key")
	}

	return &jwtService{
		privateKey: privateKey,
		publicKey:  publicKey,
		accessTTL:  cfg.Auth.AccessTokenTTL,
		refreshTTL: cfg.Auth.RefreshTokenTTL,
	}, nil
}

// GenerateAuthTokens creates a new access token and refresh token bound to a session.
// Both carry the session ID as their subject; only the access token carries
// the account ID and role for stateless authorization.
func (s *jwtService) GenerateAuthTokens(sessionID, accountID uuid.UUID, role entity.Role) (accessToken string, refreshToken string, err error) {
	now := time.Now()

	accessToken, err = s.sign(&service.Claims{
		AccountID: accountID,
		Role:      role,
		Type:      service.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	})
	if err != nil {
		return "", "", err
	}

	refreshToken, err = s.sign(&service.Claims{
		Type: service.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
		},
	})
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ValidateAccessToken checks an access token's signature, expiry and type.
func (s *jwtService) ValidateAccessToken(tokenString string) (*service.Claims, error) {
	return s.validate(tokenString, service.TokenTypeAccess)
}

// ValidateRefreshToken checks a refresh token's signature, expiry and type.
func (s *jwtService) ValidateRefreshToken(tokenString string) (*service.Claims, error) {
	return s.validate(tokenString, service.TokenTypeRefresh)
}

// GetAccessTokenDuration returns the configured lifetime for access tokens.
func (s *jwtService) GetAccessTokenDuration() time.Duration {
	return s.accessTTL
}

// GetRefreshTokenDuration returns the configured lifetime for refresh tokens.
func (s *jwtService) GetRefreshTokenDuration() time.Duration {
	return s.refreshTTL
}

func (s *jwtService) sign(claims *service.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)

	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

func (s *jwtService) validate(tokenString, wantType string) (*service.Claims, error) {
	claims := &service.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.publicKey, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.Type != wantType {
		return nil, errors.Errorf("unexpected token type %q", claims.Type)
	}

	return claims, nil
}
