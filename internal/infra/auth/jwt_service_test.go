package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harbor/config"
	"harbor/internal/domain/entity"
	"harbor/internal/domain/service"
)

// testSigningConfig generates a throwaway RSA key pair and packs it into a
// config the way deployments do, base64-encoded PEM.
func testSigningConfig(t *testing.T) *config.Config {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicDER,
	})

	cfg := &config.Config{
		Auth: &config.AuthConfig{
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 60 * 24 * time.Hour,
		},
	}
	cfg.SigningKeys.Private = base64.StdEncoding.EncodeToString(privatePEM)
	cfg.SigningKeys.Public = base64.StdEncoding.EncodeToString(publicPEM)

	return cfg
}

func TestJWTService_GenerateAndValidateTokens(t *testing.T) {
	jwtService, err := NewJWTService(testSigningConfig(t))
	assert.NoError(t, err)
	assert.NotNil(t, jwtService)

	sessionID := uuid.New()
	accountID := uuid.New()

	accessToken, refreshToken, err := jwtService.GenerateAuthTokens(sessionID, accountID, entity.RoleCustomer)
	assert.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, refreshToken)

	// Validate access token
	accessClaims, err := jwtService.ValidateAccessToken(accessToken)
	assert.NoError(t, err)
	assert.NotNil(t, accessClaims)
	assert.Equal(t, accountID, accessClaims.AccountID)
	assert.Equal(t, entity.RoleCustomer, accessClaims.Role)
	assert.Equal(t, service.TokenTypeAccess, accessClaims.Type)

	gotSessionID, err := accessClaims.SessionID()
	assert.NoError(t, err)
	assert.Equal(t, sessionID, gotSessionID)

	// Validate refresh token
	refreshClaims, err := jwtService.ValidateRefreshToken(refreshToken)
	assert.NoError(t, err)
	assert.NotNil(t, refreshClaims)
	assert.Equal(t, service.TokenTypeRefresh, refreshClaims.Type)
	assert.Equal(t, uuid.Nil, refreshClaims.AccountID) // Refresh tokens carry no account claims

	gotSessionID, err = refreshClaims.SessionID()
	assert.NoError(t, err)
	assert.Equal(t, sessionID, gotSessionID)
}

func TestJWTService_RejectsWrongTokenType(t *testing.T) {
	jwtService, err := NewJWTService(testSigningConfig(t))
	assert.NoError(t, err)

	accessToken, refreshToken, err := jwtService.GenerateAuthTokens(uuid.New(), uuid.New(), entity.RoleAdmin)
	assert.NoError(t, err)

	// An access token presented where a refresh token is expected, and vice versa.
	claims, err := jwtService.ValidateRefreshToken(accessToken)
	assert.Error(t, err)
	assert.Nil(t, claims)

	claims, err = jwtService.ValidateAccessToken(refreshToken)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_InvalidToken(t *testing.T) {
	jwtService, err := NewJWTService(testSigningConfig(t))
	assert.NoError(t, err)

	claims, err := jwtService.ValidateAccessToken("clearly-not-a-jwt-token-format")
	assert.Error(t, err)
	assert.Nil(t, claims)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	issuer, err := NewJWTService(testSigningConfig(t))
	assert.NoError(t, err)
	verifier, err := NewJWTService(testSigningConfig(t))
	assert.NoError(t, err)

	accessToken, _, err := issuer.GenerateAuthTokens(uuid.New(), uuid.New(), entity.RoleCustomer)
	assert.NoError(t, err)

	claims, err := verifier.ValidateAccessToken(accessToken)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWTService_EmptyKeys(t *testing.T) {
	cfg := &config.Config{Auth: &config.AuthConfig{}}

	jwtService, err := NewJWTService(cfg)
	assert.Error(t, err)
	assert.Nil(t, jwtService)
	assert.Contains(t, err.Error(), "jwt signing keys must be provided")
}

func TestJWTService_TokenDurations(t *testing.T) {
	jwtService, err := NewJWTService(testSigningConfig(t))
	assert.NoError(t, err)

	assert.Equal(t, 15*time.Minute, jwtService.GetAccessTokenDuration())
	assert.Equal(t, 60*24*time.Hour, jwtService.GetRefreshTokenDuration())
}
