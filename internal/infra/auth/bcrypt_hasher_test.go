package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"harbor/config"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/errors"
)

func strictHasher(cost int) *bcryptHasher {
	return &bcryptHasher{
		cost: cost,
		policy: config.PasswordStrengthConfig{
			MinLength:        8,
			MaxLength:        128,
			RequireUppercase: true,
			RequireLowercase: true,
			RequireNumbers:   true,
			RequireSpecial:   true,
			ForbiddenWords:   []string{"password", "admin"},
		},
	}
}

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)

	password := "StrongPhrase123!"
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	// Verify the hash can be checked
	assert.True(t, hasher.Check(password, hash))
}

func TestBcryptHasher_DefaultPolicyIsLengthOnly(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)

	// Simple lowercase-plus-digit passwords are acceptable out of the box.
	hash, err := hasher.Hash("password1")
	assert.NoError(t, err)
	assert.True(t, hasher.Check("password1", hash))

	_, err = hasher.Hash("short1")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordStrength))
}

func TestBcryptHasher_StrictPolicyRejectsWeakPasswords(t *testing.T) {
	hasher := strictHasher(bcrypt.MinCost)

	weakPasswords := []string{
		"123",             // Too short
		"passphrase",      // No uppercase, no numbers
		"PHRASE12345678!", // No lowercase
		"phrase12345678!", // No uppercase
		"PhraseOnlyWords", // No numbers
		"Phrase12345678",  // No special characters
		"Password123!",    // Forbidden word
		"MyAdmin123!",     // Forbidden word
	}

	for _, weak := range weakPasswords {
		_, err := hasher.Hash(weak)
		assert.Error(t, err, "expected error for weak password: %s", weak)
		assert.True(t, errors.Is(err, domainerrors.ErrPasswordStrength), "expected strength error for: %s", weak)
	}
}

func TestBcryptHasher_Check(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)
	password := "StrongPhrase123!"

	hash, err := hasher.Hash(password)
	assert.NoError(t, err)

	assert.True(t, hasher.Check(password, hash))
	assert.False(t, hasher.Check("WrongPhrase123!", hash))
	assert.False(t, hasher.Check("", hash))
	assert.False(t, hasher.Check(password, "invalid_hash"))
}

func TestBcryptHasher_ValidateStrength(t *testing.T) {
	hasher := strictHasher(bcrypt.MinCost)

	validPasswords := []string{
		"StrongPhrase123!",
		"MySecure@Code1",
		"Complex#Secret9",
		"Valid$Phrase2024",
	}
	for _, password := range validPasswords {
		assert.NoError(t, hasher.ValidateStrength(password), "expected valid password: %s", password)
	}

	testCases := []struct {
		password    string
		expectedErr string
	}{
		{"123", "must be at least 8 characters long"},
		{"PHRASE12345678!", "must contain at least one lowercase letter"},
		{"phrase12345678!", "must contain at least one uppercase letter"},
		{"PhraseOnlyWords", "must contain at least one number"},
		{"Phrase12345678", "must contain at least one special character"},
		{"Password123!", "contains forbidden words"},
		{"MyAdmin123!", "contains forbidden words"},
	}
	for _, tc := range testCases {
		err := hasher.ValidateStrength(tc.password)
		assert.Error(t, err, "expected error for password: %s", tc.password)
		appErr, ok := err.(domainerrors.AppError)
		assert.True(t, ok)
		assert.Contains(t, appErr.Details(), tc.expectedErr)
	}
}

func TestBcryptHasher_WithCustomCost(t *testing.T) {
	customCost := 6
	hasher := NewBcryptHasherWithCost(customCost)

	password := "StrongPhrase123!"
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)

	cost, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
	assert.Equal(t, customCost, cost)

	assert.True(t, hasher.Check(password, hash))
}

func TestBcryptHasher_UnicodePasswords(t *testing.T) {
	hasher := strictHasher(bcrypt.MinCost)

	// Unicode letters satisfy the character class checks.
	assert.NoError(t, hasher.ValidateStrength("Pässphräse123!"))
}
