package entity

import (
	"regexp"
	"strings"

	domainerrors "harbor/internal/domain/errors"
)

// emailPattern is a deliberately simple local@domain.tld check.
// Deliverability is proven by the verification mail, not the regex.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Email is a normalized, validated email address. Two Email values built
// from the same address in different casing compare equal, because
// normalization happens at construction time.
type Email struct {
	address string
}

// NewEmail trims and lowercases the raw address, then validates its shape.
func NewEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if !emailPattern.MatchString(normalized) {
		return Email{}, domainerrors.ErrInvalidEmail.WrapMessage("invalid email format: " + raw)
	}

	return Email{address: normalized}, nil
}

// String returns the normalized address.
func (e Email) String() string {
	return e.address
}

// IsZero reports whether the value was never constructed through NewEmail.
func (e Email) IsZero() bool {
	return e.address == ""
}
