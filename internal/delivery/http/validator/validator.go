// Package validator adapts go-playground/validator to echo's Validator hook.
package validator

import (
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/errors"

	validatorlib "github.com/go-playground/validator/v10"
)

// Validator wraps a single validator instance; it is safe for concurrent use.
type Validator struct {
	validate *validatorlib.Validate
}

// New builds the request validator used by the HTTP server.
func New() *Validator {
	return &Validator{validate: validatorlib.New(validatorlib.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator. Rule violations surface as a 400
// validation error carrying the offending rule.
func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		var fieldErrs validatorlib.ValidationErrors
		if ok := errors.As(err, &fieldErrs); ok && len(fieldErrs) > 0 {
			return domainerrors.ErrValidationFailed.WithDetails(fieldErrs[0].Error())
		}

		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
