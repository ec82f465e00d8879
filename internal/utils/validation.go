package utils

import (
	"github.com/go-playground/validator/v10"
)

// RequestValidator adapts go-playground/validator to Echo's Validator
// interface so handlers can call c.Validate(&req) after binding.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator builds a validator instance.  Struct tags on the
// request DTOs (`validate:"required,email"` etc.) drive the rules.
func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
