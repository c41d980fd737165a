package services

import (
	"errors"
	"strings"

	"github.com/kakpu/IT-onboarding/internal/dto"
)

var (
	ErrItemNotFound       = errors.New("checklist item not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrForbidden          = errors.New("insufficient privileges")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrEntraDisabled      = errors.New("entra id sign-in is not configured")
)

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []dto.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type fieldErrors []dto.FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, dto.FieldError{Field: field, Message: message})
}

// err returns nil when no field failed.
func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
