package service

import (
	"errors"
	"fmt"

	"github.com/crushd/backend/internal/model"
)

var (
	// ErrInvalidCredentials is returned for both "no such user" and "wrong
	// password". The single message is deliberate: distinct messages would
	// let a caller enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrNotFound = errors.New("user not found")

	// Token verification failures. Distinguished internally for logging and
	// for the TOKEN_EXPIRED client hint; externally both are just 401s.
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("invalid token")

	ErrMisconfigured = errors.New("auth config invalid")
)

// ConflictError reports an email or username uniqueness violation.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every failed field check rather than stopping at
// the first.
type ValidationError struct {
	Fields []model.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Fields[0].Field, e.Fields[0].Message)
}
