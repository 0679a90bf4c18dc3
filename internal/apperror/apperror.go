// Package apperror defines the application's error taxonomy.
//
// Services return these typed errors; the HTTP layer translates them to
// status codes in one place (handler/writeError). The sentinels below are
// meant to be matched with errors.Is, which walks the chain through
// AppError.Unwrap.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAssertion   = errors.New("invalid identity assertion")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
)

type AppError struct {
	Err     error  // sentinel identifying the error kind
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InvalidCredentials covers failed password logins. The message is
// deliberately generic: the response must not reveal whether the email
// exists or the password was wrong.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "invalid email or password",
	}
}

// InvalidAssertion covers a third-party identity token that failed
// verification (bad signature, wrong audience, expired, malformed).
func InvalidAssertion(message string) *AppError {
	return &AppError{
		Err:     ErrInvalidAssertion,
		Message: message,
	}
}

// TokenInvalid covers session tokens that fail verification for any reason
// other than expiry.
func TokenInvalid(message string) *AppError {
	return &AppError{
		Err:     ErrTokenInvalid,
		Message: message,
	}
}

// TokenExpired is distinct from TokenInvalid so clients can treat expiry as
// "session over, return to login" rather than a hard failure.
func TokenExpired() *AppError {
	return &AppError{
		Err:     ErrTokenExpired,
		Message: "session token has expired",
	}
}
