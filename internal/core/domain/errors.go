package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserExists          = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrSalesRecordNotFound = errors.New("sales record not found")
	ErrForbidden           = errors.New("access forbidden")
)

// AuthErrorKind classifies why a request failed authentication.
type AuthErrorKind int

const (
	AuthMissingToken AuthErrorKind = iota + 1
	AuthMalformedHeader
	AuthInvalidToken
	AuthTokenExpired
)

func (k AuthErrorKind) String() string {
	switch k {
	case AuthMissingToken:
		return "missing_token"
	case AuthMalformedHeader:
		return "malformed_header"
	case AuthInvalidToken:
		return "invalid_token"
	case AuthTokenExpired:
		return "token_expired"
	default:
		return "unknown"
	}
}

// AuthError is returned by the token service and the auth middleware. The
// wrapped cause is for server-side logs only.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func NewAuthError(kind AuthErrorKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
	}
	return "auth: " + e.Kind.String()
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError carries a client-safe description of bad input.
type ValidationError struct {
	Message string
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.Message }

// UnexpectedError wraps an internal failure with the generic message the
// client is allowed to see.
type UnexpectedError struct {
	Message string
	Err     error
}

func (e *UnexpectedError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// Unexpected wraps err unless it already belongs to the known taxonomy, in
// which case it is returned unchanged.
func Unexpected(message string, err error) error {
	if err == nil || IsKnown(err) {
		return err
	}
	return &UnexpectedError{Message: message, Err: err}
}

// IsKnown reports whether err maps to a deliberate client-facing outcome.
func IsKnown(err error) bool {
	var (
		ae *AuthError
		ve *ValidationError
		ue *UnexpectedError
	)
	switch {
	case errors.As(err, &ae), errors.As(err, &ve), errors.As(err, &ue):
		return true
	case errors.Is(err, ErrUserExists),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrSalesRecordNotFound),
		errors.Is(err, ErrForbidden):
		return true
	}
	return false
}
