package errors

import (
	"errors"
	"fmt"
)

// Common error types for the console client
var (
	// Credential store errors
	ErrTokenNotFound   = errors.New("token not found")
	ErrNoRefreshToken  = errors.New("no refresh token")
	ErrInvalidTokenKey = errors.New("invalid token kind")

	// Authorization errors
	ErrUnauthorized     = errors.New("unauthorized")
	ErrSessionExpired   = errors.New("session expired")
	ErrRefreshFailed    = errors.New("token refresh failed")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")

	// Session controller errors
	ErrAlreadyInitialized = errors.New("session already initialized")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInvalidArgs = errors.New("invalid arguments")
	ErrInternal    = errors.New("internal error")
)

// New returns an error that formats as the given text
func New(text string) error {
	return errors.New(text)
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Join returns an error that wraps the given errors
func Join(errs ...error) error {
	return errors.Join(errs...)
}
