// Package common defines shared constants and sentinel errors used across
// client and server layers of userauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("user already exists")

	// Credential errors.
	ErrBadCredentials = errors.New("bad credentials")

	// Token errors.
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrSubjectMismatch       = errors.New("token subject mismatch")

	// Request-level errors.
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")
)

// IsAuthError reports whether err belongs to the authentication taxonomy,
// i.e. anything a client should see as 401.
func IsAuthError(err error) bool {
	for _, target := range []error{
		ErrNotFound,
		ErrBadCredentials,
		ErrTokenMalformed,
		ErrTokenSignatureInvalid,
		ErrTokenExpired,
		ErrSubjectMismatch,
		ErrUnauthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
