package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token errors returned by the token verifier
	ErrTokenMissing          = errors.New("token missing")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenKindMismatch     = errors.New("token kind mismatch")

	ErrDocumentNotFound  = errors.New("document not found")
	ErrReferenceNotFound = errors.New("referenced document not found")
	ErrEmptyPatch        = errors.New("nothing to update")
	ErrUnknownField      = errors.New("unknown field")
)

// IsTokenError reports whether err is one of the token errors above
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenMissing) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrTokenSignatureInvalid) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenKindMismatch)
}
