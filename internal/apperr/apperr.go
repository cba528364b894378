// Package apperr defines the failure kinds surfaced to the transport
// boundary. Services wrap these sentinels with context via fmt.Errorf and
// %w; handlers map them to HTTP statuses with errors.Is.
package apperr

import "errors"

var (
	// ErrValidation marks missing or malformed input fields.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a username or email that is already registered.
	ErrConflict = errors.New("already exists")

	// ErrInvalidCredentials marks a failed login. It deliberately does
	// not disclose whether the identifier or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionInvalid marks a refresh token that is absent, expired,
	// forged, or superseded by a later issuance.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrUnauthorized marks an access token that is absent, expired, or
	// forged, or an identity that no longer resolves to a user.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUpstream marks a credential store or object storage failure.
	ErrUpstream = errors.New("upstream failure")
)
