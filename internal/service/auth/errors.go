// Package auth provides session-token issuing/verification, password
// hashing and password-reset token primitives.
package auth

import "errors"

// Common authentication errors.
var (
	// ErrInvalidToken is returned when a session token is malformed,
	// carries a bad signature, or fails claim validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a session token has expired.
	ErrExpiredToken = errors.New("token expired")

	// ErrWrongPassword is returned when a submitted password does not
	// match the stored hash.
	ErrWrongPassword = errors.New("wrong password")
)
