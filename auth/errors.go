package auth

import "errors"

// Sentinel errors for credential handling.
var (
	// ErrCredentialRequired indicates an operation needing a credential was
	// attempted with none available.
	ErrCredentialRequired = errors.New("auth: credential required")

	// ErrTokenMalformed indicates an authentication token that could not be parsed.
	ErrTokenMalformed = errors.New("auth: token malformed")

	// ErrTokenExpired indicates an authentication token past its expiry.
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrAudienceMismatch indicates a token issued for a different application.
	ErrAudienceMismatch = errors.New("auth: token audience mismatch")
)
