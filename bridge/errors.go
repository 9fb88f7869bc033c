package bridge

import "errors"

// Validation errors surfaced synchronously from URL building. Each is
// terminal; no retry helps until the host application is reconfigured.
var (
	// ErrSchemeUnavailable indicates the receiving application's custom
	// scheme cannot be opened on this platform.
	ErrSchemeUnavailable = errors.New("bridge: scheme unavailable")

	// ErrInvalidURLScheme indicates the host application has not declared
	// the required URL-scheme entries.
	ErrInvalidURLScheme = errors.New("bridge: URL scheme not declared")

	// ErrInvalidAppID indicates no application identifier is configured.
	ErrInvalidAppID = errors.New("bridge: invalid application ID")

	// ErrURLBuildFailed indicates the final URL could not be serialized.
	ErrURLBuildFailed = errors.New("bridge: URL construction failed")
)
