// Package gatekeeper synchronizes server-side feature flags.
//
// Flags are cached per application identifier with a one-hour freshness
// window; a load seeds from the persistent store first, so callers always
// see the last persisted flags even when the refresh is skipped or fails.
package gatekeeper
