// Package notify provides an explicit, injectable change-notification
// channel. Components post named changes to it and observers register
// keyed handlers; registration and removal are idempotent per key, so
// toggling a subscription repeatedly never leaks duplicate handlers.
package notify
