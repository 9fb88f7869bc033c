package notify

// Well-known notification names posted by the client.
const (
	// ProfileChanged is posted when the cached user profile is replaced.
	ProfileChanged = "graphkit.profile.changed"

	// CredentialChanged is posted when the current credential is replaced.
	CredentialChanged = "graphkit.credential.changed"
)

// Change is the payload of a notification. Previous is nil when no prior
// value existed; the absence is an observable state, not a placeholder.
type Change struct {
	Previous any
	Current  any
}

// Handler receives a posted change.
type Handler func(Change)

// Channel is the change-notification contract.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Ordering: handlers for a given name are invoked in post order.
// - Idempotence: Observe/Unobserve with the same (name, key) are no-ops
//   after the first call; re-observing replaces the handler, never adds one.
type Channel interface {
	// Post delivers change to every handler observing name.
	Post(name string, change Change)

	// Observe registers handler under (name, key). Re-registering the same
	// key replaces the previous handler.
	Observe(name, key string, handler Handler)

	// Unobserve removes the handler registered under (name, key).
	// Idempotent - no effect if absent.
	Unobserve(name, key string)
}
