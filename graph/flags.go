package graph

import "strings"

// Flags is a composable set of request behaviors. The zero value is the
// empty set. Flags compose by set union; union is associative and
// commutative.
type Flags uint8

const (
	// FlagSkipCredential builds the request without any access token.
	FlagSkipCredential Flags = 1 << iota

	// FlagNoInvalidateOnAuthError keeps the current credential intact when
	// the backend reports an authorization error for this request.
	FlagNoInvalidateOnAuthError

	// FlagDisableErrorRecovery exempts this request from automatic error
	// recovery.
	FlagDisableErrorRecovery
)

// Union returns the set union of f and other.
func (f Flags) Union(other Flags) Flags {
	return f | other
}

// Intersect returns the set intersection of f and other.
func (f Flags) Intersect(other Flags) Flags {
	return f & other
}

// Has reports whether every flag in want is present in f.
func (f Flags) Has(want Flags) bool {
	return f&want == want
}

// With returns f with the given flags added.
func (f Flags) With(add Flags) Flags {
	return f | add
}

// Without returns f with the given flags removed.
func (f Flags) Without(remove Flags) Flags {
	return f &^ remove
}

// String renders the set for logging, e.g. "skip_credential|disable_recovery".
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	if f.Has(FlagSkipCredential) {
		parts = append(parts, "skip_credential")
	}
	if f.Has(FlagNoInvalidateOnAuthError) {
		parts = append(parts, "no_invalidate_on_auth_error")
	}
	if f.Has(FlagDisableErrorRecovery) {
		parts = append(parts, "disable_recovery")
	}
	return strings.Join(parts, "|")
}
