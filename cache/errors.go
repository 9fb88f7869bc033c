package cache

import "errors"

// Sentinel errors for cache operations.
var (
	// ErrClosed indicates an operation on a closed Loader.
	ErrClosed = errors.New("cache: loader is closed")

	// ErrNilFetch indicates a Loader constructed without a fetch function.
	ErrNilFetch = errors.New("cache: fetch function is required")
)

// FetchError wraps a transport failure during a cache refresh. The cached
// value and refresh timestamp are left untouched when one occurs.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "cache: fetch failed: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
