package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/graphkit/graphkit/auth"
	"github.com/graphkit/graphkit/observe"
)

// FetchFunc retrieves a fresh value from the backend. The owning service
// supplies it; it builds the request, hands it to the transport and
// decodes the result.
type FetchFunc[T any] func(ctx context.Context, cred *auth.Credential) (T, error)

// FreshFunc is the cache-specific condition layered on top of time
// freshness, evaluated against the cached value and the credential of the
// current call.
type FreshFunc[T any] func(value T, cred *auth.Credential) bool

// LoaderConfig configures a Loader.
type LoaderConfig[T any] struct {
	// Kind names the cache for logs, metrics and the default store key.
	Kind string

	// Window is the freshness window. Required.
	Window time.Duration

	// Fetch retrieves a fresh value. Required.
	Fetch FetchFunc[T]

	// Fresh is the extra freshness condition. Nil means always satisfied.
	Fresh FreshFunc[T]

	// Encode/Decode are the persistence codec. Both nil disables mirroring.
	Encode func(T) ([]byte, error)
	Decode func([]byte) (T, error)

	// Store mirrors the value for cold-start seeding. Optional.
	Store Store

	// StoreKey overrides the persistence key. Default: Kind.
	StoreKey string

	// OnUpdate runs after the cached value is replaced, outside the state
	// lock, with the previous value when one existed.
	OnUpdate func(previous *T, current T)

	// RefreshedAt extracts the refresh instant carried by a value itself.
	// When set and non-zero it overrides the wall clock for timestamping.
	RefreshedAt func(T) time.Time

	// Now overrides the clock. Default: time.Now.
	Now func() time.Time

	Logger  observe.Logger
	Metrics observe.Metrics
}

// Loader owns one remotely-sourced value and keeps it fresh with at most
// one concurrent fetch. It is the sole mutator of its own state.
type Loader[T any] struct {
	cfg LoaderConfig[T]

	mu            sync.Mutex
	value         *T
	lastRefreshed time.Time
	inFlight      bool
	closed        bool

	sf singleflight.Group
}

// NewLoader creates a Loader from cfg.
func NewLoader[T any](cfg LoaderConfig[T]) (*Loader[T], error) {
	if cfg.Fetch == nil {
		return nil, ErrNilFetch
	}
	if cfg.Window <= 0 {
		cfg.Window = GatekeeperWindow
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.StoreKey == "" {
		cfg.StoreKey = cfg.Kind
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observe.NopMetrics()
	}
	return &Loader[T]{cfg: cfg}, nil
}

// Snapshot returns the current cached value. The value is shared
// read-only; callers must not mutate it.
func (l *Loader[T]) Snapshot() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.value == nil {
		var zero T
		return zero, false
	}
	return *l.value, true
}

// LastRefreshed returns when the value last refreshed successfully.
// Zero means never.
func (l *Loader[T]) LastRefreshed() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastRefreshed
}

// InFlight reports whether a fetch is currently outstanding.
func (l *Loader[T]) InFlight() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight
}

// Seed loads the persisted mirror into memory when no in-memory value
// exists yet. A seeded value carries no refresh timestamp, so it serves
// readers but never suppresses the next refresh. Returns true if a value
// was seeded.
func (l *Loader[T]) Seed() bool {
	if l.cfg.Store == nil || l.cfg.Decode == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.value != nil {
		return false
	}
	data, ok := l.cfg.Store.Read(l.cfg.StoreKey)
	if !ok {
		return false
	}
	v, err := l.cfg.Decode(data)
	if err != nil {
		// A corrupt mirror is treated as absent.
		return false
	}
	l.value = &v
	return true
}

// Invalidate clears the refresh timestamp so the next EnsureFresh fetches,
// leaving the cached value in place to serve readers meanwhile.
func (l *Loader[T]) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastRefreshed = time.Time{}
}

// EnsureFresh returns the cached value synchronously without I/O when it
// is fresh, and otherwise fetches. All callers arriving while a fetch is
// outstanding share that single fetch; at most one transport call is in
// flight per Loader at any time. An in-flight fetch always runs to
// completion; ctx reaches the fetch function but does not abort state
// handling.
//
// On fetch failure the previously cached value, when present, is returned
// alongside a *FetchError and stays authoritative.
func (l *Loader[T]) EnsureFresh(ctx context.Context, cred *auth.Credential) (T, error) {
	var zero T

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return zero, ErrClosed
	}
	if l.value != nil {
		extra := l.cfg.Fresh == nil || l.cfg.Fresh(*l.value, cred)
		if IsFreshAt(l.cfg.Now(), l.lastRefreshed, l.cfg.Window, extra) {
			v := *l.value
			l.mu.Unlock()
			l.cfg.Metrics.RecordCacheAccess(ctx, l.cfg.Kind, true)
			return v, nil
		}
	}
	l.inFlight = true
	l.mu.Unlock()
	l.cfg.Metrics.RecordCacheAccess(ctx, l.cfg.Kind, false)

	v, err, _ := l.sf.Do("refresh", func() (any, error) {
		// Re-check under the flight lock: a refresh that completed between
		// this caller's staleness check and now makes another fetch
		// unnecessary.
		l.mu.Lock()
		if l.value != nil {
			extra := l.cfg.Fresh == nil || l.cfg.Fresh(*l.value, cred)
			if IsFreshAt(l.cfg.Now(), l.lastRefreshed, l.cfg.Window, extra) {
				fresh := *l.value
				l.inFlight = false
				l.mu.Unlock()
				return fresh, nil
			}
		}
		l.mu.Unlock()

		value, fetchErr := l.cfg.Fetch(ctx, cred)
		l.finish(ctx, value, fetchErr)
		return value, fetchErr
	})
	if err != nil {
		if cur, ok := l.Snapshot(); ok {
			return cur, &FetchError{Err: err}
		}
		return zero, &FetchError{Err: err}
	}
	return v.(T), nil
}

// Close detaches the loader. A fetch outstanding at close time runs to
// completion but its result is dropped without mutating state.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

// finish applies one fetch outcome. It runs exactly once per transport
// call, inside the single-flight window.
func (l *Loader[T]) finish(ctx context.Context, value T, err error) {
	l.mu.Lock()
	if l.closed {
		// Owner torn down while the fetch was outstanding; drop the result.
		l.mu.Unlock()
		return
	}
	l.inFlight = false
	if err != nil {
		l.mu.Unlock()
		l.cfg.Metrics.RecordCacheRefresh(ctx, l.cfg.Kind, err)
		l.cfg.Logger.Error(ctx, "cache refresh failed",
			observe.Field{Key: "cache.kind", Value: l.cfg.Kind},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return
	}

	previous := l.replaceLocked(value)
	l.mu.Unlock()

	l.cfg.Metrics.RecordCacheRefresh(ctx, l.cfg.Kind, nil)
	l.persist(ctx, value)
	if l.cfg.OnUpdate != nil {
		l.cfg.OnUpdate(previous, value)
	}
}

// Put replaces the cached value directly, persists it and fires OnUpdate.
// The profile cache uses it for explicit setCurrent semantics.
func (l *Loader[T]) Put(ctx context.Context, value T) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	previous := l.replaceLocked(value)
	l.mu.Unlock()

	l.persist(ctx, value)
	if l.cfg.OnUpdate != nil {
		l.cfg.OnUpdate(previous, value)
	}
}

// replaceLocked swaps in value and stamps the refresh time. Caller holds mu.
func (l *Loader[T]) replaceLocked(value T) (previous *T) {
	if l.value != nil {
		prev := *l.value
		previous = &prev
	}
	v := value
	l.value = &v

	refreshed := time.Time{}
	if l.cfg.RefreshedAt != nil {
		refreshed = l.cfg.RefreshedAt(value)
	}
	if refreshed.IsZero() {
		refreshed = l.cfg.Now()
	}
	l.lastRefreshed = refreshed
	return previous
}

func (l *Loader[T]) persist(ctx context.Context, value T) {
	if l.cfg.Store == nil || l.cfg.Encode == nil {
		return
	}
	data, err := l.cfg.Encode(value)
	if err != nil {
		l.cfg.Logger.Warn(ctx, "cache value not persisted",
			observe.Field{Key: "cache.kind", Value: l.cfg.Kind},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return
	}
	if err := l.cfg.Store.Write(l.cfg.StoreKey, data); err != nil {
		l.cfg.Logger.Warn(ctx, "cache value not persisted",
			observe.Field{Key: "cache.kind", Value: l.cfg.Kind},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
}
