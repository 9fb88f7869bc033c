package cache

import "time"

// Freshness windows per cache kind.
const (
	// GatekeeperWindow is how long fetched feature flags stay fresh.
	GatekeeperWindow = time.Hour

	// ProfileWindow is how long a fetched user profile stays fresh.
	ProfileWindow = 24 * time.Hour
)

// IsFresh reports whether a value refreshed at lastRefreshed is still
// usable without a refetch. extra is the cache-specific condition layered
// on top of pure time freshness. Staleness, the negation, is the sole
// trigger for issuing a fetch.
func IsFresh(lastRefreshed time.Time, window time.Duration, extra bool) bool {
	return IsFreshAt(time.Now(), lastRefreshed, window, extra)
}

// IsFreshAt is IsFresh evaluated at an explicit instant.
func IsFreshAt(now, lastRefreshed time.Time, window time.Duration, extra bool) bool {
	if lastRefreshed.IsZero() {
		return false
	}
	return now.Sub(lastRefreshed) < window && extra
}
