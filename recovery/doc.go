// Package recovery retries Graph requests that failed for transient or
// throttling reasons. A request flagged with FlagDisableErrorRecovery is
// executed exactly once; everything else gets capped exponential backoff
// with jitter. Errors without a known remedy are never retried.
package recovery
