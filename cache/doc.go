// Package cache provides staleness-gated, single-flight value caches.
//
// A Loader owns one remotely-sourced value. EnsureFresh returns the cached
// value without I/O while it is fresh, and otherwise coordinates at most
// one concurrent fetch regardless of caller count; callers arriving during
// the in-flight window share the same completion. Values are mirrored into
// a persistent Store so cold starts can seed state before the first
// refresh completes.
package cache
