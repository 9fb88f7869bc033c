// Package observe provides telemetry for the Graph client layer.
//
// It bundles OpenTelemetry tracing and metrics with a JSON structured
// logger behind a single Observer, configured once by the host and passed
// to the transport and cache components. Token-bearing fields are redacted
// from log output.
package observe
