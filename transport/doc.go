// Package transport is the default HTTP implementation of graph.Transport.
//
// It encodes a request as query, form or multipart depending on verb and
// attachments, injects the access token, decodes the backend's error
// envelope and reports per-request telemetry. Error recovery and
// credential invalidation honor the request's behavior flags.
package transport
