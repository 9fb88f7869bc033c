// Package bridge builds secure inter-process request URLs.
//
// A Request describes one call into a companion application; URLBuilder
// validates the host's URL-scheme registration and produces a
// fully-qualified URL carrying the shared-secret and application-identifier
// parameters. Every validation failure is terminal: it reflects static
// host misconfiguration, never transient state.
package bridge
