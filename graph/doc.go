// Package graph models Graph API requests.
//
// A Request is an immutable description of a single remote call: target
// path, parameters, verb, version, optional credential and a set of
// behavior flags controlling token usage and error-recovery eligibility.
// Constructing a Request performs no I/O; the Transport collaborator
// executes it.
package graph
