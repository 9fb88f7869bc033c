// Package auth provides access credentials for the Graph client.
//
// A Credential is an immutable value carrying the access token and the
// identity that owns it. Providers hand out the current credential;
// NotifyingProvider additionally posts a change notification when the
// credential is replaced, which drives automatic profile reloads.
package auth
