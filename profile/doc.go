// Package profile synchronizes the current user's profile.
//
// The cached profile is fresh for a day, but only while its identity
// matches the credential in use: a credential owned by someone else forces
// a refetch regardless of age. Replacing the profile posts a change
// notification carrying the previous value when one existed.
package profile
