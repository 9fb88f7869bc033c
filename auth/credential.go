package auth

import "time"

// Credential is an immutable access credential for the Graph API.
//
// Contract:
// - Ownership: never mutate a Credential after construction; replace it.
// - Concurrency: safe to share across goroutines by construction.
type Credential struct {
	// Token is the raw access token string.
	Token string

	// UserID is the identity that owns this credential.
	UserID string

	// AppID is the application the credential was issued for.
	AppID string

	// Expires is when the token expires. Zero means no known expiry.
	Expires time.Time

	// Permissions are the granted permission names.
	Permissions []string
}

// OwnerID returns the identity owning this credential. The profile cache
// uses it for its identity-match rule.
func (c *Credential) OwnerID() string {
	if c == nil {
		return ""
	}
	return c.UserID
}

// IsExpired reports whether the credential's token has expired.
func (c *Credential) IsExpired() bool {
	if c == nil {
		return true
	}
	if c.Expires.IsZero() {
		return false
	}
	return time.Now().After(c.Expires)
}

// HasPermission checks if the credential carries a specific permission.
func (c *Credential) HasPermission(perm string) bool {
	if c == nil {
		return false
	}
	for _, p := range c.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
