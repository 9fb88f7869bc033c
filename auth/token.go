package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the claims carried by an OIDC-style authentication token.
type TokenClaims struct {
	jwt.RegisteredClaims

	Name       string `json:"name,omitempty"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Picture    string `json:"picture,omitempty"`
}

// FromAuthenticationToken parses and validates an OIDC-style authentication
// token and derives a Credential from its claims. The sub claim becomes the
// owning identity; aud must match appID. keyFunc resolves the signing key.
func FromAuthenticationToken(tokenString, appID string, keyFunc jwt.Keyfunc) (*Credential, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc,
		jwt.WithAudience(appID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, ErrAudienceMismatch
		default:
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
	}
	if !token.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrTokenMalformed)
	}

	cred := &Credential{
		Token:  tokenString,
		UserID: claims.Subject,
		AppID:  appID,
	}
	if claims.ExpiresAt != nil {
		cred.Expires = claims.ExpiresAt.Time
	}
	return cred, nil
}
