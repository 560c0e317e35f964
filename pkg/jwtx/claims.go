// Package jwtx reads the claims carried by identity-provider access tokens.
//
// Tokens are parsed without signature verification: the SDK is a client and
// only needs the claims to decide when to refresh and who is signed in. The
// backend remains responsible for verifying every token it receives.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed = errors.New("jwtx: malformed token")
	ErrExpired   = errors.New("jwtx: token expired")
)

// Claims are the GoTrue access-token claims the SDK cares about.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`

	// SessionID identifies the provider-side session.
	SessionID string `json:"session_id,omitempty"`

	// AAL is the authenticator assurance level, "aal1" or "aal2".
	AAL string `json:"aal,omitempty"`

	// AMR lists the methods used, e.g. [{"method":"password"},{"method":"totp"}].
	AMR []AMREntry `json:"amr,omitempty"`

	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

type AMREntry struct {
	Method    string `json:"method"`
	Timestamp int64  `json:"timestamp"`
}

// ParseUnverified decodes the claims of token without checking its signature.
func ParseUnverified(token string) (*Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	return &claims, nil
}

// ExpiresAtTime returns the exp claim or the zero time if absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// ValidateExpiryWithLeeway reports ErrExpired if the token expires within leeway.
func (c *Claims) ValidateExpiryWithLeeway(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && !now.Add(leeway).Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}

// Username returns user_metadata.username, falling back to the nested
// user_metadata.profile.username some deployments write.
func (c *Claims) Username() string {
	return usernameFromMetadata(c.UserMetadata)
}

func usernameFromMetadata(md map[string]any) string {
	if md == nil {
		return ""
	}
	if u, ok := md["username"].(string); ok && u != "" {
		return u
	}
	if profile, ok := md["profile"].(map[string]any); ok {
		if u, ok := profile["username"].(string); ok {
			return u
		}
	}
	return ""
}

// UsernameFromMetadata exposes the lookup for user objects that carry the
// same metadata outside a token.
func UsernameFromMetadata(md map[string]any) string {
	return usernameFromMetadata(md)
}
