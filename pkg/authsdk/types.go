package authsdk

import (
	"time"

	"github.com/aussiebroadwan/atriahub/pkg/jwtx"
)

// ============================================================================
// Session Types
// ============================================================================

// Session is the provider's token response. It is also the form persisted in
// the session store.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Valid reports whether the session carries both a user and a token.
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != "" && s.User.ID != ""
}

// Expiry returns when the access token expires. It prefers expires_at and
// falls back to the token's exp claim. The zero time means unknown.
func (s *Session) Expiry() time.Time {
	if s.ExpiresAt > 0 {
		return time.Unix(s.ExpiresAt, 0)
	}
	if claims, err := jwtx.ParseUnverified(s.AccessToken); err == nil {
		return claims.ExpiresAtTime()
	}
	return time.Time{}
}

// ============================================================================
// User Types
// ============================================================================

type User struct {
	ID           string         `json:"id"`
	Aud          string         `json:"aud,omitempty"`
	Role         string         `json:"role,omitempty"`
	Email        string         `json:"email"`
	Phone        string         `json:"phone,omitempty"`
	ConfirmedAt  *time.Time     `json:"confirmed_at,omitempty"`
	LastSignInAt *time.Time     `json:"last_sign_in_at,omitempty"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	Factors      []Factor       `json:"factors,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Username returns the username recorded in the user's metadata at sign-up.
func (u *User) Username() string {
	return jwtx.UsernameFromMetadata(u.UserMetadata)
}

// FullName returns user_metadata.full_name if present.
func (u *User) FullName() string {
	name, _ := u.UserMetadata["full_name"].(string)
	return name
}

// ============================================================================
// MFA Types
// ============================================================================

const (
	FactorTypeTOTP       = "totp"
	FactorStatusVerified = "verified"
)

type Factor struct {
	ID           string    `json:"id"`
	FriendlyName string    `json:"friendly_name,omitempty"`
	FactorType   string    `json:"factor_type"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Challenge struct {
	ID        string `json:"id"`
	Type      string `json:"type,omitempty"`
	ExpiresAt int64  `json:"expires_at"`
}

// ============================================================================
// Request Types
// ============================================================================

type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshGrantRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SignUpRequest registers a new identity. Data lands in user_metadata.
type SignUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

type verifyRequest struct {
	ChallengeID string `json:"challenge_id"`
	Code        string `json:"code"`
}

// ============================================================================
// Health Types
// ============================================================================

type HealthResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}
