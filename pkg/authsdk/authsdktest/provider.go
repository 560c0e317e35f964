// Package authsdktest provides an in-process fake of the identity API for
// tests of code built on authsdk.
package authsdktest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/atriahub/pkg/authsdk"
	"github.com/aussiebroadwan/atriahub/pkg/httpx"
	"github.com/aussiebroadwan/atriahub/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
)

// APIKey is the anonymous key the fake expects in the apikey header.
const APIKey = "test-anon-key"

var signingKey = []byte("authsdktest-signing-key")

type account struct {
	user       authsdk.User
	password   string
	totpSecret string
}

// Provider is an http.Handler serving the identity endpoints relative to the
// auth root (mount it under /auth/v1 with http.StripPrefix).
type Provider struct {
	// AutoConfirm makes sign-up return a session instead of a pending user.
	AutoConfirm bool
	// TokenTTL is the lifetime of issued access tokens.
	TokenTTL time.Duration
	// OnRequest, when set, observes every request before it is handled.
	OnRequest func(r *http.Request)

	mu       sync.Mutex
	accounts map[string]*account // by email
	tokens   map[string]string   // access token -> email
	refresh  map[string]string   // refresh token -> email
	logouts  int
}

func NewProvider() *Provider {
	return &Provider{
		AutoConfirm: true,
		TokenTTL:    time.Hour,
		accounts:    make(map[string]*account),
		tokens:      make(map[string]string),
		refresh:     make(map[string]string),
	}
}

// NewServer starts an httptest server with the provider mounted at /auth/v1
// and returns the provider and the auth root URL.
func NewServer(t testing.TB) (*Provider, string) {
	t.Helper()

	p := NewProvider()
	mux := http.NewServeMux()
	mux.Handle("/auth/v1/", http.StripPrefix("/auth/v1", p))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return p, srv.URL + "/auth/v1"
}

// AddUser registers a confirmed account.
func (p *Provider) AddUser(email, password, username string) authsdk.User {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.addUserLocked(email, password, map[string]any{"username": username})
}

func (p *Provider) addUserLocked(email, password string, metadata map[string]any) authsdk.User {
	now := time.Now().UTC()
	u := authsdk.User{
		ID:           uuid.NewString(),
		Aud:          "authenticated",
		Role:         "authenticated",
		Email:        email,
		UserMetadata: metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p.accounts[email] = &account{user: u, password: password}
	return u
}

// EnableTOTP attaches a verified TOTP factor with secret to the account and
// returns the factor ID.
func (p *Provider) EnableTOTP(email, secret string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	acc := p.accounts[email]
	factor := authsdk.Factor{
		ID:         uuid.NewString(),
		FactorType: authsdk.FactorTypeTOTP,
		Status:     authsdk.FactorStatusVerified,
	}
	acc.user.Factors = append(acc.user.Factors, factor)
	acc.totpSecret = secret
	return factor.ID
}

// RevokeAll forgets every issued token, as if the provider restarted.
func (p *Provider) RevokeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tokens = make(map[string]string)
	p.refresh = make(map[string]string)
}

// Logouts returns how many successful logout calls were served.
func (p *Provider) Logouts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.logouts
}

func (p *Provider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.OnRequest != nil {
		p.OnRequest(r)
	}

	if r.Header.Get("apikey") != APIKey {
		writeError(w, http.StatusUnauthorized, "no_api_key", "No API key found in request")
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/health":
		httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{Name: "GoTrue", Version: "test"})
	case r.Method == http.MethodPost && r.URL.Path == "/token":
		p.handleToken(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/signup":
		p.handleSignUp(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/logout":
		p.handleLogout(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/user":
		p.handleUser(w, r)
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/factors/"):
		p.handleFactor(w, r)
	default:
		writeError(w, http.StatusNotFound, "not_found", "no route")
	}
}

func (p *Provider) handleToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email        string `json:"email"`
		Password     string `json:"password"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch r.URL.Query().Get("grant_type") {
	case "password":
		acc, ok := p.accounts[body.Email]
		if !ok || acc.password != body.Password {
			writeError(w, http.StatusBadRequest, authsdk.ErrorCodeInvalidCredentials, "Invalid login credentials")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, p.issueLocked(acc, "aal1"))

	case "refresh_token":
		email, ok := p.refresh[body.RefreshToken]
		if !ok {
			writeError(w, http.StatusBadRequest, "refresh_token_not_found", "Invalid Refresh Token: Refresh Token Not Found")
			return
		}
		delete(p.refresh, body.RefreshToken)
		httpx.WriteJSON(w, http.StatusOK, p.issueLocked(p.accounts[email], "aal1"))

	default:
		writeError(w, http.StatusBadRequest, "unsupported_grant_type", "unsupported grant_type")
	}
}

func (p *Provider) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[req.Email]; exists {
		writeError(w, http.StatusUnprocessableEntity, authsdk.ErrorCodeUserAlreadyExists, "User already registered")
		return
	}

	p.addUserLocked(req.Email, req.Password, req.Data)
	acc := p.accounts[req.Email]
	if p.AutoConfirm {
		httpx.WriteJSON(w, http.StatusOK, p.issueLocked(acc, "aal1"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, acc.user)
}

func (p *Provider) handleLogout(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	token := httpx.BearerToken(r)
	if _, ok := p.tokens[token]; !ok {
		writeError(w, http.StatusUnauthorized, "bad_jwt", "invalid JWT")
		return
	}
	delete(p.tokens, token)
	p.logouts++
	w.WriteHeader(http.StatusNoContent)
}

func (p *Provider) handleUser(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.tokens[httpx.BearerToken(r)]
	if !ok {
		writeError(w, http.StatusUnauthorized, "bad_jwt", "invalid JWT")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p.accounts[email].user)
}

func (p *Provider) handleFactor(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	email, ok := p.tokens[httpx.BearerToken(r)]
	if !ok {
		writeError(w, http.StatusUnauthorized, "bad_jwt", "invalid JWT")
		return
	}
	acc := p.accounts[email]

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/factors/"), "/")
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not_found", "no route")
		return
	}

	switch parts[1] {
	case "challenge":
		httpx.WriteJSON(w, http.StatusOK, authsdk.Challenge{
			ID:        uuid.NewString(),
			Type:      authsdk.FactorTypeTOTP,
			ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
		})
	case "verify":
		var body struct {
			Code string `json:"code"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if acc.totpSecret == "" || !totp.Validate(body.Code, acc.totpSecret) {
			writeError(w, http.StatusUnprocessableEntity, authsdk.ErrorCodeMFAVerifyFailed, "Invalid TOTP code entered")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, p.issueLocked(acc, "aal2"))
	default:
		writeError(w, http.StatusNotFound, "not_found", "no route")
	}
}

// issueLocked mints a session for acc at the given assurance level.
func (p *Provider) issueLocked(acc *account, aal string) authsdk.Session {
	now := time.Now()
	exp := now.Add(p.TokenTTL)

	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.user.ID,
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			// ID keeps tokens unique when issued within the same second
			ID: uuid.NewString(),
		},
		Email:        acc.user.Email,
		Role:         "authenticated",
		SessionID:    uuid.NewString(),
		AAL:          aal,
		UserMetadata: acc.user.UserMetadata,
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(fmt.Sprintf("authsdktest: sign token: %v", err))
	}
	refresh := uuid.NewString()

	p.tokens[access] = acc.user.Email
	p.refresh[refresh] = acc.user.Email

	return authsdk.Session{
		AccessToken:  access,
		TokenType:    "bearer",
		ExpiresIn:    int(p.TokenTTL.Seconds()),
		ExpiresAt:    exp.Unix(),
		RefreshToken: refresh,
		User:         acc.user,
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	httpx.WriteJSON(w, status, map[string]any{"code": status, "error_code": code, "msg": msg})
}
