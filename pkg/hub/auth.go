package hub

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/aussiebroadwan/atriahub/pkg/authsdk"
	"golang.org/x/oauth2"
)

// Credentials identify a user to the identity provider.
type Credentials struct {
	Email    string
	Password string

	// TOTPSecret, when set, answers an MFA step-up without prompting.
	TOTPSecret string
}

// CredentialSource supplies credentials when Initialize needs to sign in and
// none were passed.
type CredentialSource interface {
	Credentials(ctx context.Context) (*Credentials, error)
}

// CredentialSourceFunc adapts a function to CredentialSource.
type CredentialSourceFunc func(ctx context.Context) (*Credentials, error)

func (f CredentialSourceFunc) Credentials(ctx context.Context) (*Credentials, error) {
	return f(ctx)
}

// CredentialsFromEnv reads ATRIAX_EMAIL, ATRIAX_PASSWORD and the optional
// ATRIAX_TOTP_SECRET.
func CredentialsFromEnv() CredentialSource {
	return CredentialSourceFunc(func(context.Context) (*Credentials, error) {
		email, password := os.Getenv("ATRIAX_EMAIL"), os.Getenv("ATRIAX_PASSWORD")
		if email == "" || password == "" {
			return nil, errors.New("ATRIAX_EMAIL and ATRIAX_PASSWORD must both be set")
		}
		return &Credentials{
			Email:      email,
			Password:   password,
			TOTPSecret: os.Getenv("ATRIAX_TOTP_SECRET"),
		}, nil
	})
}

// MFAPrompt returns a one-time code for factor.
type MFAPrompt func(ctx context.Context, factor authsdk.Factor) (string, error)

// SignUpInput is a new account.
type SignUpInput struct {
	Email    string
	Password string
	Username string
	FullName string
}

// AuthManager signs users in and out. It keeps no state of its own: the
// session lives in the identity client's storage and is read on every call.
type AuthManager struct {
	client *authsdk.SDKClient
	source CredentialSource
	prompt MFAPrompt
	logger *slog.Logger
	now    func() time.Time
}

// NewAuthManager wraps an identity client. source and prompt may be nil.
func NewAuthManager(client *authsdk.SDKClient, source CredentialSource, prompt MFAPrompt, logger *slog.Logger) *AuthManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthManager{
		client: client,
		source: source,
		prompt: prompt,
		logger: logger,
		now:    time.Now,
	}
}

// Session returns the current session, or nil when there is none or it
// cannot be read.
func (m *AuthManager) Session(ctx context.Context) *authsdk.Session {
	session, err := m.client.GetSession(ctx)
	if err != nil {
		m.logger.DebugContext(ctx, "session query failed", "error", err)
		return nil
	}
	if !session.Valid() {
		return nil
	}
	return session
}

// InitializeAuth makes sure a session exists. An existing session is kept
// unless force is set or creds name a different user. With no creds the
// configured CredentialSource is asked.
func (m *AuthManager) InitializeAuth(ctx context.Context, creds *Credentials, force bool) error {
	session := m.Session(ctx)

	if session != nil && creds != nil {
		if strings.EqualFold(session.User.Email, creds.Email) && !force {
			m.logger.InfoContext(ctx, "already signed in", "email", creds.Email)
			return nil
		}
		force = true
	}

	if session != nil && !force {
		return nil
	}

	if creds == nil {
		if m.source == nil {
			return &AuthenticationError{Op: "initialize", Message: "no active session and no credentials supplied"}
		}

		var err error
		creds, err = m.source.Credentials(ctx)
		if err != nil {
			return &AuthenticationError{Op: "initialize", Message: "could not obtain credentials", Err: err}
		}
	}

	_, err := m.SignIn(ctx, *creds)
	return err
}

// SignIn signs in with email and password, completing a TOTP step-up when
// the account requires one.
func (m *AuthManager) SignIn(ctx context.Context, creds Credentials) (*authsdk.User, error) {
	m.logger.InfoContext(ctx, "signing in", "email", creds.Email)

	session, err := m.client.SignInWithPassword(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, &AuthenticationError{Op: "sign-in", Message: "sign-in failed, please check your credentials", Err: err}
	}
	if !session.Valid() {
		return nil, &AuthenticationError{Op: "sign-in", Message: "provider returned no session"}
	}

	if factor, ok := authsdk.NeedsMFA(session); ok {
		session, err = m.stepUp(ctx, session, factor, creds)
		if err != nil {
			// Drop the aal1 session so the next run prompts again
			_ = m.client.SignOut(ctx)
			return nil, err
		}
	}

	m.logger.InfoContext(ctx, "sign-in successful", "email", creds.Email)
	return &session.User, nil
}

func (m *AuthManager) stepUp(ctx context.Context, session *authsdk.Session, factor authsdk.Factor, creds Credentials) (*authsdk.Session, error) {
	var (
		code string
		err  error
	)
	switch {
	case creds.TOTPSecret != "":
		code, err = authsdk.TOTPCode(creds.TOTPSecret, m.now())
	case m.prompt != nil:
		code, err = m.prompt(ctx, factor)
	default:
		return nil, &AuthenticationError{Op: "mfa", Message: "account requires a one-time code and none can be obtained"}
	}
	if err != nil {
		return nil, &AuthenticationError{Op: "mfa", Message: "could not obtain one-time code", Err: err}
	}

	upgraded, err := m.client.VerifyTOTP(ctx, session, factor.ID, code)
	if err != nil {
		return nil, &AuthenticationError{Op: "mfa", Message: "one-time code rejected", Err: err}
	}

	m.logger.InfoContext(ctx, "mfa verified", "factor_id", factor.ID)
	return upgraded, nil
}

// SignUp registers a new account with {username, full_name} as user
// metadata. The provider must return a session, so accounts that need
// email confirmation fail here.
func (m *AuthManager) SignUp(ctx context.Context, in SignUpInput) (*authsdk.User, error) {
	data := map[string]any{"username": in.Username}
	if in.FullName != "" {
		data["full_name"] = in.FullName
	}

	user, session, err := m.client.SignUp(ctx, authsdk.SignUpRequest{
		Email:    in.Email,
		Password: in.Password,
		Data:     data,
	})
	if err != nil {
		return nil, &AuthenticationError{Op: "sign-up", Message: "sign-up failed", Err: err}
	}
	if user == nil || !session.Valid() {
		return nil, &AuthenticationError{Op: "sign-up", Message: "provider returned no session, confirm the email address and sign in"}
	}

	m.logger.InfoContext(ctx, "sign-up successful", "email", in.Email)
	return user, nil
}

// SignOut revokes the current session. Without a session it only warns.
func (m *AuthManager) SignOut(ctx context.Context) error {
	session := m.Session(ctx)
	if session == nil {
		m.logger.WarnContext(ctx, "no active session to sign out from")
		return nil
	}

	err := m.client.SignOut(ctx)
	if err != nil && !errors.Is(err, authsdk.ErrNoSession) {
		return &AuthenticationError{Op: "sign-out", Message: "sign-out failed", Err: err}
	}

	m.logger.InfoContext(ctx, "signed out", "email", session.User.Email)
	return nil
}

// User returns the signed-in user.
func (m *AuthManager) User(ctx context.Context) (*authsdk.User, error) {
	session := m.Session(ctx)
	if session == nil {
		return nil, ErrNoSession
	}
	return &session.User, nil
}

// Username returns the signed-in user's hub username.
func (m *AuthManager) Username(ctx context.Context) (string, error) {
	user, err := m.User(ctx)
	if err != nil {
		return "", err
	}

	name := user.Username()
	if name == "" {
		return "", &AuthenticationError{Op: "username", Message: "user metadata has no username"}
	}
	return name, nil
}

// AccessToken returns the current access token.
func (m *AuthManager) AccessToken(ctx context.Context) (string, error) {
	session := m.Session(ctx)
	if session == nil {
		return "", ErrNoSession
	}
	return session.AccessToken, nil
}

// TokenSource adapts the manager to oauth2. Every Token call reads the live
// session, so tokens refreshed or revoked elsewhere are picked up. Token uses
// ctx; TokenContext uses the context it is given, which is how the
// authenticated API client calls it.
func (m *AuthManager) TokenSource(ctx context.Context) apiclient.ContextTokenSource {
	return sessionTokenSource{ctx: ctx, auth: m}
}

type sessionTokenSource struct {
	ctx  context.Context
	auth *AuthManager
}

func (s sessionTokenSource) Token() (*oauth2.Token, error) {
	return s.TokenContext(s.ctx)
}

func (s sessionTokenSource) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	session := s.auth.Session(ctx)
	if session == nil {
		return nil, ErrNoSession
	}

	return &oauth2.Token{
		AccessToken: session.AccessToken,
		TokenType:   "Bearer",
		Expiry:      session.Expiry(),
	}, nil
}
