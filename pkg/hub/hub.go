package hub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/aussiebroadwan/atriahub/pkg/authsdk"
	"github.com/aussiebroadwan/atriahub/pkg/httpx"
	"github.com/aussiebroadwan/atriahub/pkg/lakefs"
	"github.com/aussiebroadwan/atriahub/pkg/secretstore"
)

// Hub is the entry point of the SDK. Build it with New, then call
// Initialize before using resource APIs. Initialize must not run
// concurrently with itself; everything else is safe for concurrent use.
type Hub struct {
	cfg    Config
	logger *slog.Logger

	secrets secretstore.Store
	closer  io.Closer

	identity *authsdk.SDKClient
	auth     *AuthManager
	anon     *apiclient.Client
	authed   *apiclient.Client
	storage  Storage
	broker   *CredentialsBroker
}

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	secrets    secretstore.Store
	source     CredentialSource
	prompt     MFAPrompt
	storage    Storage
}

// Option configures New.
type Option func(*options)

// WithHTTPClient replaces the HTTP client built from Config.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithLogger sets the logger, slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSecretStore overrides the store selected by Config.SecretBackend.
func WithSecretStore(s secretstore.Store) Option {
	return func(o *options) { o.secrets = s }
}

// WithCredentialSource is asked for credentials when a sign-in is needed
// and Initialize got none.
func WithCredentialSource(src CredentialSource) Option {
	return func(o *options) { o.source = src }
}

// WithMFAPrompt is asked for a one-time code when the account requires MFA
// and the credentials carry no TOTP secret.
func WithMFAPrompt(p MFAPrompt) Option {
	return func(o *options) { o.prompt = p }
}

// WithStorage replaces the lakeFS client.
func WithStorage(s Storage) Option {
	return func(o *options) { o.storage = s }
}

// New wires the SDK clients. It makes no network calls.
func New(cfg Config, opts ...Option) (*Hub, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid hub config: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	hc := o.httpClient
	if hc == nil {
		hc = httpx.NewClient(httpx.ClientConfig{
			Timeout:   cfg.HTTPTimeout,
			RateLimit: cfg.RateLimit,
			Logger:    logger,
		})
	}

	h := &Hub{cfg: cfg, logger: logger, secrets: o.secrets}

	if h.secrets == nil {
		store, closer, err := OpenSecretStore(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		h.secrets, h.closer = store, closer
	}

	h.identity = authsdk.NewSDKClient(cfg.AuthURL(), cfg.AnonKey,
		authsdk.WithHTTPClient(hc),
		authsdk.WithStorage(h.secrets),
	)
	h.auth = NewAuthManager(h.identity, o.source, o.prompt, logger)

	h.anon = apiclient.NewClient(cfg.BaseURL, cfg.AnonKey, apiclient.WithHTTPClient(hc))
	h.authed = apiclient.NewClient(cfg.BaseURL, cfg.AnonKey,
		apiclient.WithHTTPClient(hc),
		// Requests fetch their bearer under their own context
		apiclient.WithTokenSource(h.auth.TokenSource(context.Background())),
	)

	h.storage = o.storage
	if h.storage == nil {
		// Transfers are bounded by their context, not the API timeout
		storageHTTP := *hc
		storageHTTP.Timeout = 0
		h.storage = lakefs.NewClient(cfg.StorageURL,
			lakefs.WithHTTPClient(&storageHTTP),
			lakefs.WithAPIKey(cfg.AnonKey),
			lakefs.WithRegion(cfg.StorageRegion),
		)
	}

	h.broker = &CredentialsBroker{Store: h.secrets, API: h.authed, Logger: logger}

	return h, nil
}

// InitializeInput controls Initialize.
type InitializeInput struct {
	// Credentials to sign in with. Nil keeps an existing session or asks
	// the CredentialSource.
	Credentials *Credentials
	ForceSignIn bool
}

// Ready is the state of an initialized hub.
type Ready struct {
	User        *authsdk.User
	Credentials StorageCredentials
	Headers     http.Header

	storageURL string
}

// StorageOptions is the storage configuration for S3-compatible tooling.
func (r *Ready) StorageOptions() map[string]string {
	return StorageOptions(r.storageURL, r.Credentials)
}

// Initialize checks the backend is reachable, authenticates, obtains storage
// credentials and hands them to the storage client, in that order. It can
// be re-run; a failed step leaves earlier steps in place.
func (h *Hub) Initialize(ctx context.Context, in InitializeInput) (*Ready, error) {
	if err := h.HealthCheck(ctx); err != nil {
		h.logger.ErrorContext(ctx, "atria hub unreachable", "url", h.cfg.BaseURL, "error", err)
		return nil, err
	}

	if err := h.auth.InitializeAuth(ctx, in.Credentials, in.ForceSignIn); err != nil {
		return nil, err
	}

	headers, err := h.AuthHeaders(ctx)
	if err != nil {
		return nil, err
	}

	creds, err := h.broker.GetOrCreate(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get or create storage credentials", "error", err)
		return nil, err
	}

	h.storage.SetCredentials(creds.AccessKeyID, creds.SecretAccessKey)

	user, err := h.auth.User(ctx)
	if err != nil {
		return nil, err
	}

	return &Ready{
		User:        user,
		Credentials: creds,
		Headers:     headers,
		storageURL:  h.cfg.StorageURL,
	}, nil
}

// HealthCheck pings the backend anonymously.
func (h *Hub) HealthCheck(ctx context.Context) error {
	if _, err := h.anon.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

// AuthHeaders returns the bearer header for the current session.
func (h *Hub) AuthHeaders(ctx context.Context) (http.Header, error) {
	token, err := h.auth.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	headers := make(http.Header)
	headers.Set("Authorization", "Bearer "+token)
	return headers, nil
}

// SignOut revokes the session. With revokeStorage the stored storage
// credentials are forgotten too.
func (h *Hub) SignOut(ctx context.Context, revokeStorage bool) error {
	err := h.auth.SignOut(ctx)
	if revokeStorage {
		err = errors.Join(err, h.broker.Revoke(ctx))
	}
	return err
}

// Close releases the secret store.
func (h *Hub) Close() error {
	if h.closer == nil {
		return nil
	}
	return h.closer.Close()
}

func (h *Hub) Config() Config                         { return h.cfg }
func (h *Hub) Auth() *AuthManager                     { return h.auth }
func (h *Hub) Identity() *authsdk.SDKClient           { return h.identity }
func (h *Hub) AnonymousClient() *apiclient.Client     { return h.anon }
func (h *Hub) AuthenticatedClient() *apiclient.Client { return h.authed }
func (h *Hub) Storage() Storage                       { return h.storage }
func (h *Hub) Broker() *CredentialsBroker             { return h.broker }

func (h *Hub) Datasets() *Datasets               { return &Datasets{h: h} }
func (h *Hub) Models() *Models                   { return &Models{h: h} }
func (h *Hub) Tasks() *Tasks                     { return &Tasks{api: h.authed} }
func (h *Hub) ConfigSnapshots() *ConfigSnapshots { return &ConfigSnapshots{api: h.authed} }
func (h *Hub) Evaluations() *Evaluations         { return &Evaluations{api: h.authed} }
