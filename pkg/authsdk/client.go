package authsdk

import (
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/atriahub/pkg/secretstore"
)

// DefaultStorageKey is the secret-store key holding the serialized session.
const DefaultStorageKey = "auth.session"

// SDKClient is a client for the identity provider.
type SDKClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client

	// Storage persists the session between calls and processes.
	Storage    secretstore.Store
	StorageKey string

	// RefreshLeeway refreshes sessions this long before the token expires.
	RefreshLeeway time.Duration

	now func() time.Time
}

// Option configures an SDKClient.
type Option func(*SDKClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *SDKClient) { c.HTTPClient = hc }
}

// WithStorage sets the session store. The default is in-memory.
func WithStorage(s secretstore.Store) Option {
	return func(c *SDKClient) { c.Storage = s }
}

// WithStorageKey overrides DefaultStorageKey.
func WithStorageKey(key string) Option {
	return func(c *SDKClient) { c.StorageKey = key }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *SDKClient) { c.now = now }
}

// NewSDKClient creates a client for the identity API rooted at baseURL
// (for example https://hub.example.com/auth/v1).
func NewSDKClient(baseURL, apiKey string, opts ...Option) *SDKClient {
	c := &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Storage:       secretstore.NewMemory(),
		StorageKey:    DefaultStorageKey,
		RefreshLeeway: 30 * time.Second,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}
