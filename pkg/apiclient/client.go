package apiclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// APIPrefix is the path under the base URL that hosts the REST API.
const APIPrefix = "/api/v1"

// Client is a client for the hub REST API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client

	tokenSource oauth2.TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// ContextTokenSource is a token source that can serve a token for a given
// request context. Authenticated clients prefer it over Token so that a
// session refresh honours the caller's deadline and cancellation.
type ContextTokenSource interface {
	oauth2.TokenSource
	TokenContext(ctx context.Context) (*oauth2.Token, error)
}

// WithTokenSource makes the client authenticated. ts is consulted on every
// request and must not cache tokens beyond their validity.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokenSource = ts }
}

// NewClient creates a client for the API served at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/") + APIPrefix,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.tokenSource != nil {
		// Bare oauth2.Transport rather than oauth2.NewClient: NewClient wraps
		// the source in a ReuseTokenSource, and the bearer must track the live session.
		hc := *c.HTTPClient
		if cts, ok := c.tokenSource.(ContextTokenSource); ok {
			hc.Transport = &requestTokenTransport{source: cts, base: hc.Transport}
		} else {
			hc.Transport = &oauth2.Transport{Source: c.tokenSource, Base: hc.Transport}
		}
		c.HTTPClient = &hc
	}

	return c
}

// Authenticated reports whether requests carry a bearer token.
func (c *Client) Authenticated() bool {
	return c.tokenSource != nil
}

// requestTokenTransport injects the bearer through oauth2.Transport, with
// the token fetched under each request's own context.
type requestTokenTransport struct {
	source ContextTokenSource
	base   http.RoundTripper
}

func (t *requestTokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ot := &oauth2.Transport{
		Source: boundTokenSource{ctx: req.Context(), source: t.source},
		Base:   t.base,
	}
	return ot.RoundTrip(req)
}

type boundTokenSource struct {
	ctx    context.Context
	source ContextTokenSource
}

func (b boundTokenSource) Token() (*oauth2.Token, error) {
	return b.source.TokenContext(b.ctx)
}
