// Package httpx builds the HTTP clients shared by the hub SDK packages and
// the JSON helpers used by the in-repo fake servers.
package httpx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/atriahub/pkg/slogx"
)

// ClientConfig configures NewClient.
type ClientConfig struct {
	Timeout   time.Duration
	RateLimit RateLimitConfig
	Logger    *slog.Logger

	// Base is the innermost transport, http.DefaultTransport when nil.
	Base http.RoundTripper
}

// NewClient returns an *http.Client whose transport logs every round trip,
// tags it with a request ID and optionally rate limits it.
func NewClient(cfg ClientConfig) *http.Client {
	transport := NewRateLimitTransport(cfg.Base, cfg.RateLimit)

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: slogx.NewTransport(transport, cfg.Logger),
	}
}
