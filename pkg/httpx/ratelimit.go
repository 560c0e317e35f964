package httpx

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/aussiebroadwan/atriahub/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines the client-side rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window.
	// Zero disables limiting.
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// Enabled reports whether the config limits anything.
func (c RateLimitConfig) Enabled() bool {
	return c.RequestsPerWindow > 0 && c.Window > 0
}

// ParseRateLimitFromEnv reads rate limit configuration from environment variables.
// Environment variables follow the pattern: {prefix}_RATELIMIT_{field}
// For example: ATRIAX_RATELIMIT_REQUESTS, ATRIAX_RATELIMIT_WINDOW_SEC, ATRIAX_RATELIMIT_BURST
func ParseRateLimitFromEnv(prefix string, defaultConfig RateLimitConfig) RateLimitConfig {
	config := defaultConfig

	if val := os.Getenv(prefix + "_RATELIMIT_REQUESTS"); val != "" {
		if requests, err := strconv.Atoi(val); err == nil && requests > 0 {
			config.RequestsPerWindow = requests
		}
	}

	if val := os.Getenv(prefix + "_RATELIMIT_WINDOW_SEC"); val != "" {
		if windowSec, err := strconv.Atoi(val); err == nil && windowSec > 0 {
			config.Window = time.Duration(windowSec) * time.Second
		}
	}

	if val := os.Getenv(prefix + "_RATELIMIT_BURST"); val != "" {
		if burst, err := strconv.Atoi(val); err == nil && burst > 0 {
			config.Burst = burst
		}
	}

	return config
}

// rateLimiter manages one limiter per destination host.
type rateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newRateLimiter(config RateLimitConfig) *rateLimiter {
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}

	return &rateLimiter{
		rate:  rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds()),
		burst: burst,
	}
}

func (rl *rateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	actual, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.rate, rl.burst))
	return actual.(*rate.Limiter)
}

// RateLimitTransport delays outgoing requests so that each destination host
// sees at most the configured rate. Waiting honours the request context.
type RateLimitTransport struct {
	Base http.RoundTripper

	limiter *rateLimiter
}

// NewRateLimitTransport wraps base. A disabled config returns base unchanged.
func NewRateLimitTransport(base http.RoundTripper, config RateLimitConfig) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if !config.Enabled() {
		return base
	}

	return &RateLimitTransport{Base: base, limiter: newRateLimiter(config)}
}

func (t *RateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.getLimiter(req.URL.Host).Wait(req.Context()); err != nil {
		slogx.FromContext(req.Context()).Debug("rate_limit_wait_failed", "host", req.URL.Host, "error", err)
		return nil, err
	}
	return t.Base.RoundTrip(req)
}
