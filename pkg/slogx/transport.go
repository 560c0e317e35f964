package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/atriahub/pkg/idx"
)

// RequestIDHeader is set on every outgoing request that does not already carry one.
const RequestIDHeader = "X-Request-ID"

// Transport is an http.RoundTripper that tags outgoing requests with a request
// ID and logs each round trip at debug level.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(base http.RoundTripper, logger *slog.Logger) *Transport {
	return &Transport{Base: base, Logger: logger}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	// A logger on the request context wins over the transport's own
	logger, ok := loggerFrom(req.Context())
	if !ok {
		logger = t.Logger
	}
	if logger == nil {
		logger = slog.Default()
	}

	reqID := req.Header.Get(RequestIDHeader)
	if reqID == "" {
		reqID = idx.New().String()
	}

	// RoundTrippers must not mutate the caller's request
	ctx := WithRequestID(WithContext(req.Context(), logger), reqID)
	req = req.Clone(ctx)
	req.Header.Set(RequestIDHeader, reqID)
	logger = FromContext(ctx)

	start := time.Now()
	resp, err := base.RoundTrip(req)

	attrs := []any{
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		logger.Debug("http_request_failed", append(attrs, "error", err)...)
		return nil, err
	}

	logger.Debug("http_request", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}
