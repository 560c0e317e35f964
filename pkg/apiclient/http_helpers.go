package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
)

// request describes one API call.
type request struct {
	name   string
	method string
	path   string
	query  url.Values

	// body is encoded as JSON unless raw is set.
	body        any
	raw         io.Reader
	contentType string

	// ok lists accepted statuses, 200 when empty.
	ok []int
}

// url builds a complete URL by appending the path to the base URL.
func (c *Client) url(path string, query url.Values) string {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do performs r and returns the response body. Every failure is a *ResponseError.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	reader := r.raw
	contentType := r.contentType
	if reader == nil && r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return nil, transportError(r.name, fmt.Errorf("failed to encode request: %w", err))
		}
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.url(r.path, r.query), reader)
	if err != nil {
		return nil, transportError(r.name, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("apiKey", c.APIKey)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, transportError(r.name, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(r.name, fmt.Errorf("failed to read response body: %w", err))
	}

	ok := r.ok
	if len(ok) == 0 {
		ok = []int{http.StatusOK}
	}
	if !slices.Contains(ok, resp.StatusCode) {
		return nil, statusError(r.name, resp.StatusCode, body)
	}

	return body, nil
}

// call performs r and decodes a JSON response into target (skipped when nil).
func (c *Client) call(ctx context.Context, r request, target any) error {
	body, err := c.do(ctx, r)
	if err != nil {
		return err
	}

	if target == nil {
		return nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return transportError(r.name, errors.New("empty response body"))
	}

	if err := json.Unmarshal(body, target); err != nil {
		return transportError(r.name, fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}

// deleteStatuses are accepted for DELETE endpoints.
var deleteStatuses = []int{http.StatusOK, http.StatusNoContent}
