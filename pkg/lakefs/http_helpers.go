package lakefs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
)

// url builds a REST URL from path segments, escaping each one.
func (c *Client) url(query url.Values, segments ...string) string {
	u := c.BaseURL + APIPrefix
	for _, s := range segments {
		u += "/" + url.PathEscape(s)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doRequest performs an authenticated REST call. The response body is
// returned when the status is one of expected; otherwise an *APIError.
func (c *Client) doRequest(
	ctx context.Context,
	op, method, target string,
	body any,
	expected ...int,
) ([]byte, error) {
	user, pass, err := c.basicAuth()
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("lakefs %s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("lakefs %s: failed to create request: %w", op, err)
	}

	req.SetBasicAuth(user, pass)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("apiKey", c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lakefs %s: failed to send request: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("lakefs %s: failed to read response body: %w", op, err)
	}

	if !slices.Contains(expected, resp.StatusCode) {
		return nil, parseErrorResponse(op, resp.StatusCode, respBody)
	}

	return respBody, nil
}

// decodeJSON runs doRequest and decodes the body into target.
func (c *Client) decodeJSON(
	ctx context.Context,
	op, method, target string,
	body, out any,
	expected ...int,
) error {
	respBody, err := c.doRequest(ctx, op, method, target, body, expected...)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("lakefs %s: failed to decode response: %w", op, err)
	}

	return nil
}
