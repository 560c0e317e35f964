package apiclient

import (
	"context"
	"net/http"
)

// HealthCheck checks the backend is reachable. It needs no authentication.
func (c *Client) HealthCheck(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	err := c.call(ctx, request{
		name:   "Health::Check",
		method: http.MethodGet,
		path:   "/health",
	}, &health)
	if err != nil {
		return nil, err
	}

	return &health, nil
}
