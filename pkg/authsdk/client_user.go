package authsdk

import (
	"context"
	"net/http"
)

// GetUser fetches the user that owns accessToken.
func (c *SDKClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/user", nil, accessToken)
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}

	return &user, nil
}
