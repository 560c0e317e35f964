package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// SignUp registers a new identity. When the provider confirms the account
// immediately the returned session is non-nil and has been persisted;
// otherwise only the pending user is returned.
func (c *SDKClient) SignUp(ctx context.Context, req SignUpRequest) (*User, *Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/signup", req, "")
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, parseErrorResponse(resp, body)
	}

	// Auto-confirmed projects answer with a full session, others with the bare user
	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if session.Valid() {
		if session.ExpiresAt == 0 && session.ExpiresIn > 0 {
			session.ExpiresAt = c.now().Unix() + int64(session.ExpiresIn)
		}
		if err := c.saveSession(ctx, &session); err != nil {
			return nil, nil, err
		}
		return &session.User, &session, nil
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if user.ID == "" {
		return nil, nil, fmt.Errorf("identity provider returned no user")
	}

	return &user, nil, nil
}
