package authsdk

import (
	"context"
	"fmt"
	"net/http"
)

// SignInWithPassword exchanges an email and password for a session and
// persists it.
func (c *SDKClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/token?grant_type=password",
		passwordGrantRequest{Email: email, Password: password}, "")
	if err != nil {
		return nil, err
	}

	return c.acceptSession(ctx, resp)
}

// RefreshSession trades a refresh token for a new session and persists it.
func (c *SDKClient) RefreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/token?grant_type=refresh_token",
		refreshGrantRequest{RefreshToken: refreshToken}, "")
	if err != nil {
		return nil, err
	}

	return c.acceptSession(ctx, resp)
}

// acceptSession decodes a token response, checks it is complete and stores it.
func (c *SDKClient) acceptSession(ctx context.Context, resp *http.Response) (*Session, error) {
	var session Session
	if err := decodeJSON(resp, &session, http.StatusOK); err != nil {
		return nil, err
	}

	if !session.Valid() {
		return nil, fmt.Errorf("identity provider returned an incomplete session")
	}

	if session.ExpiresAt == 0 && session.ExpiresIn > 0 {
		session.ExpiresAt = c.now().Unix() + int64(session.ExpiresIn)
	}

	if err := c.saveSession(ctx, &session); err != nil {
		return nil, err
	}

	return &session, nil
}
