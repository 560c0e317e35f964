package authsdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/atriahub/pkg/secretstore"
)

// GetSession returns the stored session, refreshing it first when the access
// token is within RefreshLeeway of expiring. It returns (nil, nil) when no
// session is stored. A refresh the provider rejects clears the stored session.
func (c *SDKClient) GetSession(ctx context.Context) (*Session, error) {
	session, err := c.loadSession(ctx)
	if err != nil || session == nil {
		return nil, err
	}

	expiry := session.Expiry()
	if expiry.IsZero() || c.now().Add(c.RefreshLeeway).Before(expiry) {
		return session, nil
	}

	if session.RefreshToken == "" {
		_ = c.removeSession(ctx)
		return nil, nil
	}

	refreshed, err := c.RefreshSession(ctx, session.RefreshToken)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) && authErr.IsClientError() {
			_ = c.removeSession(ctx)
		}
		return nil, fmt.Errorf("refresh session: %w", err)
	}

	return refreshed, nil
}

// SignOut revokes the stored session with the provider and removes it
// locally. It returns ErrNoSession when nothing is stored. The local copy is
// removed even if the provider call fails.
func (c *SDKClient) SignOut(ctx context.Context) error {
	session, err := c.loadSession(ctx)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrNoSession
	}

	defer func() { _ = c.removeSession(ctx) }()

	resp, err := c.doRequest(ctx, http.MethodPost, "/logout?scope=local", nil, session.AccessToken)
	if err != nil {
		return err
	}

	err = checkStatusNoContent(resp)

	// A session the provider no longer knows is already signed out
	var authErr *AuthError
	if errors.As(err, &authErr) && (authErr.StatusCode == http.StatusUnauthorized || authErr.StatusCode == http.StatusNotFound) {
		return nil
	}

	return err
}

func (c *SDKClient) loadSession(ctx context.Context) (*Session, error) {
	raw, err := c.Storage.GetItem(ctx, c.StorageKey)
	if errors.Is(err, secretstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil || !session.Valid() {
		// Never hand out a partial session
		_ = c.removeSession(ctx)
		return nil, nil
	}

	return &session, nil
}

func (c *SDKClient) saveSession(ctx context.Context, session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if err := c.Storage.SetItem(ctx, c.StorageKey, string(raw)); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (c *SDKClient) removeSession(ctx context.Context) error {
	return c.Storage.RemoveItem(ctx, c.StorageKey)
}
