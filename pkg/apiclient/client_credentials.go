package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

// GetCredentials looks up storage credentials by access key ID. The secret is
// not returned. A 404 means the key is unknown or revoked.
func (c *Client) GetCredentials(ctx context.Context, accessKeyID string) (*Credentials, error) {
	var creds Credentials
	err := c.call(ctx, request{
		name:   "Credentials::Get",
		method: http.MethodGet,
		path:   "/credentials/" + url.PathEscape(accessKeyID),
	}, &creds)
	if err != nil {
		return nil, err
	}

	return &creds, nil
}

// CreateCredentials mints a new storage credential pair for the caller.
func (c *Client) CreateCredentials(ctx context.Context) (*Credentials, error) {
	var creds Credentials
	err := c.call(ctx, request{
		name:   "Credentials::Create",
		method: http.MethodPost,
		path:   "/credentials",
	}, &creds)
	if err != nil {
		return nil, err
	}

	return &creds, nil
}
