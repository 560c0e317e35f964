package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

func (c *Client) GetModel(ctx context.Context, id uuid.UUID) (*Model, error) {
	var m Model
	err := c.call(ctx, request{
		name:   "Models::Get",
		method: http.MethodGet,
		path:   "/models/" + id.String(),
	}, &m)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// FindModel looks a model up by its natural key.
func (c *Client) FindModel(ctx context.Context, username, name string) (*Model, error) {
	var m Model
	err := c.call(ctx, request{
		name:   "Models::FindOne",
		method: http.MethodGet,
		path:   "/models/find_one",
		query:  url.Values{"username": {username}, "name": {name}},
	}, &m)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (c *Client) CreateModel(ctx context.Context, body ModelCreate) (*Model, error) {
	var m Model
	err := c.call(ctx, request{
		name:   "Models::Create",
		method: http.MethodPost,
		path:   "/models",
		body:   body,
	}, &m)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (c *Client) DeleteModel(ctx context.Context, id uuid.UUID) error {
	return c.call(ctx, request{
		name:   "Models::Delete",
		method: http.MethodDelete,
		path:   "/models/" + id.String(),
		ok:     deleteStatuses,
	}, nil)
}
