package apiclient

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

func (c *Client) GetConfigSnapshot(ctx context.Context, id uuid.UUID) (*ConfigSnapshot, error) {
	var cs ConfigSnapshot
	err := c.call(ctx, request{
		name:   "ConfigSnapshots::Get",
		method: http.MethodGet,
		path:   "/config_snapshots/" + id.String(),
	}, &cs)
	if err != nil {
		return nil, err
	}

	return &cs, nil
}

func (c *Client) DeleteConfigSnapshot(ctx context.Context, id uuid.UUID) error {
	return c.call(ctx, request{
		name:   "ConfigSnapshots::Delete",
		method: http.MethodDelete,
		path:   "/config_snapshots/" + id.String(),
		ok:     deleteStatuses,
	}, nil)
}
