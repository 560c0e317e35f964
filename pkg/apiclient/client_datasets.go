package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

func (c *Client) GetDataset(ctx context.Context, id uuid.UUID) (*Dataset, error) {
	var ds Dataset
	err := c.call(ctx, request{
		name:   "Datasets::Get",
		method: http.MethodGet,
		path:   "/datasets/" + id.String(),
	}, &ds)
	if err != nil {
		return nil, err
	}

	return &ds, nil
}

// FindDataset looks a dataset up by its natural key.
func (c *Client) FindDataset(ctx context.Context, username, name string) (*Dataset, error) {
	var ds Dataset
	err := c.call(ctx, request{
		name:   "Datasets::FindOne",
		method: http.MethodGet,
		path:   "/datasets/find_one",
		query:  url.Values{"username": {username}, "name": {name}},
	}, &ds)
	if err != nil {
		return nil, err
	}

	return &ds, nil
}

func (c *Client) CreateDataset(ctx context.Context, body DatasetCreate) (*Dataset, error) {
	var ds Dataset
	err := c.call(ctx, request{
		name:   "Datasets::Create",
		method: http.MethodPost,
		path:   "/datasets",
		body:   body,
	}, &ds)
	if err != nil {
		return nil, err
	}

	return &ds, nil
}

func (c *Client) DeleteDataset(ctx context.Context, id uuid.UUID) error {
	return c.call(ctx, request{
		name:   "Datasets::Delete",
		method: http.MethodDelete,
		path:   "/datasets/" + id.String(),
		ok:     deleteStatuses,
	}, nil)
}
