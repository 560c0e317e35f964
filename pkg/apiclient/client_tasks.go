package apiclient

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

func (c *Client) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	var t Task
	err := c.call(ctx, request{
		name:   "Tasks::Get",
		method: http.MethodGet,
		path:   "/tasks/" + id.String(),
	}, &t)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	err := c.call(ctx, request{
		name:   "Tasks::List",
		method: http.MethodGet,
		path:   "/tasks",
	}, &tasks)
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, body TaskUpdate) (*Task, error) {
	var t Task
	err := c.call(ctx, request{
		name:   "Tasks::Update",
		method: http.MethodPatch,
		path:   "/tasks/" + id.String(),
		body:   body,
	}, &t)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return c.call(ctx, request{
		name:   "Tasks::Delete",
		method: http.MethodDelete,
		path:   "/tasks/" + id.String(),
		ok:     deleteStatuses,
	}, nil)
}
