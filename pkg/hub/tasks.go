package hub

import (
	"context"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/google/uuid"
)

// Tasks manages background task records.
type Tasks struct {
	api *apiclient.Client
}

func (t *Tasks) Get(ctx context.Context, id uuid.UUID) (*apiclient.Task, error) {
	return t.api.GetTask(ctx, id)
}

func (t *Tasks) List(ctx context.Context) ([]apiclient.Task, error) {
	return t.api.ListTasks(ctx)
}

// Update applies a partial update.
func (t *Tasks) Update(ctx context.Context, id uuid.UUID, body apiclient.TaskUpdate) (*apiclient.Task, error) {
	return t.api.UpdateTask(ctx, id, body)
}

func (t *Tasks) Delete(ctx context.Context, id uuid.UUID) error {
	return t.api.DeleteTask(ctx, id)
}
