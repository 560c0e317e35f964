package hub

import (
	"context"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/google/uuid"
)

// ConfigSnapshots reads stored run configurations.
type ConfigSnapshots struct {
	api *apiclient.Client
}

func (c *ConfigSnapshots) Get(ctx context.Context, id uuid.UUID) (*apiclient.ConfigSnapshot, error) {
	return c.api.GetConfigSnapshot(ctx, id)
}

func (c *ConfigSnapshots) Delete(ctx context.Context, id uuid.UUID) error {
	return c.api.DeleteConfigSnapshot(ctx, id)
}
