package hub

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aussiebroadwan/atriahub/pkg/secretstore"
	"github.com/aussiebroadwan/atriahub/pkg/secretstore/sqlite"
)

// OpenSecretStore opens the backend named by cfg.SecretBackend. The returned
// closer is nil for backends that hold no resources.
func OpenSecretStore(ctx context.Context, cfg Config) (secretstore.Store, io.Closer, error) {
	switch cfg.SecretBackend {
	case SecretBackendKeyring, "":
		return secretstore.NewKeyring(cfg.serviceName()), nil, nil

	case SecretBackendMemory:
		return secretstore.NewMemory(), nil, nil

	case SecretBackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SecretsDB), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create secrets directory: %w", err)
		}

		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", cfg.SecretsDB)
		store, err := sqlite.Open(ctx, dsn, cfg.serviceName(), cfg.SecretsPassphrase)
		if err != nil {
			return nil, nil, fmt.Errorf("open secrets database: %w", err)
		}
		return store, store, nil

	default:
		return nil, nil, fmt.Errorf("unknown secret backend %q", cfg.SecretBackend)
	}
}
