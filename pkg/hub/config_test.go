package hub

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, k := range []string{"ATRIAX_URL", "ATRIAX_STORAGE_URL", "ATRIAX_ANON_KEY", "ATRIAX_SECRET_BACKEND",
		"ATRIAX_HTTP_TIMEOUT", "ATRIAX_GET_OR_CREATE_POLICY", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "http://localhost:8000", cfg.BaseURL)
	require.Equal(t, "http://localhost:8001", cfg.StorageURL)
	require.Equal(t, SecretBackendKeyring, cfg.SecretBackend)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	require.Equal(t, PolicyNotFound, cfg.GetOrCreatePolicy)
	require.Equal(t, "stub", cfg.StorageRegion)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, "http://localhost:8000/auth/v1", cfg.AuthURL())

	require.ErrorContains(t, cfg.Validate(), "ATRIAX_ANON_KEY is required")
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ATRIAX_URL", "https://hub.example.com/")
	t.Setenv("ATRIAX_ANON_KEY", "anon")
	t.Setenv("ATRIAX_SECRET_BACKEND", SecretBackendSQLite)
	t.Setenv("ATRIAX_SECRETS_DB", "/tmp/x.db")
	t.Setenv("ATRIAX_SECRETS_PASSPHRASE", "pass")
	t.Setenv("ATRIAX_HTTP_TIMEOUT", "5")
	t.Setenv("ATRIAX_GET_OR_CREATE_POLICY", PolicyAnyError)

	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	require.Equal(t, "https://hub.example.com/auth/v1", cfg.AuthURL())

	t.Setenv("ATRIAX_HTTP_TIMEOUT", "1m30s")
	require.Equal(t, 90*time.Second, LoadConfig().HTTPTimeout)

	t.Setenv("ATRIAX_HTTP_TIMEOUT", "soon")
	require.Equal(t, 30*time.Second, LoadConfig().HTTPTimeout)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := Config{
		BaseURL:           "localhost:8000",
		StorageURL:        "",
		SecretBackend:     SecretBackendSQLite,
		GetOrCreatePolicy: "sometimes",
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"ATRIAX_URL must be an absolute URL",
		"ATRIAX_STORAGE_URL is required",
		"ATRIAX_ANON_KEY is required",
		"ATRIAX_SECRETS_DB is required",
		"ATRIAX_SECRETS_PASSPHRASE is required",
		`unknown get-or-create policy "sometimes"`,
	} {
		require.ErrorContains(t, err, want)
	}

	cfg = Config{BaseURL: "http://a", StorageURL: "http://b", AnonKey: "k", SecretBackend: "vault"}
	require.ErrorContains(t, cfg.Validate(), `unknown secret backend "vault"`)
}

func TestOpenSecretStore_SQLite(t *testing.T) {
	t.Parallel()

	cfg := Config{
		SecretBackend:     SecretBackendSQLite,
		SecretsDB:         filepath.Join(t.TempDir(), "nested", "secrets.db"),
		SecretsPassphrase: "correct horse",
	}

	store, closer, err := OpenSecretStore(t.Context(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer.Close() })

	require.NoError(t, store.SetItem(t.Context(), KeyAccessKeyID, "AKIA"))
	got, err := store.GetItem(t.Context(), KeyAccessKeyID)
	require.NoError(t, err)
	require.Equal(t, "AKIA", got)
}
