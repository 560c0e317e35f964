package hub

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/atriahub/pkg/httpx"
	"github.com/aussiebroadwan/atriahub/pkg/lakefs"
	"github.com/aussiebroadwan/atriahub/pkg/secretstore"
)

// Secret store backends.
const (
	SecretBackendKeyring = "keyring"
	SecretBackendSQLite  = "sqlite"
	SecretBackendMemory  = "memory"
)

// Get-or-create policies. See GetOrCreate.
const (
	PolicyNotFound = "not-found"
	PolicyAnyError = "any-error"
)

type Config struct {
	BaseURL    string // Required: backend and identity provider root (default: http://localhost:8000)
	StorageURL string // Required: lakeFS root (default: http://localhost:8001)
	AnonKey    string // Required: anonymous API key sent on every request

	ServiceName       string // Secret store scope (default: atria)
	SecretBackend     string // keyring, sqlite or memory (default: keyring)
	SecretsDB         string // SQLite file for the sqlite backend (default: ~/.config/atria/secrets.db)
	SecretsPassphrase string // Sealing passphrase for the sqlite backend
	StorageRegion     string // S3 gateway signing region (default: stub)

	HTTPTimeout time.Duration         // Per-request timeout (default: 30s)
	RateLimit   httpx.RateLimitConfig // Client-side rate limit (default: disabled)

	GetOrCreatePolicy string // not-found or any-error (default: not-found)

	Env       string // dev enables source locations in logs
	LogLevel  string // debug, info, warn, error (default: info)
	LogFormat string // text or json (default: text)
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() Config {
	return Config{
		BaseURL:           getEnvOrDefault("ATRIAX_URL", "http://localhost:8000"),
		StorageURL:        getEnvOrDefault("ATRIAX_STORAGE_URL", "http://localhost:8001"),
		AnonKey:           os.Getenv("ATRIAX_ANON_KEY"),
		ServiceName:       getEnvOrDefault("SERVICE_NAME", secretstore.DefaultService),
		SecretBackend:     getEnvOrDefault("ATRIAX_SECRET_BACKEND", SecretBackendKeyring),
		SecretsDB:         getEnvOrDefault("ATRIAX_SECRETS_DB", defaultSecretsDB()),
		SecretsPassphrase: os.Getenv("ATRIAX_SECRETS_PASSPHRASE"),
		StorageRegion:     getEnvOrDefault("ATRIAX_STORAGE_REGION", lakefs.DefaultRegion),
		HTTPTimeout:       getEnvDurationOrDefault("ATRIAX_HTTP_TIMEOUT", 30*time.Second),
		RateLimit:         httpx.ParseRateLimitFromEnv("ATRIAX", httpx.RateLimitConfig{}),
		GetOrCreatePolicy: getEnvOrDefault("ATRIAX_GET_OR_CREATE_POLICY", PolicyNotFound),
		Env:               os.Getenv("ENV"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

// Validate reports every missing or malformed field.
func (c Config) Validate() error {
	var errs []error

	for _, f := range [][2]string{{"ATRIAX_URL", c.BaseURL}, {"ATRIAX_STORAGE_URL", c.StorageURL}} {
		name, raw := f[0], f[1]
		if raw == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", name, raw))
		}
	}

	if c.AnonKey == "" {
		errs = append(errs, errors.New("ATRIAX_ANON_KEY is required"))
	}

	switch c.SecretBackend {
	case SecretBackendKeyring, SecretBackendMemory, "":
	case SecretBackendSQLite:
		if c.SecretsDB == "" {
			errs = append(errs, errors.New("ATRIAX_SECRETS_DB is required for the sqlite secret backend"))
		}
		if c.SecretsPassphrase == "" {
			errs = append(errs, errors.New("ATRIAX_SECRETS_PASSPHRASE is required for the sqlite secret backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown secret backend %q", c.SecretBackend))
	}

	switch c.GetOrCreatePolicy {
	case PolicyNotFound, PolicyAnyError, "":
	default:
		errs = append(errs, fmt.Errorf("unknown get-or-create policy %q", c.GetOrCreatePolicy))
	}

	return errors.Join(errs...)
}

// AuthURL is the identity provider root.
func (c Config) AuthURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/auth/v1"
}

func (c Config) serviceName() string {
	if c.ServiceName == "" {
		return secretstore.DefaultService
	}
	return c.ServiceName
}

func defaultSecretsDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "secrets.db"
	}
	return filepath.Join(dir, "atria", "secrets.db")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
