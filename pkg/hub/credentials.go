package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/aussiebroadwan/atriahub/pkg/secretstore"
)

// Secret store keys for the storage credentials.
const (
	KeyAccessKeyID     = "access_key_id"
	KeySecretAccessKey = "secret_access_key"
)

// StorageCredentials are the access key pair for the storage layer.
type StorageCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

func (c StorageCredentials) complete() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// CredentialsAPI is the part of the backend the broker needs.
type CredentialsAPI interface {
	GetCredentials(ctx context.Context, accessKeyID string) (*apiclient.Credentials, error)
	CreateCredentials(ctx context.Context) (*apiclient.Credentials, error)
}

// CredentialsBroker hands out valid storage credentials, reusing stored ones
// while the backend still knows them and minting new ones otherwise.
type CredentialsBroker struct {
	Store  secretstore.Store
	API    CredentialsAPI
	Logger *slog.Logger
}

// GetOrCreate returns usable storage credentials.
func (b *CredentialsBroker) GetOrCreate(ctx context.Context) (StorageCredentials, error) {
	if stored, ok := b.stored(ctx); ok {
		valid, err := b.validate(ctx, stored.AccessKeyID)
		if err != nil {
			return StorageCredentials{}, err
		}
		if valid {
			return stored, nil
		}
		b.logger().InfoContext(ctx, "stored storage credentials are no longer valid")
	}

	return b.mint(ctx)
}

// Revoke forgets the stored credentials.
func (b *CredentialsBroker) Revoke(ctx context.Context) error {
	var errs []error
	for _, key := range []string{KeyAccessKeyID, KeySecretAccessKey} {
		if err := b.Store.RemoveItem(ctx, key); err != nil && !errors.Is(err, secretstore.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *CredentialsBroker) stored(ctx context.Context) (StorageCredentials, bool) {
	id, err := b.Store.GetItem(ctx, KeyAccessKeyID)
	if err != nil {
		if !errors.Is(err, secretstore.ErrNotFound) {
			b.logger().WarnContext(ctx, "failed to read stored access key", "error", err)
		}
		return StorageCredentials{}, false
	}

	secret, err := b.Store.GetItem(ctx, KeySecretAccessKey)
	if err != nil {
		if !errors.Is(err, secretstore.ErrNotFound) {
			b.logger().WarnContext(ctx, "failed to read stored secret key", "error", err)
		}
		return StorageCredentials{}, false
	}

	creds := StorageCredentials{AccessKeyID: id, SecretAccessKey: secret}
	return creds, creds.complete()
}

// validate reports whether the backend still knows accessKeyID. Only a
// non-404 HTTP failure is an error; a transport failure counts as invalid.
func (b *CredentialsBroker) validate(ctx context.Context, accessKeyID string) (bool, error) {
	_, err := b.API.GetCredentials(ctx, accessKeyID)
	switch {
	case err == nil:
		return true, nil
	case apiclient.IsNotFound(err):
		return false, nil
	case apiclient.IsTransport(err):
		b.logger().InfoContext(ctx, "storage credentials validation failed", "error", err)
		return false, nil
	default:
		return false, fmt.Errorf("validate storage credentials: %w", err)
	}
}

func (b *CredentialsBroker) mint(ctx context.Context) (StorageCredentials, error) {
	issued, err := b.API.CreateCredentials(ctx)
	if err != nil {
		return StorageCredentials{}, fmt.Errorf("create storage credentials: %w", err)
	}

	creds := StorageCredentials{AccessKeyID: issued.AccessKeyID, SecretAccessKey: issued.SecretAccessKey}
	if !creds.complete() {
		return StorageCredentials{}, errors.New("create storage credentials: backend returned an incomplete key pair")
	}

	err = secretstore.SetItems(ctx, b.Store, map[string]string{
		KeyAccessKeyID:     creds.AccessKeyID,
		KeySecretAccessKey: creds.SecretAccessKey,
	})
	if err != nil {
		return StorageCredentials{}, fmt.Errorf("store storage credentials: %w", err)
	}

	b.logger().InfoContext(ctx, "issued new storage credentials", "access_key_id", creds.AccessKeyID)
	return creds, nil
}

func (b *CredentialsBroker) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}
