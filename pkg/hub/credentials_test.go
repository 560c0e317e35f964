package hub_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/aussiebroadwan/atriahub/pkg/hub"
	"github.com/aussiebroadwan/atriahub/pkg/secretstore"
	"github.com/aussiebroadwan/atriahub/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type fakeCredentialsAPI struct {
	getErr  error
	issued  apiclient.Credentials
	gets    int
	creates int
}

func (f *fakeCredentialsAPI) GetCredentials(ctx context.Context, accessKeyID string) (*apiclient.Credentials, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &apiclient.Credentials{AccessKeyID: accessKeyID}, nil
}

func (f *fakeCredentialsAPI) CreateCredentials(ctx context.Context) (*apiclient.Credentials, error) {
	f.creates++
	c := f.issued
	return &c, nil
}

// failingStore fails every write.
type failingStore struct {
	*secretstore.Memory
}

func (failingStore) SetItem(ctx context.Context, key, value string) error {
	return &secretstore.StoreError{Operation: "set", Service: "test", Key: key, Err: errors.New("disk full")}
}

func (s failingStore) SetItems(ctx context.Context, items map[string]string) error {
	return s.SetItem(ctx, "batch", "")
}

func newBroker(store secretstore.Store, api hub.CredentialsAPI) *hub.CredentialsBroker {
	return &hub.CredentialsBroker{Store: store, API: api, Logger: slogx.Discard()}
}

func seed(t *testing.T, store secretstore.Store, id, secret string) {
	t.Helper()
	require.NoError(t, store.SetItem(t.Context(), hub.KeyAccessKeyID, id))
	require.NoError(t, store.SetItem(t.Context(), hub.KeySecretAccessKey, secret))
}

func TestCredentialsBroker_GetOrCreate(t *testing.T) {
	t.Parallel()

	issued := apiclient.Credentials{AccessKeyID: "AKIANEW", SecretAccessKey: "new-secret"}

	t.Run("mints when nothing is stored", func(t *testing.T) {
		t.Parallel()

		store := secretstore.NewMemory()
		api := &fakeCredentialsAPI{issued: issued}

		creds, err := newBroker(store, api).GetOrCreate(t.Context())
		require.NoError(t, err)
		require.Equal(t, "AKIANEW", creds.AccessKeyID)
		require.Equal(t, 0, api.gets)
		require.Equal(t, 1, api.creates)

		secret, err := store.GetItem(t.Context(), hub.KeySecretAccessKey)
		require.NoError(t, err)
		require.Equal(t, "new-secret", secret)
	})

	t.Run("reuses valid stored pair", func(t *testing.T) {
		t.Parallel()

		store := secretstore.NewMemory()
		seed(t, store, "AKIAOLD", "old-secret")
		api := &fakeCredentialsAPI{issued: issued}

		creds, err := newBroker(store, api).GetOrCreate(t.Context())
		require.NoError(t, err)
		require.Equal(t, hub.StorageCredentials{AccessKeyID: "AKIAOLD", SecretAccessKey: "old-secret"}, creds)
		require.Equal(t, 1, api.gets)
		require.Equal(t, 0, api.creates)
	})

	t.Run("half a stored pair is ignored", func(t *testing.T) {
		t.Parallel()

		store := secretstore.NewMemory()
		require.NoError(t, store.SetItem(t.Context(), hub.KeyAccessKeyID, "AKIAOLD"))
		api := &fakeCredentialsAPI{issued: issued}

		creds, err := newBroker(store, api).GetOrCreate(t.Context())
		require.NoError(t, err)
		require.Equal(t, "AKIANEW", creds.AccessKeyID)
		require.Equal(t, 0, api.gets)
	})

	t.Run("remints after not found", func(t *testing.T) {
		t.Parallel()

		store := secretstore.NewMemory()
		seed(t, store, "AKIAOLD", "old-secret")
		api := &fakeCredentialsAPI{
			issued: issued,
			getErr: &apiclient.ResponseError{RequestName: "Credentials::Get", StatusCode: http.StatusNotFound},
		}

		creds, err := newBroker(store, api).GetOrCreate(t.Context())
		require.NoError(t, err)
		require.Equal(t, "AKIANEW", creds.AccessKeyID)
		require.Equal(t, 1, api.creates)
	})

	t.Run("remints after transport failure", func(t *testing.T) {
		t.Parallel()

		store := secretstore.NewMemory()
		seed(t, store, "AKIAOLD", "old-secret")
		api := &fakeCredentialsAPI{
			issued: issued,
			getErr: &apiclient.ResponseError{StatusCode: http.StatusInternalServerError, Transport: true},
		}

		creds, err := newBroker(store, api).GetOrCreate(t.Context())
		require.NoError(t, err)
		require.Equal(t, "AKIANEW", creds.AccessKeyID)
	})

	t.Run("other http errors are fatal", func(t *testing.T) {
		t.Parallel()

		store := secretstore.NewMemory()
		seed(t, store, "AKIAOLD", "old-secret")
		api := &fakeCredentialsAPI{
			issued: issued,
			getErr: &apiclient.ResponseError{StatusCode: http.StatusInternalServerError},
		}

		_, err := newBroker(store, api).GetOrCreate(t.Context())
		require.Error(t, err)
		require.Equal(t, http.StatusInternalServerError, apiclient.StatusCode(err))
		require.Equal(t, 0, api.creates)
	})

	t.Run("incomplete issued pair", func(t *testing.T) {
		t.Parallel()

		api := &fakeCredentialsAPI{issued: apiclient.Credentials{AccessKeyID: "AKIANEW"}}

		_, err := newBroker(secretstore.NewMemory(), api).GetOrCreate(t.Context())
		require.ErrorContains(t, err, "incomplete key pair")
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		api := &fakeCredentialsAPI{issued: issued}

		_, err := newBroker(failingStore{secretstore.NewMemory()}, api).GetOrCreate(t.Context())
		var storeErr *secretstore.StoreError
		require.ErrorAs(t, err, &storeErr)
	})
}

func TestCredentialsBroker_Revoke(t *testing.T) {
	t.Parallel()

	store := secretstore.NewMemory()
	seed(t, store, "AKIAOLD", "old-secret")
	b := newBroker(store, &fakeCredentialsAPI{})

	require.NoError(t, b.Revoke(t.Context()))
	require.NoError(t, b.Revoke(t.Context()))

	_, err := store.GetItem(t.Context(), hub.KeyAccessKeyID)
	require.ErrorIs(t, err, secretstore.ErrNotFound)
}
