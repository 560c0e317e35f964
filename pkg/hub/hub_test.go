package hub_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/aussiebroadwan/atriahub/pkg/hub"
	"github.com/aussiebroadwan/atriahub/pkg/lakefs"
	"github.com/aussiebroadwan/atriahub/pkg/lakefs/lakefstest"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := hub.New(hub.Config{BaseURL: "not a url"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid hub config")
}

// recordingStorage logs credential injection into the env's event log.
type recordingStorage struct {
	*lakefs.Client
	log *eventLog
}

func (s *recordingStorage) SetCredentials(accessKeyID, secretAccessKey string) {
	s.log.add("storage:credentials")
	s.Client.SetCredentials(accessKeyID, secretAccessKey)
}

func TestInitialize_Ordering(t *testing.T) {
	t.Parallel()

	storage := &recordingStorage{Client: lakefs.NewClient("http://storage.invalid")}
	e := newEnv(t, hub.WithStorage(storage))
	storage.log = e.log
	require.False(t, e.hub.Storage().Connected())

	ready := e.initialize(t)

	require.True(t, e.hub.Storage().Connected())
	require.Equal(t, testEmail, ready.User.Email)
	require.Equal(t, lakefstest.AccessKeyID, ready.Credentials.AccessKeyID)
	require.Equal(t, lakefstest.AccessKeyID, storage.AccessKeyID())
	require.Contains(t, ready.Headers.Get("Authorization"), "Bearer ")

	steps := []string{"health", "auth:/token", "credentials:create", "storage:credentials"}
	events := e.log.list()
	require.Equal(t, steps, firstOf(events, steps...))
	require.NotContains(t, events, "storage")
}

func TestNew_DefaultsStorageRegion(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	require.Empty(t, e.cfg.StorageRegion)

	client, ok := e.hub.Storage().(*lakefs.Client)
	require.True(t, ok)
	require.Equal(t, lakefs.DefaultRegion, client.Region)

	ds := newDataset(t, e, "regionless")
	require.NoError(t, e.hub.Storage().Upload(t.Context(), ds.RepoID, ds.DefaultBranch, "notes.txt", strings.NewReader("hi"), ""))

	data, found := e.storage.Object(ds.RepoID, ds.DefaultBranch, "notes.txt")
	require.True(t, found)
	require.Equal(t, "hi", string(data))
}

// firstOf returns the first occurrence of each wanted event in log order.
func firstOf(events []string, wanted ...string) []string {
	seen := map[string]bool{}
	want := map[string]bool{}
	for _, w := range wanted {
		want[w] = true
	}

	var out []string
	for _, e := range events {
		if want[e] && !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

func TestInitialize_Unreachable(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.backend.set(func(b *backend) { b.healthStatus = http.StatusServiceUnavailable })

	_, err := e.hub.Initialize(t.Context(), hub.InitializeInput{Credentials: aliceCredentials()})
	require.Error(t, err)
	require.Equal(t, http.StatusServiceUnavailable, apiclient.StatusCode(err))

	require.Equal(t, []string{"health"}, e.log.list())
	require.False(t, e.hub.Storage().Connected())
}

func TestInitialize_BadPassword(t *testing.T) {
	t.Parallel()

	e := newEnv(t)

	_, err := e.hub.Initialize(t.Context(), hub.InitializeInput{
		Credentials: &hub.Credentials{Email: testEmail, Password: "wrong"},
	})
	var authErr *hub.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "sign-in", authErr.Op)
	require.NotContains(t, e.log.list(), "credentials:create")
}

func TestInitialize_ReusesStoredCredentials(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	first := e.initialize(t)
	second := e.initialize(t)

	require.Equal(t, first.Credentials, second.Credentials)
	e.backend.set(func(b *backend) { require.Equal(t, 1, b.credCreates) })
	require.Contains(t, e.log.list(), "credentials:validate")
}

func TestInitialize_RemintsUnknownCredentials(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	first := e.initialize(t)

	// The backend forgets the key, e.g. after an admin revoked it.
	e.backend.set(func(b *backend) { delete(b.credentials, first.Credentials.AccessKeyID) })

	second := e.initialize(t)
	require.NotEqual(t, first.Credentials.AccessKeyID, second.Credentials.AccessKeyID)
	e.backend.set(func(b *backend) { require.Equal(t, 2, b.credCreates) })

	stored, err := e.secrets.GetItem(t.Context(), hub.KeyAccessKeyID)
	require.NoError(t, err)
	require.Equal(t, second.Credentials.AccessKeyID, stored)
}

func TestInitialize_ValidationFailureIsFatal(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.initialize(t)
	e.backend.set(func(b *backend) { b.validateStatus = http.StatusForbidden })

	_, err := e.hub.Initialize(t.Context(), hub.InitializeInput{})
	require.Error(t, err)
	require.Equal(t, http.StatusForbidden, apiclient.StatusCode(err))
	e.backend.set(func(b *backend) { require.Equal(t, 1, b.credCreates) })
}

func TestInitialize_NoCredentials(t *testing.T) {
	t.Parallel()

	e := newEnv(t)

	_, err := e.hub.Initialize(t.Context(), hub.InitializeInput{})
	var authErr *hub.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, "initialize", authErr.Op)
}

func TestInitialize_CredentialSource(t *testing.T) {
	t.Parallel()

	calls := 0
	e := newEnv(t, hub.WithCredentialSource(hub.CredentialSourceFunc(func(ctx context.Context) (*hub.Credentials, error) {
		calls++
		return aliceCredentials(), nil
	})))

	ready, err := e.hub.Initialize(t.Context(), hub.InitializeInput{})
	require.NoError(t, err)
	require.Equal(t, testEmail, ready.User.Email)

	// The session is kept, so the source is not asked again.
	_, err = e.hub.Initialize(t.Context(), hub.InitializeInput{})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestReady_StorageOptions(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	opts := e.initialize(t).StorageOptions()

	require.Equal(t, e.cfg.StorageURL, opts["AWS_ENDPOINT"])
	require.Equal(t, lakefstest.AccessKeyID, opts["AWS_ACCESS_KEY_ID"])
	require.Equal(t, lakefstest.SecretAccessKey, opts["AWS_SECRET_ACCESS_KEY"])
}

func TestSignOut(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.initialize(t)

	require.NoError(t, e.hub.SignOut(t.Context(), true))
	require.NoError(t, e.hub.SignOut(t.Context(), true))
	require.Equal(t, 1, e.provider.Logouts())

	_, err := e.hub.AuthHeaders(t.Context())
	require.ErrorIs(t, err, hub.ErrNoSession)

	_, err = e.secrets.GetItem(t.Context(), hub.KeyAccessKeyID)
	require.Error(t, err)
}
