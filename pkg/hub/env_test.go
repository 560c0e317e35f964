package hub_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/aussiebroadwan/atriahub/pkg/authsdk/authsdktest"
	"github.com/aussiebroadwan/atriahub/pkg/httpx"
	"github.com/aussiebroadwan/atriahub/pkg/hub"
	"github.com/aussiebroadwan/atriahub/pkg/jwtx"
	"github.com/aussiebroadwan/atriahub/pkg/lakefs/lakefstest"
	"github.com/aussiebroadwan/atriahub/pkg/secretstore"
	"github.com/aussiebroadwan/atriahub/pkg/slogx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "alice@example.com"
	testPassword = "correct horse battery staple"
	testUsername = "alice"
)

// eventLog records the order in which the fakes are hit.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// backend is an in-memory fake of the hub REST API.
type backend struct {
	log *eventLog

	mu             sync.Mutex
	healthStatus   int
	validateStatus int
	credentials    map[string]apiclient.Credentials
	credCreates    int
	datasets       map[string]apiclient.Dataset
	datasetCreates []apiclient.DatasetCreate
	models         map[string]apiclient.Model
	modelCreates   []apiclient.ModelCreate
	sampleIndices  []int
	metrics        []apiclient.EvaluationMetric
	storage        *lakefstest.Server
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("apiKey") != authsdktest.APIKey {
		httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{"detail": "missing api key"})
		return
	}

	p := strings.TrimPrefix(r.URL.Path, "/api/v1")
	if p == "/health" {
		b.log.add("health")
		b.mu.Lock()
		status := b.healthStatus
		b.mu.Unlock()
		if status == 0 {
			status = http.StatusOK
		}
		httpx.WriteJSON(w, status, map[string]string{"status": "ok"})
		return
	}

	claims, err := jwtx.ParseUnverified(httpx.BearerToken(r))
	if err != nil {
		httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{"detail": "not authenticated"})
		return
	}
	username := claims.Username()

	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(p, "/credentials/"):
		b.log.add("credentials:validate")
		if b.validateStatus != 0 {
			httpx.WriteJSON(w, b.validateStatus, map[string]string{"detail": "validation override"})
			return
		}
		c, ok := b.credentials[strings.TrimPrefix(p, "/credentials/")]
		if !ok {
			httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, apiclient.Credentials{AccessKeyID: c.AccessKeyID})

	case r.Method == http.MethodPost && p == "/credentials":
		b.log.add("credentials:create")
		b.credCreates++
		c := apiclient.Credentials{AccessKeyID: lakefstest.AccessKeyID, SecretAccessKey: lakefstest.SecretAccessKey}
		if b.credCreates > 1 {
			c.AccessKeyID = fmt.Sprintf("AKIA%016d", b.credCreates)
		}
		b.credentials[c.AccessKeyID] = c
		httpx.WriteJSON(w, http.StatusOK, c)

	case r.Method == http.MethodGet && p == "/datasets/find_one":
		ds, ok := b.datasets[r.URL.Query().Get("username")+"/"+r.URL.Query().Get("name")]
		if !ok {
			httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ds)

	case r.Method == http.MethodPost && p == "/datasets":
		var in apiclient.DatasetCreate
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.datasetCreates = append(b.datasetCreates, in)
		ds := apiclient.Dataset{
			ID: uuid.New(), Name: in.Name, Username: username, Description: in.Description,
			RepoID: username + "-" + in.Name, DefaultBranch: in.DefaultBranch, CreatedAt: time.Now(),
		}
		b.datasets[username+"/"+in.Name] = ds
		if b.storage != nil {
			b.storage.CreateRepository(ds.RepoID, ds.DefaultBranch)
		}
		httpx.WriteJSON(w, http.StatusOK, ds)

	case r.Method == http.MethodGet && p == "/models/find_one":
		m, ok := b.models[r.URL.Query().Get("username")+"/"+r.URL.Query().Get("name")]
		if !ok {
			httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, m)

	case r.Method == http.MethodPost && p == "/models":
		var in apiclient.ModelCreate
		_ = json.NewDecoder(r.Body).Decode(&in)
		b.modelCreates = append(b.modelCreates, in)
		m := apiclient.Model{
			ID: uuid.New(), Name: in.Name, Username: username, TaskType: in.TaskType,
			RepoID: username + "-" + in.Name, DefaultBranch: in.DefaultBranch,
		}
		b.models[username+"/"+in.Name] = m
		if b.storage != nil {
			b.storage.CreateRepository(m.RepoID, m.DefaultBranch)
		}
		httpx.WriteJSON(w, http.StatusOK, m)

	case r.Method == http.MethodGet && strings.HasSuffix(p, "/sample_evaluations/indices"):
		httpx.WriteJSON(w, http.StatusOK, b.sampleIndices)

	case r.Method == http.MethodPost && strings.HasPrefix(p, "/evaluation_experiments/") && strings.HasSuffix(p, "/metrics"):
		b.metrics = nil
		_ = json.NewDecoder(r.Body).Decode(&b.metrics)
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	case r.Method == http.MethodGet && strings.HasPrefix(p, "/evaluation_experiments/") && strings.HasSuffix(p, "/metrics"):
		httpx.WriteJSON(w, http.StatusOK, b.metrics)

	default:
		httpx.WriteJSON(w, http.StatusNotFound, map[string]string{"detail": "no route"})
	}
}

func (b *backend) set(fn func(b *backend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

// env is a hub wired to fakes of every collaborator.
type env struct {
	hub      *hub.Hub
	log      *eventLog
	backend  *backend
	provider *authsdktest.Provider
	storage  *lakefstest.Server
	secrets  *secretstore.Memory
	cfg      hub.Config
}

func newEnv(t *testing.T, opts ...hub.Option) *env {
	t.Helper()

	log := &eventLog{}

	storage, storageURL := lakefstest.NewServer(t)
	storage.OnRequest = func(r *http.Request) { log.add("storage") }

	provider := authsdktest.NewProvider()
	provider.AddUser(testEmail, testPassword, testUsername)
	provider.OnRequest = func(r *http.Request) { log.add("auth:" + r.URL.Path) }

	be := &backend{
		log:         log,
		credentials: make(map[string]apiclient.Credentials),
		datasets:    make(map[string]apiclient.Dataset),
		models:      make(map[string]apiclient.Model),
		storage:     storage,
	}

	mux := http.NewServeMux()
	mux.Handle("/auth/v1/", http.StripPrefix("/auth/v1", provider))
	mux.Handle("/api/v1/", be)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := hub.Config{
		BaseURL:       srv.URL,
		StorageURL:    storageURL,
		AnonKey:       authsdktest.APIKey,
		SecretBackend: hub.SecretBackendMemory,
		HTTPTimeout:   10 * time.Second,
	}

	secrets := secretstore.NewMemory()
	h, err := hub.New(cfg, append([]hub.Option{
		hub.WithSecretStore(secrets),
		hub.WithLogger(slogx.Discard()),
	}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	return &env{
		hub:      h,
		log:      log,
		backend:  be,
		provider: provider,
		storage:  storage,
		secrets:  secrets,
		cfg:      cfg,
	}
}

func aliceCredentials() *hub.Credentials {
	return &hub.Credentials{Email: testEmail, Password: testPassword}
}

// initialize signs in as alice and fails the test on error.
func (e *env) initialize(t *testing.T) *hub.Ready {
	t.Helper()

	ready, err := e.hub.Initialize(t.Context(), hub.InitializeInput{Credentials: aliceCredentials()})
	require.NoError(t, err)
	return ready
}
