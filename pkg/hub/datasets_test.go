package hub_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/aussiebroadwan/atriahub/pkg/hub"
	"github.com/stretchr/testify/require"
)

// newDataset initializes e and creates a dataset named name.
func newDataset(t *testing.T, e *env, name string) *apiclient.Dataset {
	t.Helper()

	e.initialize(t)
	ds, err := e.hub.Datasets().GetOrCreate(t.Context(), hub.CreateDatasetInput{Name: name, Description: "test data"})
	require.NoError(t, err)
	return ds
}

func TestDatasets_GetOrCreate(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ds := newDataset(t, e, "invoices")
	require.Equal(t, hub.DefaultBranch, ds.DefaultBranch)
	require.Equal(t, testUsername, ds.Username)

	again, err := e.hub.Datasets().GetOrCreate(t.Context(), hub.CreateDatasetInput{Name: "invoices"})
	require.NoError(t, err)
	require.Equal(t, ds.ID, again.ID)

	e.backend.set(func(b *backend) {
		require.Len(t, b.datasetCreates, 1)
		require.Equal(t, "main", b.datasetCreates[0].DefaultBranch)
	})
}

func TestDatasets_GetOrCreateNeedsSession(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	_, err := e.hub.Datasets().GetOrCreate(t.Context(), hub.CreateDatasetInput{Name: "invoices"})
	require.ErrorIs(t, err, hub.ErrNoSession)
}

func TestDatasets_GetByNameMissing(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.initialize(t)

	_, err := e.hub.Datasets().GetByName(t.Context(), testUsername, "missing")
	require.ErrorIs(t, err, hub.ErrNotFound)

	var nf *hub.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "dataset", nf.Kind)
}

func TestDatasets_UploadAndDownload(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ds := newDataset(t, e, "receipts")

	src := t.TempDir()
	for _, f := range []string{"train/part-0.parquet", "train/part-1.parquet", "test/part-0.parquet", "README.md"} {
		p := filepath.Join(src, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("data:"+f), 0o644))
	}

	files, err := hub.CollectFiles(src, "**/*.parquet", "default/delta")
	require.NoError(t, err)
	require.Len(t, files, 3)

	transfer, err := e.hub.Datasets().UploadFiles(t.Context(), ds, "dev", "default", files, false)
	require.NoError(t, err)
	require.Equal(t, 3, transfer.Files)
	require.Contains(t, e.storage.Branches(ds.RepoID), "dev")

	data, ok := e.storage.Object(ds.RepoID, "dev", "default/delta/train/part-1.parquet")
	require.True(t, ok)
	require.Equal(t, "data:train/part-1.parquet", string(data))

	// A second upload into the same delta directory is refused.
	_, err = e.hub.Datasets().UploadFiles(t.Context(), ds, "dev", "default", files, false)
	require.ErrorContains(t, err, "already exists")

	_, err = e.hub.Datasets().UploadFiles(t.Context(), ds, "dev", "default", files, true)
	require.NoError(t, err)

	splits, err := e.hub.Datasets().Splits(t.Context(), ds.RepoID, "dev", "default")
	require.NoError(t, err)
	require.ElementsMatch(t, []hub.Split{hub.SplitTrain, hub.SplitTest}, splits)

	commit, err := e.hub.Datasets().CommitChanges(t.Context(), ds.RepoID, "dev", "add receipts")
	require.NoError(t, err)
	require.NotNil(t, commit)
	require.Equal(t, "add receipts", commit.Message)

	dest := t.TempDir()
	got, err := e.hub.Datasets().DownloadFiles(t.Context(), ds.RepoID, "dev", "default", dest)
	require.NoError(t, err)
	require.Equal(t, 3, got.Files)

	data, err = os.ReadFile(filepath.Join(dest, "default", "delta", "test", "part-0.parquet"))
	require.NoError(t, err)
	require.Equal(t, "data:test/part-0.parquet", string(data))
}

func TestDatasets_UploadRefusesExistingDelta(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ds := newDataset(t, e, "seeded")
	branch := ds.DefaultBranch
	e.storage.Stage(ds.RepoID, branch, "default/delta/train/part-0.parquet", []byte("old"))

	src := t.TempDir()
	p := filepath.Join(src, "train", "part-0.parquet")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("new"), 0o644))

	files, err := hub.CollectFiles(src, "**/*.parquet", "default/delta")
	require.NoError(t, err)

	_, err = e.hub.Datasets().UploadFiles(t.Context(), ds, branch, "default", files, false)
	require.ErrorContains(t, err, "already exists")

	data, ok := e.storage.Object(ds.RepoID, branch, "default/delta/train/part-0.parquet")
	require.True(t, ok)
	require.Equal(t, "old", string(data))

	transfer, err := e.hub.Datasets().UploadFiles(t.Context(), ds, branch, "default", files, true)
	require.NoError(t, err)
	require.Equal(t, 1, transfer.Files)

	data, ok = e.storage.Object(ds.RepoID, branch, "default/delta/train/part-0.parquet")
	require.True(t, ok)
	require.Equal(t, "new", string(data))

	// Another config on the same branch is not blocked.
	other, err := hub.CollectFiles(src, "**/*.parquet", "other/delta")
	require.NoError(t, err)
	_, err = e.hub.Datasets().UploadFiles(t.Context(), ds, branch, "other", other, false)
	require.NoError(t, err)

	dest := t.TempDir()
	got, err := e.hub.Datasets().DownloadFiles(t.Context(), ds.RepoID, branch, "", dest)
	require.NoError(t, err)
	require.Equal(t, 2, got.Files)

	data, err = os.ReadFile(filepath.Join(dest, "other", "delta", "train", "part-0.parquet"))
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
}

func TestDatasets_CommitChangesClean(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ds := newDataset(t, e, "clean")
	before := len(e.storage.Commits(ds.RepoID))

	commit, err := e.hub.Datasets().CommitChanges(t.Context(), ds.RepoID, ds.DefaultBranch, "nothing")
	require.NoError(t, err)
	require.Nil(t, commit)
	require.Len(t, e.storage.Commits(ds.RepoID), before)
}

func TestDatasets_Configs(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ds := newDataset(t, e, "forms")
	branch := ds.DefaultBranch

	e.storage.Stage(ds.RepoID, branch, "conf/dataset/default.yaml", []byte("name: default\nsplits: [train, test]\n"))
	e.storage.Stage(ds.RepoID, branch, "conf/dataset/small.yaml", []byte("name: small\n"))
	e.storage.Stage(ds.RepoID, branch, "conf/dataset/broken.yaml", []byte("- just\n- a list\n"))
	e.storage.Stage(ds.RepoID, branch, "metadata.yaml", []byte("owner: alice\nlabels: 12\n"))

	configs, err := e.hub.Datasets().AvailableConfigs(t.Context(), ds.RepoID, branch)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"default", "small", "broken"}, configs)

	cfg, metadata, err := e.hub.Datasets().Info(t.Context(), ds.RepoID, branch, "default")
	require.NoError(t, err)
	require.Equal(t, "default", cfg["name"])
	require.Equal(t, []any{"train", "test"}, cfg["splits"])
	require.Equal(t, float64(12), metadata["labels"])

	_, err = e.hub.Datasets().Config(t.Context(), ds.RepoID, branch, "huge")
	require.ErrorIs(t, err, hub.ErrNotFound)
	require.ErrorContains(t, err, "default")

	_, err = e.hub.Datasets().Config(t.Context(), ds.RepoID, branch, "broken")
	var verr *hub.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "conf/dataset/broken.yaml", verr.Path)
}

func TestDatasets_EvalMetrics(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ds := newDataset(t, e, "eval")
	d := e.hub.Datasets()

	head := e.storage.Commits(ds.RepoID)[0].ID
	evalBranch, err := d.EvalBranch(t.Context(), ds.RepoID, ds.DefaultBranch)
	require.NoError(t, err)
	require.Equal(t, "eval-main-"+head[:7], evalBranch)

	_, _, found, err := d.ReadEvalMetrics(t.Context(), ds.RepoID, evalBranch, "default", "test", "run-1")
	require.NoError(t, err)
	require.False(t, found)

	uri, err := d.WriteEvalMetrics(t.Context(), ds.RepoID, evalBranch, "default", "test", "run-1",
		map[string]any{"accuracy": 0.93, "f1": 0.9})
	require.NoError(t, err)
	require.Equal(t, d.EvalMetricsPath(ds.RepoID, evalBranch, "default", "test", "run-1"), uri)

	commits := e.storage.Commits(ds.RepoID)
	last := commits[len(commits)-1]
	require.Equal(t, "default/eval/test/run-1/metrics.json", last.Metadata["paths"])

	readURI, data, found, err := d.ReadEvalMetrics(t.Context(), ds.RepoID, evalBranch, "default", "test", "run-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uri, readURI)
	require.InDelta(t, 0.93, data["accuracy"], 1e-9)

	// Rewriting identical metrics leaves nothing to commit.
	_, err = d.WriteEvalMetrics(t.Context(), ds.RepoID, evalBranch, "default", "test", "run-1",
		map[string]any{"accuracy": 0.93, "f1": 0.9})
	require.NoError(t, err)
	require.Len(t, e.storage.Commits(ds.RepoID), len(commits))
}
