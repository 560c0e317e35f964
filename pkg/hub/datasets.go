package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/aussiebroadwan/atriahub/pkg/lakefs"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// DefaultBranch is used when a create request names none.
const DefaultBranch = "main"

// Datasets manages dataset records and their repository content.
type Datasets struct {
	h *Hub
}

// CreateDatasetInput describes a new dataset.
type CreateDatasetInput struct {
	Name             string
	Description      string
	DataInstanceType apiclient.DataInstanceType
	DefaultBranch    string
	IsPublic         bool
}

func (d *Datasets) Get(ctx context.Context, id uuid.UUID) (*apiclient.Dataset, error) {
	return d.h.authed.GetDataset(ctx, id)
}

// GetByName looks a dataset up by owner and name. A missing dataset is a
// *NotFoundError.
func (d *Datasets) GetByName(ctx context.Context, username, name string) (*apiclient.Dataset, error) {
	ds, err := d.h.authed.FindDataset(ctx, username, name)
	if apiclient.IsNotFound(err) {
		return nil, &NotFoundError{Kind: "dataset", Username: username, Name: name}
	}
	return ds, err
}

func (d *Datasets) Create(ctx context.Context, in CreateDatasetInput) (*apiclient.Dataset, error) {
	if in.DefaultBranch == "" {
		in.DefaultBranch = DefaultBranch
	}

	ds, err := d.h.authed.CreateDataset(ctx, apiclient.DatasetCreate{
		Name:             in.Name,
		Description:      in.Description,
		DataInstanceType: in.DataInstanceType,
		DefaultBranch:    in.DefaultBranch,
		IsPublic:         in.IsPublic,
	})
	if err != nil {
		return nil, err
	}

	d.h.logger.InfoContext(ctx, "dataset created", "dataset", ds.Name, "repo", ds.RepoID)
	return ds, nil
}

// GetOrCreate returns the signed-in user's dataset named in.Name, creating
// it from in when it does not exist.
func (d *Datasets) GetOrCreate(ctx context.Context, in CreateDatasetInput) (*apiclient.Dataset, error) {
	username, err := d.h.auth.Username(ctx)
	if err != nil {
		return nil, err
	}

	return GetOrCreateWithPolicy(ctx, d.h.cfg.GetOrCreatePolicy,
		func(ctx context.Context) (*apiclient.Dataset, error) { return d.GetByName(ctx, username, in.Name) },
		func(ctx context.Context) (*apiclient.Dataset, error) { return d.Create(ctx, in) },
	)
}

func (d *Datasets) Delete(ctx context.Context, id uuid.UUID) error {
	return d.h.authed.DeleteDataset(ctx, id)
}

// UploadFiles writes files to branch, creating the branch from the
// dataset's default branch first. It refuses to write into a config whose
// delta directory already holds data unless overwrite is set. Files are
// uploaded one at a time and left uncommitted.
func (d *Datasets) UploadFiles(
	ctx context.Context,
	ds *apiclient.Dataset,
	branch, configDir string,
	files []FileUpload,
	overwrite bool,
) (lakefs.Transfer, error) {
	var t lakefs.Transfer

	if _, err := d.h.storage.CreateBranch(ctx, ds.RepoID, branch, ds.DefaultBranch); err != nil {
		return t, fmt.Errorf("create branch %s: %w", branch, err)
	}

	delta := deltaDir(configDir)
	exists, err := d.h.storage.Exists(ctx, ds.RepoID, branch, delta)
	if err != nil {
		return t, err
	}
	if exists && !overwrite {
		return t, fmt.Errorf("delta directory %s already exists on %s/%s; choose a different branch or set overwrite",
			delta, ds.RepoID, branch)
	}

	d.h.logger.InfoContext(ctx, "uploading dataset files",
		"dataset", ds.Name, "repo", ds.RepoID, "branch", branch, "files", len(files))

	for _, f := range files {
		n, err := d.h.storage.PutFile(ctx, ds.RepoID, branch, f.Local, f.Remote, "")
		if err != nil {
			return t, fmt.Errorf("upload %s: %w", f.Local, err)
		}
		t.Files++
		t.Bytes += n
		d.h.logger.DebugContext(ctx, "uploaded file", "path", f.Remote, "size", humanize.Bytes(uint64(n)))
	}

	d.h.logger.InfoContext(ctx, "upload complete", "files", t.Files, "size", humanize.Bytes(uint64(t.Bytes)))
	return t, nil
}

// DownloadFiles copies configDir from branch into dest/configDir. An empty
// configDir copies the whole branch.
func (d *Datasets) DownloadFiles(ctx context.Context, repoID, branch, configDir, dest string) (lakefs.Transfer, error) {
	prefix := strings.TrimSuffix(configDir, "/")
	if prefix != "" {
		prefix += "/"
	}

	t, err := d.h.storage.DownloadDir(ctx, repoID, branch, prefix,
		filepath.Join(dest, filepath.FromSlash(configDir)))
	if err != nil {
		return t, err
	}

	d.h.logger.InfoContext(ctx, "download complete",
		"repo", repoID, "branch", branch, "files", t.Files, "size", humanize.Bytes(uint64(t.Bytes)))
	return t, nil
}

// Splits returns the splits present under the config's delta directory.
func (d *Datasets) Splits(ctx context.Context, repoID, branch, config string) ([]Split, error) {
	entries, err := d.h.storage.List(ctx, repoID, branch, deltaDir(config))
	if err != nil {
		return nil, err
	}

	var splits []Split
	for _, e := range entries {
		if sp, ok := ParseSplit(path.Base(strings.TrimSuffix(e.Path, "/"))); ok {
			splits = append(splits, sp)
		}
	}
	return splits, nil
}

// AvailableConfigs lists the config names under conf/dataset/.
func (d *Datasets) AvailableConfigs(ctx context.Context, repoID, branch string) ([]string, error) {
	return listConfigs(ctx, d.h.storage, repoID, branch, datasetConfigsDir)
}

func listConfigs(ctx context.Context, s Storage, repoID, branch, dir string) ([]string, error) {
	entries, err := s.List(ctx, repoID, branch, strings.TrimSuffix(dir, "/")+"/")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsPrefix() {
			continue
		}
		names = append(names, strings.TrimSuffix(path.Base(e.Path), ".yaml"))
	}
	return names, nil
}

// Config reads conf/dataset/{name}.yaml, which must be a mapping.
func (d *Datasets) Config(ctx context.Context, repoID, branch, name string) (map[string]any, error) {
	available, err := d.AvailableConfigs(ctx, repoID, branch)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(available, name) {
		return nil, fmt.Errorf("configuration %q not found on branch %s (available: %s): %w",
			name, branch, strings.Join(available, ", "), ErrNotFound)
	}

	p := datasetConfigsDir + "/" + name + ".yaml"
	data, err := d.h.storage.Read(ctx, repoID, branch, p)
	if err != nil {
		return nil, err
	}
	return parseMapping(p, data)
}

// Metadata reads metadata.yaml, which must be a mapping.
func (d *Datasets) Metadata(ctx context.Context, repoID, branch string) (map[string]any, error) {
	data, err := d.h.storage.Read(ctx, repoID, branch, metadataFile)
	if err != nil {
		return nil, err
	}
	return parseMapping(metadataFile, data)
}

// Info returns a config and the dataset metadata together.
func (d *Datasets) Info(ctx context.Context, repoID, branch, config string) (cfg, metadata map[string]any, err error) {
	if cfg, err = d.Config(ctx, repoID, branch, config); err != nil {
		return nil, nil, err
	}
	if metadata, err = d.Metadata(ctx, repoID, branch); err != nil {
		return nil, nil, err
	}
	return cfg, metadata, nil
}

// CommitChanges commits everything staged on branch. It returns nil without
// committing when nothing is staged.
func (d *Datasets) CommitChanges(ctx context.Context, repoID, branch, message string) (*lakefs.Commit, error) {
	return commitIfChanged(ctx, d.h.storage, repoID, branch, "", message, nil)
}

// commitIfChanged commits branch when anything under prefix is staged.
func commitIfChanged(ctx context.Context, s Storage, repoID, branch, prefix, message string, metadata map[string]string) (*lakefs.Commit, error) {
	changes, err := s.Uncommitted(ctx, repoID, branch, prefix)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, nil
	}

	return s.Commit(ctx, repoID, branch, lakefs.CommitInput{Message: message, Metadata: metadata})
}

// TablePath is the delta table URI of split.
func (d *Datasets) TablePath(repoID, branch, config, split string) string {
	return TablePath(repoID, branch, config, split)
}

// EvalBranch returns the evaluation branch for the current head of branch,
// creating it from branch if needed.
func (d *Datasets) EvalBranch(ctx context.Context, repoID, branch string) (string, error) {
	sha, err := d.h.storage.HeadCommit(ctx, repoID, branch)
	if err != nil {
		return "", err
	}

	name := EvalBranchName(branch, sha)
	if _, err := d.h.storage.CreateBranch(ctx, repoID, name, branch); err != nil {
		return "", fmt.Errorf("create eval branch %s: %w", name, err)
	}
	return name, nil
}

func (d *Datasets) EvalTablePath(repoID, evalBranch, config, split, output string) string {
	return EvalTablePath(repoID, evalBranch, config, split, output)
}

func (d *Datasets) EvalMetricsPath(repoID, evalBranch, config, split, output string) string {
	return EvalMetricsPath(repoID, evalBranch, config, split, output)
}

// WriteEvalMetrics stores data as the metrics document of an evaluation
// output and commits it. It returns the document URI.
func (d *Datasets) WriteEvalMetrics(ctx context.Context, repoID, evalBranch, config, split, output string, data map[string]any) (string, error) {
	p := evalDir(config, split, output) + "/" + metricsFile

	body, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode metrics: %w", err)
	}

	if err := d.h.storage.Upload(ctx, repoID, evalBranch, p, bytes.NewReader(body), "application/json"); err != nil {
		return "", err
	}

	message := fmt.Sprintf("Write evaluation metrics for %s on %s for split %s", repoID, evalBranch, split)
	if _, err := commitIfChanged(ctx, d.h.storage, repoID, evalBranch, p, message, map[string]string{"paths": p}); err != nil {
		return "", fmt.Errorf("commit metrics: %w", err)
	}

	return URI(repoID, evalBranch, p), nil
}

// ReadEvalMetrics returns the metrics document of an evaluation output.
// found is false when none has been written.
func (d *Datasets) ReadEvalMetrics(ctx context.Context, repoID, evalBranch, config, split, output string) (uri string, data map[string]any, found bool, err error) {
	p := evalDir(config, split, output) + "/" + metricsFile

	raw, err := d.h.storage.Read(ctx, repoID, evalBranch, p)
	if errors.Is(err, lakefs.ErrNotFound) {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, err
	}

	data, err = parseMapping(p, raw)
	if err != nil {
		return "", nil, false, err
	}
	return URI(repoID, evalBranch, p), data, true, nil
}
