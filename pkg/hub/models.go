package hub

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aussiebroadwan/atriahub/pkg/apiclient"
	"github.com/dustin/go-humanize"
	"github.com/ghodss/yaml"
	"github.com/google/uuid"
)

// Models manages model records and their checkpoints.
type Models struct {
	h *Hub
}

// CreateModelInput describes a new model.
type CreateModelInput struct {
	Name          string
	Description   string
	TaskType      apiclient.TaskType
	DefaultBranch string
	IsPublic      bool
}

func (m *Models) Get(ctx context.Context, id uuid.UUID) (*apiclient.Model, error) {
	return m.h.authed.GetModel(ctx, id)
}

// GetByName looks a model up by owner and name. A missing model is a
// *NotFoundError.
func (m *Models) GetByName(ctx context.Context, username, name string) (*apiclient.Model, error) {
	model, err := m.h.authed.FindModel(ctx, username, name)
	if apiclient.IsNotFound(err) {
		return nil, &NotFoundError{Kind: "model", Username: username, Name: name}
	}
	return model, err
}

func (m *Models) Create(ctx context.Context, in CreateModelInput) (*apiclient.Model, error) {
	if in.DefaultBranch == "" {
		in.DefaultBranch = DefaultBranch
	}

	model, err := m.h.authed.CreateModel(ctx, apiclient.ModelCreate{
		Name:          in.Name,
		Description:   in.Description,
		TaskType:      in.TaskType,
		DefaultBranch: in.DefaultBranch,
		IsPublic:      in.IsPublic,
	})
	if err != nil {
		return nil, err
	}

	m.h.logger.InfoContext(ctx, "model created", "model", model.Name, "repo", model.RepoID)
	return model, nil
}

// GetOrCreate returns the signed-in user's model named in.Name, creating it
// from in when it does not exist.
func (m *Models) GetOrCreate(ctx context.Context, in CreateModelInput) (*apiclient.Model, error) {
	username, err := m.h.auth.Username(ctx)
	if err != nil {
		return nil, err
	}

	return GetOrCreateWithPolicy(ctx, m.h.cfg.GetOrCreatePolicy,
		func(ctx context.Context) (*apiclient.Model, error) { return m.GetByName(ctx, username, in.Name) },
		func(ctx context.Context) (*apiclient.Model, error) { return m.Create(ctx, in) },
	)
}

func (m *Models) Delete(ctx context.Context, id uuid.UUID) error {
	return m.h.authed.DeleteModel(ctx, id)
}

// UploadModelInput is a checkpoint plus the config that built it.
type UploadModelInput struct {
	Branch      string
	ConfigName  string
	ConfigsBase string
	Checkpoint  io.Reader
	Config      map[string]any
	Overwrite   bool
}

// UploadFiles writes {config}/model.bin and {configs_base}/{config}.yaml to
// the branch, creating it from the model's default branch. An existing
// {config}/ directory is refused unless Overwrite is set. The upload is
// left uncommitted.
func (m *Models) UploadFiles(ctx context.Context, model *apiclient.Model, in UploadModelInput) error {
	s := m.h.storage

	if _, err := s.CreateBranch(ctx, model.RepoID, in.Branch, model.DefaultBranch); err != nil {
		return fmt.Errorf("create branch %s: %w", in.Branch, err)
	}

	dir := in.ConfigName + "/"
	exists, err := s.Exists(ctx, model.RepoID, in.Branch, dir)
	if err != nil {
		return err
	}
	if exists && !in.Overwrite {
		return fmt.Errorf("model %s already exists on %s/%s; choose a different branch or set overwrite",
			dir, model.RepoID, in.Branch)
	}

	cfgYAML, err := yaml.Marshal(in.Config)
	if err != nil {
		return fmt.Errorf("encode model config: %w", err)
	}

	counter := &countingReader{r: in.Checkpoint}
	if err := s.Upload(ctx, model.RepoID, in.Branch, dir+checkpointFile, counter, "application/octet-stream"); err != nil {
		return fmt.Errorf("upload checkpoint: %w", err)
	}
	if err := s.Upload(ctx, model.RepoID, in.Branch, configPath(in.ConfigsBase, in.ConfigName),
		bytes.NewReader(cfgYAML), "application/yaml"); err != nil {
		return fmt.Errorf("upload model config: %w", err)
	}

	m.h.logger.InfoContext(ctx, "model uploaded",
		"model", model.Name, "branch", in.Branch, "config", in.ConfigName,
		"checkpoint_size", humanize.Bytes(uint64(counter.n)))
	return nil
}

// AvailableConfigs lists the config names under configsBase.
func (m *Models) AvailableConfigs(ctx context.Context, repoID, branch, configsBase string) ([]string, error) {
	return listConfigs(ctx, m.h.storage, repoID, branch, configsBase)
}

// LoadCheckpointAndConfig reads a checkpoint and its config, which must be
// a mapping.
func (m *Models) LoadCheckpointAndConfig(ctx context.Context, repoID, branch, configName, configsBase string) ([]byte, map[string]any, error) {
	checkpoint, err := m.h.storage.Read(ctx, repoID, branch, configName+"/"+checkpointFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read checkpoint: %w", err)
	}

	p := configPath(configsBase, configName)
	raw, err := m.h.storage.Read(ctx, repoID, branch, p)
	if err != nil {
		return nil, nil, fmt.Errorf("read model config: %w", err)
	}

	cfg, err := parseMapping(p, raw)
	if err != nil {
		return nil, nil, err
	}
	return checkpoint, cfg, nil
}

func configPath(base, name string) string {
	if base == "" {
		return name + ".yaml"
	}
	return base + "/" + name + ".yaml"
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
