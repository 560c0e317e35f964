package hub

import (
	"context"
	"io"

	"github.com/aussiebroadwan/atriahub/pkg/lakefs"
)

// Storage is the versioned object store behind datasets and models.
// *lakefs.Client implements it.
type Storage interface {
	SetCredentials(accessKeyID, secretAccessKey string)
	Connected() bool

	CreateBranch(ctx context.Context, repo, branch, source string) (*lakefs.Branch, error)
	HeadCommit(ctx context.Context, repo, branch string) (string, error)
	Uncommitted(ctx context.Context, repo, branch, prefix string) ([]lakefs.Change, error)
	Commit(ctx context.Context, repo, branch string, in lakefs.CommitInput) (*lakefs.Commit, error)

	Exists(ctx context.Context, repo, ref, path string) (bool, error)
	List(ctx context.Context, repo, ref, prefix string) ([]lakefs.ObjectInfo, error)
	Read(ctx context.Context, repo, ref, path string) ([]byte, error)

	Upload(ctx context.Context, repo, branch, path string, body io.Reader, contentType string) error
	PutFile(ctx context.Context, repo, branch, localPath, path, contentType string) (int64, error)
	DownloadDir(ctx context.Context, repo, ref, prefix, dest string) (lakefs.Transfer, error)
}

var _ Storage = (*lakefs.Client)(nil)

// StorageOptions is the environment-style configuration that lets
// S3-compatible tooling reach the storage layer with creds.
func StorageOptions(storageURL string, creds StorageCredentials) map[string]string {
	return map[string]string{
		"AWS_ACCESS_KEY_ID":          creds.AccessKeyID,
		"AWS_SECRET_ACCESS_KEY":      creds.SecretAccessKey,
		"AWS_ENDPOINT":               storageURL,
		"AWS_REGION":                 "stub",
		"AWS_ALLOW_HTTP":             "true",
		"AWS_S3_ALLOW_UNSAFE_RENAME": "true",
	}
}
