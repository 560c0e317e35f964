package lakefs

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectKey is the gateway key of path on branch.
func objectKey(branch, p string) string {
	return branch + "/" + strings.TrimPrefix(p, "/")
}

// Upload writes body to path on branch through the S3 gateway. The change
// is staged until the branch is committed.
func (c *Client) Upload(ctx context.Context, repo, branch, p string, body io.Reader, contentType string) error {
	gw, err := c.gatewayClient()
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(repo),
		Key:    aws.String(objectKey(branch, p)),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := manager.NewUploader(gw).Upload(ctx, input); err != nil {
		return gatewayError("upload", repo+"/"+objectKey(branch, p), err)
	}

	return nil
}

// PutFile uploads the local file at localPath to path on branch. An empty
// contentType is guessed from the file extension.
func (c *Client) PutFile(ctx context.Context, repo, branch, localPath, p, contentType string) (int64, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return 0, err
	}

	if contentType == "" {
		contentType = ContentType(localPath)
	}

	if err := c.Upload(ctx, repo, branch, p, f, contentType); err != nil {
		return 0, err
	}

	return st.Size(), nil
}

// Download writes the object at path on ref to w.
func (c *Client) Download(ctx context.Context, repo, ref, p string, w io.WriterAt) (int64, error) {
	gw, err := c.gatewayClient()
	if err != nil {
		return 0, err
	}

	n, err := manager.NewDownloader(gw).Download(ctx, w, &s3.GetObjectInput{
		Bucket: aws.String(repo),
		Key:    aws.String(objectKey(ref, p)),
	})
	if err != nil {
		return 0, gatewayError("download", repo+"/"+objectKey(ref, p), err)
	}

	return n, nil
}

// DownloadFile writes the object at path on ref to localPath, creating
// parent directories.
func (c *Client) DownloadFile(ctx context.Context, repo, ref, p, localPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return 0, err
	}

	f, err := os.Create(localPath)
	if err != nil {
		return 0, err
	}

	n, err := c.Download(ctx, repo, ref, p, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(localPath)
		return 0, err
	}

	return n, nil
}

// Transfer summarises a multi-object copy.
type Transfer struct {
	Files int
	Bytes int64
}

// DownloadDir copies every object under prefix on ref into dest, keeping
// paths relative to prefix. Objects are fetched one at a time.
func (c *Client) DownloadDir(ctx context.Context, repo, ref, prefix, dest string) (Transfer, error) {
	var t Transfer

	objects, err := c.ListRecursive(ctx, repo, ref, prefix)
	if err != nil {
		return t, err
	}

	for _, obj := range objects {
		if obj.IsPrefix() {
			continue
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(obj.Path, prefix), "/")
		if rel == "" {
			rel = path.Base(obj.Path)
		}
		local := filepath.FromSlash(rel)
		if !filepath.IsLocal(local) {
			return t, fmt.Errorf("lakefs download: object %q escapes destination", obj.Path)
		}
		target := filepath.Join(dest, local)

		n, err := c.DownloadFile(ctx, repo, ref, obj.Path, target)
		if err != nil {
			return t, err
		}
		t.Files++
		t.Bytes += n
	}

	return t, nil
}

// ContentType guesses a MIME type from the file extension, falling back to
// application/octet-stream.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
