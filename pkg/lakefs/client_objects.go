package lakefs

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Stat returns metadata for the object at path.
func (c *Client) Stat(ctx context.Context, repo, ref, path string) (*ObjectInfo, error) {
	var info ObjectInfo
	err := c.decodeJSON(ctx, "stat object", http.MethodGet,
		c.url(url.Values{"path": {path}}, "repositories", repo, "refs", ref, "objects", "stat"),
		nil, &info, http.StatusOK)
	if err != nil {
		return nil, err
	}

	return &info, nil
}

// Exists reports whether path names an object or, when it ends in "/", a
// non-empty directory.
func (c *Client) Exists(ctx context.Context, repo, ref, path string) (bool, error) {
	if strings.HasSuffix(path, "/") {
		page, err := c.listPage(ctx, repo, ref, path, "/", "", 1)
		if err != nil {
			return false, err
		}
		return len(page.Results) > 0, nil
	}

	_, err := c.Stat(ctx, repo, ref, path)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// List returns the direct children of prefix: objects and common prefixes.
func (c *Client) List(ctx context.Context, repo, ref, prefix string) ([]ObjectInfo, error) {
	return c.list(ctx, repo, ref, prefix, "/")
}

// ListRecursive returns every object under prefix.
func (c *Client) ListRecursive(ctx context.Context, repo, ref, prefix string) ([]ObjectInfo, error) {
	return c.list(ctx, repo, ref, prefix, "")
}

func (c *Client) list(ctx context.Context, repo, ref, prefix, delimiter string) ([]ObjectInfo, error) {
	var (
		out   []ObjectInfo
		after string
	)
	for {
		page, err := c.listPage(ctx, repo, ref, prefix, delimiter, after, c.PageSize)
		if err != nil {
			return nil, err
		}

		out = append(out, page.Results...)
		if !page.Pagination.HasMore || page.Pagination.NextOffset == "" {
			return out, nil
		}
		after = page.Pagination.NextOffset
	}
}

func (c *Client) listPage(ctx context.Context, repo, ref, prefix, delimiter, after string, amount int) (*objectList, error) {
	q := url.Values{"amount": {strconv.Itoa(amount)}}
	if prefix != "" {
		q.Set("prefix", prefix)
	}
	if delimiter != "" {
		q.Set("delimiter", delimiter)
	}
	if after != "" {
		q.Set("after", after)
	}

	var page objectList
	err := c.decodeJSON(ctx, "list objects", http.MethodGet,
		c.url(q, "repositories", repo, "refs", ref, "objects", "ls"), nil, &page, http.StatusOK)
	if err != nil {
		return nil, err
	}

	return &page, nil
}

// Read returns the content of a small object through the REST API.
func (c *Client) Read(ctx context.Context, repo, ref, path string) ([]byte, error) {
	return c.doRequest(ctx, "read object", http.MethodGet,
		c.url(url.Values{"path": {path}}, "repositories", repo, "refs", ref, "objects"),
		nil, http.StatusOK)
}
