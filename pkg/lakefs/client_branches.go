package lakefs

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// GetBranch returns the branch and its head commit.
func (c *Client) GetBranch(ctx context.Context, repo, branch string) (*Branch, error) {
	var b Branch
	err := c.decodeJSON(ctx, "get branch", http.MethodGet,
		c.url(nil, "repositories", repo, "branches", branch), nil, &b, http.StatusOK)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// CreateBranch creates branch from source. An existing branch is returned
// as is.
func (c *Client) CreateBranch(ctx context.Context, repo, branch, source string) (*Branch, error) {
	_, err := c.doRequest(ctx, "create branch", http.MethodPost,
		c.url(nil, "repositories", repo, "branches"),
		branchCreation{Name: branch, Source: source}, http.StatusCreated)
	if err != nil && !IsConflict(err) {
		return nil, err
	}

	return c.GetBranch(ctx, repo, branch)
}

// HeadCommit returns the commit ID the branch points at.
func (c *Client) HeadCommit(ctx context.Context, repo, branch string) (string, error) {
	b, err := c.GetBranch(ctx, repo, branch)
	if err != nil {
		return "", err
	}
	if b.CommitID == "" {
		return "", errors.New("lakefs get branch: response has no commit_id")
	}

	return b.CommitID, nil
}

// Uncommitted lists the staged changes on branch under prefix ("" for all).
func (c *Client) Uncommitted(ctx context.Context, repo, branch, prefix string) ([]Change, error) {
	var (
		changes []Change
		after   string
	)
	for {
		q := url.Values{"amount": {strconv.Itoa(c.PageSize)}}
		if prefix != "" {
			q.Set("prefix", prefix)
		}
		if after != "" {
			q.Set("after", after)
		}

		var page diffList
		err := c.decodeJSON(ctx, "diff branch", http.MethodGet,
			c.url(q, "repositories", repo, "branches", branch, "diff"), nil, &page, http.StatusOK)
		if err != nil {
			return nil, err
		}

		changes = append(changes, page.Results...)
		if !page.Pagination.HasMore || page.Pagination.NextOffset == "" {
			return changes, nil
		}
		after = page.Pagination.NextOffset
	}
}

// Commit commits the staged changes on branch.
func (c *Client) Commit(ctx context.Context, repo, branch string, in CommitInput) (*Commit, error) {
	var commit Commit
	err := c.decodeJSON(ctx, "commit", http.MethodPost,
		c.url(nil, "repositories", repo, "branches", branch, "commits"), in, &commit, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	return &commit, nil
}
