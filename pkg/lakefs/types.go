package lakefs

import "time"

// Branch is a named pointer to a commit.
type Branch struct {
	ID       string `json:"id"`
	CommitID string `json:"commit_id"`
}

// Commit is an immutable repository snapshot.
type Commit struct {
	ID           string            `json:"id"`
	Parents      []string          `json:"parents,omitempty"`
	Committer    string            `json:"committer"`
	Message      string            `json:"message"`
	CreationDate int64             `json:"creation_date"`
	MetaRangeID  string            `json:"meta_range_id"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Created returns the commit time.
func (c *Commit) Created() time.Time {
	return time.Unix(c.CreationDate, 0)
}

// CommitInput is the body of a commit request.
type CommitInput struct {
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Change type values reported by a branch diff.
const (
	ChangeAdded    = "added"
	ChangeRemoved  = "removed"
	ChangeChanged  = "changed"
	ChangeConflict = "conflict"
)

// Change is one uncommitted entry on a branch.
type Change struct {
	Type      string `json:"type"`
	Path      string `json:"path"`
	PathType  string `json:"path_type"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// Path types reported by listings.
const (
	PathTypeObject       = "object"
	PathTypeCommonPrefix = "common_prefix"
)

// ObjectInfo describes an object or, in delimited listings, a common prefix.
type ObjectInfo struct {
	Path            string            `json:"path"`
	PathType        string            `json:"path_type"`
	PhysicalAddress string            `json:"physical_address,omitempty"`
	Checksum        string            `json:"checksum,omitempty"`
	SizeBytes       int64             `json:"size_bytes,omitempty"`
	Mtime           int64             `json:"mtime,omitempty"`
	ContentType     string            `json:"content_type,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// IsPrefix reports whether the entry is a directory-like common prefix.
func (o ObjectInfo) IsPrefix() bool {
	return o.PathType == PathTypeCommonPrefix
}

// Pagination is the cursor block of list responses.
type Pagination struct {
	HasMore    bool   `json:"has_more"`
	NextOffset string `json:"next_offset"`
	Results    int    `json:"results"`
	MaxPerPage int    `json:"max_per_page"`
}

type objectList struct {
	Pagination Pagination   `json:"pagination"`
	Results    []ObjectInfo `json:"results"`
}

type diffList struct {
	Pagination Pagination `json:"pagination"`
	Results    []Change   `json:"results"`
}

type branchCreation struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}
