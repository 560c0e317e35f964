package hub

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ghodss/yaml"
)

// FileUpload maps a local file to a path relative to the branch root.
type FileUpload struct {
	Local  string
	Remote string
}

// CollectFiles globs root with a doublestar pattern (for example
// "**/*.parquet") and maps each match under remotePrefix, keeping its path
// relative to root.
func CollectFiles(root, pattern, remotePrefix string) ([]FileUpload, error) {
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("collect files %s/%s: %w", root, pattern, err)
	}
	slices.Sort(matches)

	files := make([]FileUpload, 0, len(matches))
	for _, m := range matches {
		files = append(files, FileUpload{
			Local:  filepath.Join(root, filepath.FromSlash(m)),
			Remote: path.Join(remotePrefix, m),
		})
	}
	return files, nil
}

// parseMapping decodes YAML (or JSON) that must be a mapping at the top level.
func parseMapping(p string, data []byte) (map[string]any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, &ValidationError{Path: p, Message: err.Error()}
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, &ValidationError{Path: p, Message: fmt.Sprintf("expected a mapping, got %T", v)}
	}
	return m, nil
}
