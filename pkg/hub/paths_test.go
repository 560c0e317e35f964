package hub

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvalBranchName(t *testing.T) {
	t.Parallel()

	sha := "0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c4b5a69788796a5b4c3d2e1f0"
	require.Equal(t, "eval-main-0f1e2d3", EvalBranchName("main", sha))
	require.Equal(t, "abc", ShortSHA("abc"))
}

func TestPaths(t *testing.T) {
	t.Parallel()

	require.Equal(t, "lakefs://repo/main/default/delta/train/", TablePath("repo", "main", "default", "train"))
	require.Equal(t, "lakefs://repo/eval-main-abcdef0/default/eval/test/run/delta",
		EvalTablePath("repo", "eval-main-abcdef0", "default", "test", "run"))
	require.Equal(t, "lakefs://repo/eval-main-abcdef0/default/eval/test/run/metrics.json",
		EvalMetricsPath("repo", "eval-main-abcdef0", "default", "test", "run"))
	require.Equal(t, "conf/model/resnet.yaml", configPath("conf/model", "resnet"))
	require.Equal(t, "resnet.yaml", configPath("", "resnet"))
}

func TestParseSplit(t *testing.T) {
	t.Parallel()

	sp, ok := ParseSplit("validation")
	require.True(t, ok)
	require.Equal(t, SplitValidation, sp)

	_, ok = ParseSplit("holdout")
	require.False(t, ok)
}

func TestStorageOptions(t *testing.T) {
	t.Parallel()

	opts := StorageOptions("http://lakefs:8000", StorageCredentials{AccessKeyID: "id", SecretAccessKey: "secret"})
	require.Equal(t, map[string]string{
		"AWS_ACCESS_KEY_ID":          "id",
		"AWS_SECRET_ACCESS_KEY":      "secret",
		"AWS_ENDPOINT":               "http://lakefs:8000",
		"AWS_REGION":                 "stub",
		"AWS_ALLOW_HTTP":             "true",
		"AWS_S3_ALLOW_UNSAFE_RENAME": "true",
	}, opts)
}

func TestParseMapping(t *testing.T) {
	t.Parallel()

	m, err := parseMapping("a.yaml", []byte("a: 1\nb:\n  c: x\n"))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": float64(1), "b": map[string]any{"c": "x"}}, m)

	_, err = parseMapping("a.yaml", []byte("[1, 2]"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = parseMapping("a.yaml", []byte("a: [unclosed"))
	require.ErrorAs(t, err, &verr)
}

func TestCollectFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, f := range []string{"a/x.parquet", "a/b/y.parquet", "z.txt"} {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	files, err := CollectFiles(root, "**/*.parquet", "cfg/delta")
	require.NoError(t, err)
	require.Equal(t, []FileUpload{
		{Local: filepath.Join(root, "a", "b", "y.parquet"), Remote: "cfg/delta/a/b/y.parquet"},
		{Local: filepath.Join(root, "a", "x.parquet"), Remote: "cfg/delta/a/x.parquet"},
	}, files)

	_, err = CollectFiles(root, "[", "")
	require.Error(t, err)
}
