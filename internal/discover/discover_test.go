package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.py":              "def main():\n    pass\n",
		"pkg/util.go":          "package pkg\n",
		"docs/readme.md":       "not source",
		"node_modules/dep.py":  "skipped",
		".cache/tmp.py":        "skipped",
		"__pycache__/m.pyc":    "skipped",
		"generated/out.py":     "ignored via gitignore",
		".gitignore":           "generated/\n",
		"scripts/extra/run.py": "def run():\n    pass\n",
	})

	t.Run("finds parseable files sorted by path", func(t *testing.T) {
		files, err := Files(root, nil, nil)
		require.NoError(t, err)

		var paths []string
		for _, f := range files {
			paths = append(paths, f.Path)
		}
		assert.Equal(t, []string{"main.py", "pkg/util.go", "scripts/extra/run.py"}, paths)
	})

	t.Run("entries carry language and absolute path", func(t *testing.T) {
		files, err := Files(root, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "python", files[0].Language)
		assert.Equal(t, "go", files[1].Language)
		assert.True(t, filepath.IsAbs(files[0].Abs))
	})

	t.Run("language filter", func(t *testing.T) {
		files, err := Files(root, []string{"go"}, nil)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "pkg/util.go", files[0].Path)
	})

	t.Run("extra ignore directories", func(t *testing.T) {
		files, err := Files(root, nil, []string{"scripts"})
		require.NoError(t, err)
		for _, f := range files {
			assert.NotContains(t, f.Path, "scripts/")
		}
	})
}

func TestFiles_EmptyRoot(t *testing.T) {
	files, err := Files(t.TempDir(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}
