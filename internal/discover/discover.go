// Package discover finds parseable source files under a project root,
// respecting .gitignore and skipping well-known junk directories.
package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/henrythdu/GraphMigrator/internal/parser"
)

// FileEntry is one discovered source file.
type FileEntry struct {
	// Path is relative to the root, slash-separated. It becomes the file
	// identifier on every symbol and edge.
	Path     string
	Abs      string
	Language string
}

var skipDirs = map[string]struct{}{
	".git":          {},
	".hg":           {},
	".svn":          {},
	"node_modules":  {},
	"vendor":        {},
	"__pycache__":   {},
	"venv":          {},
	".venv":         {},
	"dist":          {},
	"build":         {},
	".mypy_cache":   {},
	".pytest_cache": {},
}

// Files walks root and returns every file a language adapter can parse,
// sorted by relative path. If languages is non-empty only those are
// kept; extraIgnore names additional directories to skip.
func Files(root string, languages []string, extraIgnore []string) ([]FileEntry, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	langSet := make(map[string]struct{}, len(languages))
	for _, l := range languages {
		langSet[l] = struct{}{}
	}
	extra := make(map[string]struct{}, len(extraIgnore))
	for _, d := range extraIgnore {
		extra[d] = struct{}{}
	}

	var gi *ignore.GitIgnore
	if _, statErr := os.Stat(filepath.Join(absRoot, ".gitignore")); statErr == nil {
		gi, _ = ignore.CompileIgnoreFile(filepath.Join(absRoot, ".gitignore"))
	}

	var results []FileEntry
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		name := d.Name()

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if _, skip := skipDirs[name]; skip {
				return filepath.SkipDir
			}
			if _, skip := extra[name]; skip {
				return filepath.SkipDir
			}
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		lang := parser.LanguageForExtension(filepath.Ext(name))
		if lang == "" {
			return nil
		}
		if len(langSet) > 0 {
			if _, ok := langSet[lang]; !ok {
				return nil
			}
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		results = append(results, FileEntry{Path: rel, Abs: path, Language: lang})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}
