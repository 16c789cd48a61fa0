package indexer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/kiverlab/codegraph/internal/ignore"
)

// ignoreFiles lists the gitignore-style files a project may carry,
// checked in order; patterns from all that exist are combined.
var ignoreFiles = []string{".gitignore", ".contextdignore"}

// fallbackExcludes is used when a project carries none of ignoreFiles.
var fallbackExcludes = []string{
	"**/.git/**", "**/node_modules/**", "**/vendor/**",
	"**/dist/**", "**/build/**", "**/.next/**",
}

// walker discovers project files honoring include/exclude glob patterns.
// "**" crosses path separators, "*" does not, matching gobwas/glob's '/'
// separator semantics.
type walker struct {
	root    string
	include []glob.Glob
	exclude []glob.Glob
}

// newWalker compiles patterns and excludePatterns against root. An empty
// include list matches every file. excludePatterns is combined with
// patterns read from the project's .gitignore/.contextdignore (or
// fallbackExcludes when neither is present).
func newWalker(root string, patterns, excludePatterns []string) (*walker, error) {
	w := &walker{root: root}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compiling include pattern %q: %w", p, err)
		}
		w.include = append(w.include, g)
	}

	ignored, err := ignore.NewParser(ignoreFiles, fallbackExcludes).ParseProject(root)
	if err != nil {
		return nil, fmt.Errorf("reading ignore files: %w", err)
	}

	for _, p := range append(ignored, excludePatterns...) {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compiling exclude pattern %q: %w", p, err)
		}
		w.exclude = append(w.exclude, g)
	}
	return w, nil
}

// discover walks root and returns every accepted file's path relative to
// root, using forward slashes regardless of OS.
func (w *walker) discover() ([]string, error) {
	var files []string
	err := filepath.Walk(w.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if w.matchesAny(rel, w.exclude) || w.matchesAny(rel+"/**", w.exclude) || w.matchesAny("/"+rel, w.exclude) {
			return nil
		}
		if len(w.include) > 0 && !w.matchesAny(rel, w.include) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", w.root, err)
	}
	return files, nil
}

func (w *walker) matchesAny(path string, patterns []glob.Glob) bool {
	for _, p := range patterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}
