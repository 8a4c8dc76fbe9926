// Package discover finds Python source files under an analysis root.
package discover

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// ErrRootNotFound reports that the analysis root does not exist or is not a
// directory. It is the only error that aborts an analysis.
var ErrRootNotFound = errors.New("root not found")

// DefaultIgnoreDirs is the set of directory basenames skipped when Options
// leaves IgnoreDirs nil.
var DefaultIgnoreDirs = []string{
	".git",
	"node_modules",
	"__pycache__",
	"venv",
	".venv",
	"dist",
	"build",
}

// Options configures a walk. The zero value walks with DefaultIgnoreDirs
// and no gitignore filtering. An explicit empty IgnoreDirs slice disables
// directory skipping entirely.
type Options struct {
	IgnoreDirs   []string
	UseGitignore bool
}

// Files walks root and returns the relative slash-separated paths of every
// .py file below it, in lexicographic order. Directories whose basename is
// in the ignore set are not descended into; nothing else is skipped, hidden
// entries included. Symlinks and other non-regular files are ignored.
func Files(root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}

	ignoreDirs := opts.IgnoreDirs
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}
	skip := make(map[string]struct{}, len(ignoreDirs))
	for _, d := range ignoreDirs {
		skip[d] = struct{}{}
	}

	var gi *ignore.GitIgnore
	if opts.UseGitignore {
		gi = loadGitignore(root)
	}

	var results []string

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			slog.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, ok := skip[d.Name()]; ok {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks and other non-regular files cannot be parsed and could
		// introduce cycles, so they never enter the file set.
		if !d.Type().IsRegular() {
			return nil
		}

		if !strings.HasSuffix(d.Name(), ".py") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		results = append(results, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(results)
	return results, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
