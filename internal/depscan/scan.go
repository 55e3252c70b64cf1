// Package depscan enumerates the files that act as rebuild triggers for a
// pipeline stage. The scan result decides whether a stage must re-run, never
// whether it is runnable: an extraction stage consumes a whole directory and
// always runs when triggered, even if the scan found nothing.
package depscan

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docpipe/internal/logfields"
	"git.home.luguber.info/inful/docpipe/internal/util/sets"
)

// Scan recursively enumerates regular files under dir whose names end with
// one of the given extensions (case-sensitive suffix match, no globbing).
// Paths in the result are absolute. A missing or empty directory yields an
// empty set, not an error; a source tree with zero matching files is valid.
func Scan(dir string, extensions []string) (sets.Set[string], error) {
	found := sets.New[string]()

	if dir == "" {
		return found, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		slog.Debug("Dependency scan root does not exist", logfields.Dir(dir))
		return found, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries (permission, dangling links) are skipped
			// rather than failing the whole scan.
			slog.Warn("Skipping unreadable entry during dependency scan",
				logfields.Path(path), logfields.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		// WalkDir does not follow symlinks, so link cycles cannot recurse;
		// a symlinked file itself is not a regular file and is skipped.
		if !d.Type().IsRegular() {
			return nil
		}
		if !matchesExtension(d.Name(), extensions) {
			return nil
		}
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return absErr
		}
		found.Add(abs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// matchesExtension reports whether name ends with one of the extensions.
func matchesExtension(name string, extensions []string) bool {
	for _, ext := range extensions {
		if ext == "" {
			continue
		}
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
