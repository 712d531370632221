// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// FindFiles returns every regular file in fsys matching the doublestar
// pattern (e.g. "**/*.hcl"), sorted so load order is deterministic.
func FindFiles(fsys fs.FS, pattern string) ([]string, error) {
	if pattern == "" {
		panic("pattern must not be empty")
	}

	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}
