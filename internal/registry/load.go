package registry

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/specialistvlad/hopsgo/internal/ctxlog"
	"github.com/specialistvlad/hopsgo/internal/fsutil"
	"github.com/specialistvlad/hopsgo/internal/manifest"
)

// LoadManifests parses every file in fsys matching pattern and appends the
// component manifests it finds.
func (r *Registry) LoadManifests(ctx context.Context, fsys fs.FS, pattern string) error {
	logger := ctxlog.FromContext(ctx)
	if pattern == "" {
		pattern = DefaultPattern
	}
	logger.Debug("Registry loading component manifests...", "pattern", pattern)

	filePaths, err := fsutil.FindFiles(fsys, pattern)
	if err != nil {
		logger.Error("Failed to search for manifests", "pattern", pattern, "error", err)
		return err
	}
	if len(filePaths) == 0 {
		logger.Warn("No manifest files found", "pattern", pattern)
		return nil
	}
	logger.Debug("Found manifest files to load", "files", filePaths)

	for _, filePath := range filePaths {
		src, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return fmt.Errorf("failed to read manifest %s: %w", filePath, err)
		}
		ms, err := manifest.Parse(ctx, src, filePath)
		if err != nil {
			return fmt.Errorf("failed to process manifest %s: %w", filePath, err)
		}
		r.manifests = append(r.manifests, ms...)
		logger.Debug("Loaded manifests from file", "file", filePath, "components", len(ms))
	}

	logger.Info("Manifests loaded.", "components", len(r.manifests))
	return nil
}
