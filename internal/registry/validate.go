package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/specialistvlad/hopsgo/internal/component"
	"github.com/specialistvlad/hopsgo/internal/ctxlog"
)

// ErrHandlerParity is returned when manifests and registered handlers do not
// refer to each other one-to-one.
var ErrHandlerParity = errors.New("manifest and handler mismatch")

// Build performs a strict parity check between manifests and Go handlers,
// registers every component and freezes the result. All problems found are
// reported together.
func (r *Registry) Build(ctx context.Context) (*component.Registry, error) {
	logger := ctxlog.FromContext(ctx)
	var errs []error

	referenced := make(map[string]struct{}, len(r.manifests))
	b := component.NewBuilder()
	for _, m := range r.manifests {
		name := m.Lifecycle.OnRun
		referenced[name] = struct{}{}

		fn, ok := r.handlers.Get(name)
		if !ok {
			errs = append(errs, fmt.Errorf("component %q (%s): %w: handler %q is not registered", m.Route, m.FilePath, ErrHandlerParity, name))
			continue
		}
		if err := b.Register(m.Descriptor(fn)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.FilePath, err))
		}
	}

	for _, name := range r.handlers.Names() {
		if _, ok := referenced[name]; !ok {
			errs = append(errs, fmt.Errorf("%w: handler %q is not referenced by any manifest", ErrHandlerParity, name))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("registry validation failed: %w", errors.Join(errs...))
	}

	reg := b.Build()
	logger.Debug("Component registry built.", "components", reg.Len())
	return reg, nil
}

// Load is LoadManifests followed by Build.
func (r *Registry) Load(ctx context.Context, fsys fs.FS, pattern string) (*component.Registry, error) {
	if err := r.LoadManifests(ctx, fsys, pattern); err != nil {
		return nil, err
	}
	return r.Build(ctx)
}
