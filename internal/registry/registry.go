package registry

import (
	"github.com/specialistvlad/hopsgo/internal/handlers"
	"github.com/specialistvlad/hopsgo/internal/manifest"
)

// DefaultPattern matches manifest files anywhere below the root.
const DefaultPattern = "**/*.hcl"

// Registry holds the loaded manifests and the handlers they refer to for a
// single application instance.
type Registry struct {
	handlers  *handlers.Handlers
	manifests []*manifest.Manifest
}

// New creates a Registry over an already populated handler store.
func New(h *handlers.Handlers) *Registry {
	if h == nil {
		h = handlers.New()
	}
	return &Registry{handlers: h}
}

// Manifests returns the loaded manifests in load order.
func (r *Registry) Manifests() []*manifest.Manifest {
	return append([]*manifest.Manifest(nil), r.manifests...)
}

// Handlers returns the handler store.
func (r *Registry) Handlers() *handlers.Handlers { return r.handlers }
