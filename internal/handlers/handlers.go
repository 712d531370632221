// Package handlers is the Go side of component registration: modules put
// their handler funcs here under the lifecycle names their manifests
// reference (for example "OnRunAdd").
package handlers

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
)

// Module is implemented by every component module.
type Module interface {
	Register(h *Handlers)
}

// Handlers holds all the registered handler funcs by lifecycle name.
type Handlers struct {
	all map[string]any
}

// New creates an empty Handlers store.
func New() *Handlers {
	return &Handlers{all: make(map[string]any)}
}

// Register stores fn under name. Handler names are fixed at compile time, so
// a duplicate or a non-func is a programming error and panics.
func (h *Handlers) Register(name string, fn any) {
	if _, exists := h.all[name]; exists {
		panic(fmt.Sprintf("handler with name '%s' already registered", name))
	}
	if fn == nil || reflect.TypeOf(fn).Kind() != reflect.Func {
		panic(fmt.Sprintf("handler '%s' must be a func, got %T", name, fn))
	}
	slog.Debug("Registering component handler.", "name", name)
	h.all[name] = fn
}

// Get returns the handler registered under name.
func (h *Handlers) Get(name string) (any, bool) {
	fn, ok := h.all[name]
	return fn, ok
}

// Names returns all registered handler names, sorted.
func (h *Handlers) Names() []string {
	names := make([]string, 0, len(h.all))
	for name := range h.all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports how many handlers are registered.
func (h *Handlers) Len() int { return len(h.all) }

// Load registers every module into a fresh Handlers store.
func Load(modules ...Module) *Handlers {
	h := New()
	for _, m := range modules {
		m.Register(h)
	}
	return h
}
