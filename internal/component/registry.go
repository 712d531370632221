package component

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Param describes one input or output of a component.
type Param struct {
	Name        string
	Nickname    string
	Description string
	Type        Type
	// Default is used when the caller omits the argument. Only inputs may
	// carry one.
	Default *cty.Value
}

// Descriptor is everything the registry knows about one component.
type Descriptor struct {
	Route       string
	Name        string
	Nickname    string
	Description string
	Category    string
	Subcategory string
	Inputs      []Param
	Outputs     []Param
	// Handler is a Go func whose parameters match Inputs (optionally preceded
	// by a context.Context) and whose results match Outputs followed by error.
	Handler any

	bound *boundHandler
}

// reservedRoutes collide with protocol endpoints.
var reservedRoutes = map[string]struct{}{
	"/":          {},
	"/solve":     {},
	"/help":      {},
	"/healthz":   {},
	"/metrics":   {},
	"/socket.io": {},
}

var routePattern = regexp.MustCompile(`^/[A-Za-z0-9_.\-]+$`)

// NormalizeRoute trims whitespace and trailing slashes and guarantees a single
// leading slash, so "add", "/add" and "/add/" address the same component.
func NormalizeRoute(route string) string {
	r := strings.Trim(strings.TrimSpace(route), "/")
	return "/" + r
}

// Builder collects descriptors during startup. It is not safe for concurrent
// use; freeze it with Build before serving.
type Builder struct {
	byRoute map[string]*Descriptor
	order   []string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{byRoute: make(map[string]*Descriptor)}
}

// Register validates d and adds it under its normalized route. A route that
// is already present yields a *DuplicateRouteError and the first
// registration is kept.
func (b *Builder) Register(d Descriptor) error {
	route := NormalizeRoute(d.Route)
	if !routePattern.MatchString(route) {
		return &InvalidDescriptorError{Route: route, Reason: "route must be a single path segment"}
	}
	if _, ok := reservedRoutes[route]; ok {
		return &InvalidDescriptorError{Route: route, Reason: "route is reserved by the protocol"}
	}
	if _, exists := b.byRoute[route]; exists {
		return &DuplicateRouteError{Route: route}
	}

	desc, err := prepare(route, d)
	if err != nil {
		return err
	}

	slog.Debug("Registering component.", "route", route, "inputs", len(desc.Inputs), "outputs", len(desc.Outputs))
	b.byRoute[route] = desc
	b.order = append(b.order, route)
	return nil
}

// MustRegister is Register for statically known descriptors.
func (b *Builder) MustRegister(d Descriptor) {
	if err := b.Register(d); err != nil {
		panic(err)
	}
}

// Lookup finds a descriptor registered so far.
func (b *Builder) Lookup(route string) (*Descriptor, error) {
	return lookup(b.byRoute, route)
}

// Len reports how many components are registered.
func (b *Builder) Len() int { return len(b.order) }

// Build freezes the registered components into an immutable Registry. The
// builder can keep registering afterwards without affecting the result.
func (b *Builder) Build() *Registry {
	reg := &Registry{
		byRoute: make(map[string]*Descriptor, len(b.byRoute)),
		order:   append([]string(nil), b.order...),
	}
	for route, d := range b.byRoute {
		reg.byRoute[route] = d
	}
	return reg
}

// Registry is the read-only route table used by the Dispatcher. It is safe
// for concurrent use.
type Registry struct {
	byRoute map[string]*Descriptor
	order   []string
}

// Lookup returns the descriptor for route or an *UnknownRouteError.
// Descriptors are shared and must be treated as read-only.
func (r *Registry) Lookup(route string) (*Descriptor, error) {
	return lookup(r.byRoute, route)
}

// Routes returns the registered routes in registration order.
func (r *Registry) Routes() []string {
	return append([]string(nil), r.order...)
}

// SortedRoutes returns the registered routes in lexical order.
func (r *Registry) SortedRoutes() []string {
	routes := r.Routes()
	sort.Strings(routes)
	return routes
}

// Descriptors returns the descriptors in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.order))
	for _, route := range r.order {
		out = append(out, r.byRoute[route])
	}
	return out
}

// Len reports how many components are registered.
func (r *Registry) Len() int { return len(r.order) }

func lookup(m map[string]*Descriptor, route string) (*Descriptor, error) {
	route = NormalizeRoute(route)
	if d, ok := m[route]; ok {
		return d, nil
	}
	return nil, &UnknownRouteError{Route: route}
}

// prepare copies d, checks its params and binds the handler.
func prepare(route string, d Descriptor) (*Descriptor, error) {
	desc := d
	desc.Route = route
	desc.Inputs = append([]Param(nil), d.Inputs...)
	desc.Outputs = append([]Param(nil), d.Outputs...)
	if desc.Name == "" {
		desc.Name = strings.TrimPrefix(route, "/")
	}
	if desc.Nickname == "" {
		desc.Nickname = desc.Name
	}

	if len(desc.Outputs) == 0 {
		return nil, &InvalidDescriptorError{Route: route, Reason: "at least one output is required"}
	}
	if err := checkParams(route, "input", desc.Inputs); err != nil {
		return nil, err
	}
	if err := checkParams(route, "output", desc.Outputs); err != nil {
		return nil, err
	}
	for i, p := range desc.Inputs {
		if p.Default == nil {
			continue
		}
		if _, err := decodeArg(p, *p.Default); err != nil {
			return nil, &InvalidDescriptorError{Route: route, Reason: fmt.Sprintf("input %d (%s): invalid default: %v", i, p.Name, err)}
		}
	}
	for i, p := range desc.Outputs {
		if p.Default != nil {
			return nil, &InvalidDescriptorError{Route: route, Reason: fmt.Sprintf("output %d (%s) cannot have a default", i, p.Name)}
		}
	}

	bound, err := bindHandler(d.Handler, desc.Inputs, desc.Outputs)
	if err != nil {
		return nil, &InvalidDescriptorError{Route: route, Reason: err.Error()}
	}
	desc.bound = bound
	return &desc, nil
}

func checkParams(route, kind string, params []Param) error {
	seen := make(map[string]struct{}, len(params))
	for i, p := range params {
		if p.Name == "" {
			return &InvalidDescriptorError{Route: route, Reason: fmt.Sprintf("%s %d has no name", kind, i)}
		}
		if !p.Type.Valid() {
			return &InvalidDescriptorError{Route: route, Reason: fmt.Sprintf("%s %q has invalid type %s", kind, p.Name, p.Type)}
		}
		if _, dup := seen[p.Name]; dup {
			return &InvalidDescriptorError{Route: route, Reason: fmt.Sprintf("%s %q declared twice", kind, p.Name)}
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}
