// Package registry provides the central "glue" between component manifests
// and the Go handlers that implement them.
//
// Manifests name a handler by its lifecycle string (e.g. "OnRunAdd"); modules
// register funcs under those names in a handlers.Handlers store. At startup
// the registry loads every manifest, checks that both sides are in sync, and
// builds the immutable component.Registry the dispatcher serves from. A
// manifest without a handler, a handler nobody references, a duplicate route
// or a signature that does not match the declared params all fail startup.
package registry
