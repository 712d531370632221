// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package component is the core of hopsgo: the component registry and the
// dispatcher that runs a component for one request.
//
// A component is a stateless computation addressed by a route (for example
// "/add"). Its Descriptor declares ordered, typed inputs and outputs and
// binds a plain Go function as the handler:
//
//	func(a, b float64) (float64, error)
//	func(ctx context.Context, a, b geometry.Point3d) (geometry.Vector3d, error)
//	func(a, b, c geometry.Point3d) (v1, v2, v3 geometry.Vector3d, err error)
//
// Registration happens once, through a Builder, and checks that the
// function's parameters and results line up with the declared params in
// count, order and Go type. Build freezes the result into a Registry that is
// never mutated again and can be shared by any number of goroutines.
//
// Dispatch is a single pass: look up the route, decode each cty.Value
// argument into the declared semantic type, call the handler, and encode the
// results back into cty.Values, one per declared output. Every failure is
// reported with one of the typed errors in errors.go and nothing is retried.
package component
