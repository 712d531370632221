// Package hops speaks the Grasshopper Hops wire protocol over HTTP.
//
// Hops discovers a component with GET /{route}, which returns the
// component's name, category and typed parameters, and solves it with a POST
// carrying one DataTree per input. Only the first item of the first branch of
// each tree is read; every output is answered as a single-item tree on
// branch "{0}".
//
// Numbers are written the way Python's repr writes floats ("5.0", "1e+16")
// so the response bytes match what existing Hops definitions already parse.
package hops
