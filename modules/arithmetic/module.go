// Package arithmetic holds the binary number components.
package arithmetic

import (
	"github.com/specialistvlad/hopsgo/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// OnRunBinaryMultiply is the handler for /binmult.
func OnRunBinaryMultiply(a, b float64) (float64, error) {
	return a * b, nil
}

// OnRunAdd is the handler for /add.
func OnRunAdd(a, b float64) (float64, error) {
	return a + b, nil
}

// OnRunSubtract is the handler for /subtract.
func OnRunSubtract(a, b float64) (float64, error) {
	return a - b, nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("OnRunBinaryMultiply", OnRunBinaryMultiply)
	h.Register("OnRunAdd", OnRunAdd)
	h.Register("OnRunSubtract", OnRunSubtract)
}
