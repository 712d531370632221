// Package curves holds the curve and surface components.
package curves

import (
	"fmt"

	"github.com/specialistvlad/hopsgo/internal/geometry"
	"github.com/specialistvlad/hopsgo/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// OnRunPointAt evaluates curve at parameter t of its domain.
func OnRunPointAt(curve geometry.Curve, t float64) (geometry.Point3d, error) {
	return curve.PointAt(t), nil
}

// OnRunRuledSurface builds the ruled surface between the lines a→b and c→d.
func OnRunRuledSurface(a, b, c, d geometry.Point3d) (geometry.Surface, error) {
	srf, err := geometry.CreateRuledSurface(geometry.NewLineCurve(a, b), geometry.NewLineCurve(c, d))
	if err != nil {
		return nil, fmt.Errorf("ruled surface: %w", err)
	}
	return srf, nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("OnRunPointAt", OnRunPointAt)
	h.Register("OnRunRuledSurface", OnRunRuledSurface)
}
