// Package trigonometry holds the right-triangle and polar decomposition
// components. Angles are in radians.
package trigonometry

import (
	"fmt"

	"github.com/specialistvlad/hopsgo/internal/formula"
	"github.com/specialistvlad/hopsgo/internal/geometry"
	"github.com/specialistvlad/hopsgo/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// OnRunTrigonometricFunctions returns sine, cosine and tangent of the angle
// opposite the given side as side ratios.
func OnRunTrigonometricFunctions(adjacent, opposite, hypotenuse float64) (sin, cos, tan float64, err error) {
	if sin, err = formula.Div(opposite, hypotenuse); err != nil {
		return 0, 0, 0, fmt.Errorf("sine: %w", err)
	}
	if cos, err = formula.Div(adjacent, hypotenuse); err != nil {
		return 0, 0, 0, fmt.Errorf("cosine: %w", err)
	}
	if tan, err = formula.Div(opposite, adjacent); err != nil {
		return 0, 0, 0, fmt.Errorf("tangent: %w", err)
	}
	return sin, cos, tan, nil
}

// OnRunVectorComponents decomposes length at angle. The vector input is part
// of the component's published signature but does not affect the result.
func OnRunVectorComponents(_ geometry.Vector3d, length, angle float64) (x, y float64, err error) {
	x, y = formula.Polar(length, angle)
	return x, y, nil
}

// OnRunGraphicalMethod adds two vectors given in polar form and returns the
// resultant with its magnitude and angle.
func OnRunGraphicalMethod(l1, a1, l2, a2 float64) (geometry.Vector3d, float64, float64, error) {
	x1, y1 := formula.Polar(l1, a1)
	x2, y2 := formula.Polar(l2, a2)
	r := geometry.NewVector(x1+x2, y1+y2, 0)
	theta, err := formula.Inclination(r.X, r.Y)
	if err != nil {
		return geometry.Vector3d{}, 0, 0, fmt.Errorf("resultant angle: %w", err)
	}
	return r, r.Length(), theta, nil
}

// OnRunDisplacementComponents decomposes a displacement of length at angle.
func OnRunDisplacementComponents(length, angle float64) (x, y float64, err error) {
	x, y = formula.Polar(length, angle)
	return x, y, nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("OnRunTrigonometricFunctions", OnRunTrigonometricFunctions)
	h.Register("OnRunVectorComponents", OnRunVectorComponents)
	h.Register("OnRunGraphicalMethod", OnRunGraphicalMethod)
	h.Register("OnRunDisplacementComponents", OnRunDisplacementComponents)
}
