// Package vectors holds the vector construction and addition components.
// Points are turned into displacement vectors head minus tail.
package vectors

import (
	"fmt"

	"github.com/specialistvlad/hopsgo/internal/formula"
	"github.com/specialistvlad/hopsgo/internal/geometry"
	"github.com/specialistvlad/hopsgo/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// OnRunVector returns the vector from a to b.
func OnRunVector(a, b geometry.Point3d) (geometry.Vector3d, error) {
	return a.VectorTo(b), nil
}

// OnRunVectorAddition places b→c at the head of a→b and returns both legs
// and their resultant. It serves /vector_addition_02 and /tip_to_tail_01.
func OnRunVectorAddition(a, b, c geometry.Point3d) (v1, v2, r geometry.Vector3d, err error) {
	v1, v2 = a.VectorTo(b), b.VectorTo(c)
	return v1, v2, v1.Add(v2), nil
}

// OnRunTipToTail chains three legs through four points.
func OnRunTipToTail(a, b, c, d geometry.Point3d) (v1, v2, v3, r geometry.Vector3d, err error) {
	v1, v2, v3 = a.VectorTo(b), b.VectorTo(c), c.VectorTo(d)
	return v1, v2, v3, geometry.Sum(v1, v2, v3), nil
}

// OnRunParallelogram uses a→b and a→c as adjacent sides; the resultant is
// the diagonal from a.
func OnRunParallelogram(a, b, c geometry.Point3d) (v1, v2, r geometry.Vector3d, err error) {
	v1, v2 = a.VectorTo(b), a.VectorTo(c)
	return v1, v2, v1.Add(v2), nil
}

// OnRunVectorSubtraction returns a→b, b→c and their difference.
func OnRunVectorSubtraction(a, b, c geometry.Point3d) (v1, v2, r geometry.Vector3d, err error) {
	v1, v2 = a.VectorTo(b), b.VectorTo(c)
	return v1, v2, v1.Sub(v2), nil
}

// OnRunComponentMethod adds three vectors component by component.
func OnRunComponentMethod(v1, v2, v3 geometry.Vector3d) (geometry.Vector3d, error) {
	return geometry.Sum(v1, v2, v3), nil
}

// OnRunComponentMethodPolar adds three vectors and also reports the
// resultant's magnitude and its angle atan(Ry/Rx) in radians.
func OnRunComponentMethodPolar(v1, v2, v3 geometry.Vector3d) (geometry.Vector3d, float64, float64, error) {
	r := geometry.Sum(v1, v2, v3)
	theta, err := formula.Inclination(r.X, r.Y)
	if err != nil {
		return geometry.Vector3d{}, 0, 0, fmt.Errorf("resultant angle: %w", err)
	}
	return r, r.Length(), theta, nil
}

// OnRunUnitVector scales v to length one.
func OnRunUnitVector(v geometry.Vector3d) (geometry.Vector3d, error) {
	return v.Unitize()
}

// Register registers the handlers with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("OnRunVector", OnRunVector)
	h.Register("OnRunVectorAddition", OnRunVectorAddition)
	h.Register("OnRunTipToTail", OnRunTipToTail)
	h.Register("OnRunParallelogram", OnRunParallelogram)
	h.Register("OnRunVectorSubtraction", OnRunVectorSubtraction)
	h.Register("OnRunComponentMethod", OnRunComponentMethod)
	h.Register("OnRunComponentMethodPolar", OnRunComponentMethodPolar)
	h.Register("OnRunUnitVector", OnRunUnitVector)
}
