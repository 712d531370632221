// Package kinematics holds the speed, velocity and displacement components.
//
// Speed and velocity are computed over plain numbers: distance is a path
// length, displacement is final minus initial position along one axis.
package kinematics

import (
	"github.com/specialistvlad/hopsgo/internal/formula"
	"github.com/specialistvlad/hopsgo/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// OnRunAverageSpeed returns distance / time.
func OnRunAverageSpeed(distance, time float64) (float64, error) {
	return formula.Div(distance, time)
}

// OnRunInstantaneousSpeed evaluates the sample motion v(t) = 3t² + 2t + 1.
func OnRunInstantaneousSpeed(t float64) (float64, error) {
	return formula.Finite(formula.Quadratic(3, 2, 1, t))
}

// OnRunDisplacement returns xf - xi.
func OnRunDisplacement(xi, xf float64) (float64, error) {
	return xf - xi, nil
}

// OnRunAverageVelocity returns (xf - xi) / (tf - ti).
func OnRunAverageVelocity(xi, xf, ti, tf float64) (float64, error) {
	return formula.Div(xf-xi, tf-ti)
}

// OnRunInstantaneousVelocity uses the same sample motion as the speed
// component.
func OnRunInstantaneousVelocity(t float64) (float64, error) {
	return formula.Finite(formula.Quadratic(3, 2, 1, t))
}

// OnRunMathematicalOperations divides a length by a time.
func OnRunMathematicalOperations(length, time float64) (float64, error) {
	return formula.Div(length, time)
}

// Register registers the handlers with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("OnRunAverageSpeed", OnRunAverageSpeed)
	h.Register("OnRunInstantaneousSpeed", OnRunInstantaneousSpeed)
	h.Register("OnRunDisplacement", OnRunDisplacement)
	h.Register("OnRunAverageVelocity", OnRunAverageVelocity)
	h.Register("OnRunInstantaneousVelocity", OnRunInstantaneousVelocity)
	h.Register("OnRunMathematicalOperations", OnRunMathematicalOperations)
}
