// Package problems holds the worked textbook exercises. Each component fixes
// the units of its inputs and converts them before applying v = d/t.
package problems

import (
	"math"

	"github.com/specialistvlad/hopsgo/internal/formula"
	"github.com/specialistvlad/hopsgo/internal/handlers"
)

const (
	secondsPerMinute   = 60
	metersPerKilometer = 1000
	secondsPerYear     = 60 * 60 * 24 * 365
	cmPerKilometer     = 100000
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// OnRunToyTrain returns the distance in meters covered at speed m/s for
// minutes minutes.
func OnRunToyTrain(speed, minutes float64) (float64, error) {
	return formula.Finite(speed * minutes * secondsPerMinute)
}

// OnRunStudentCar returns the average speed in m/s for km kilometers driven
// in minutes minutes.
func OnRunStudentCar(km, minutes float64) (float64, error) {
	return formula.Div(km*metersPerKilometer, minutes*secondsPerMinute)
}

// OnRunRobot returns the time needed to cover distance at speed.
func OnRunRobot(speed, distance float64) (float64, error) {
	return formula.Div(distance, speed)
}

// OnRunSpeedConversion converts cm/s to km/year.
func OnRunSpeedConversion(cmPerSecond float64) (float64, error) {
	return formula.Finite(cmPerSecond * secondsPerYear / cmPerKilometer)
}

// OnRunCar returns the slope distance / time of a straight distance-time
// graph, which is also the instantaneous speed at every point on it.
func OnRunCar(distance, time float64) (float64, error) {
	return formula.Div(distance, time)
}

// OnRunFlagpole returns the straight-line displacement across a right
// triangle with the given legs.
func OnRunFlagpole(adjacent, opposite float64) (float64, error) {
	return formula.Finite(math.Hypot(adjacent, opposite))
}

// OnRunRunner reports average speed and average velocity for a run that ends
// where it started, so the displacement and the velocity are zero.
func OnRunRunner(distance, time float64) (speed, velocity float64, err error) {
	if speed, err = formula.Div(distance, time); err != nil {
		return 0, 0, err
	}
	if velocity, err = formula.Div(0, time); err != nil {
		return 0, 0, err
	}
	return speed, velocity, nil
}

// OnRunBoat returns the ground speed upstream and downstream. The speed
// relative to the water is accepted but not used.
func OnRunBoat(still, _, river float64) (upstream, downstream float64, err error) {
	return still - river, still + river, nil
}

// Register registers the handlers with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("OnRunToyTrain", OnRunToyTrain)
	h.Register("OnRunStudentCar", OnRunStudentCar)
	h.Register("OnRunRobot", OnRunRobot)
	h.Register("OnRunSpeedConversion", OnRunSpeedConversion)
	h.Register("OnRunCar", OnRunCar)
	h.Register("OnRunFlagpole", OnRunFlagpole)
	h.Register("OnRunRunner", OnRunRunner)
	h.Register("OnRunBoat", OnRunBoat)
}
