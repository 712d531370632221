// Package formula holds the partial arithmetic shared by component handlers.
// Every helper that can fail reports it as an error instead of producing an
// infinity or NaN.
package formula

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDivisionByZero is returned by Div for a zero denominator.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrNonFinite marks a computation that produced NaN or an infinity.
	ErrNonFinite = errors.New("non-finite result")
)

// Div returns num/den.
func Div(num, den float64) (float64, error) {
	if den == 0 {
		return 0, fmt.Errorf("%g / %g: %w", num, den, ErrDivisionByZero)
	}
	return Finite(num / den)
}

// Finite passes f through unless it is NaN or infinite.
func Finite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v: %w", f, ErrNonFinite)
	}
	return f, nil
}

// Polar decomposes a length at angle (radians, counterclockwise from +x)
// into its x and y components.
func Polar(length, angle float64) (x, y float64) {
	return length * math.Cos(angle), length * math.Sin(angle)
}

// Inclination returns atan(y/x), the angle of a resultant with the x axis.
// It fails when x is zero, like the textbook quotient it stands for.
func Inclination(x, y float64) (float64, error) {
	ratio, err := Div(y, x)
	if err != nil {
		return 0, err
	}
	return math.Atan(ratio), nil
}

// Quadratic evaluates a*t^2 + b*t + c.
func Quadratic(a, b, c, t float64) float64 {
	return a*t*t + b*t + c
}
