package formula

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDiv(t *testing.T) {
	t.Parallel()

	got, err := Div(5, 2)
	require.NoError(t, err)
	require.Equal(t, 2.5, got)

	_, err = Div(5, 0)
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = Div(math.MaxFloat64, math.SmallestNonzeroFloat64)
	require.ErrorIs(t, err, ErrNonFinite)
}

func TestFinite(t *testing.T) {
	t.Parallel()

	_, err := Finite(math.NaN())
	require.ErrorIs(t, err, ErrNonFinite)
	_, err = Finite(math.Inf(-1))
	require.ErrorIs(t, err, ErrNonFinite)

	v, err := Finite(-3.5)
	require.NoError(t, err)
	require.Equal(t, -3.5, v)
}

func TestInclination(t *testing.T) {
	t.Parallel()

	a, err := Inclination(1, 1)
	require.NoError(t, err)
	require.InDelta(t, math.Pi/4, a, 1e-12)

	_, err = Inclination(0, 1)
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestQuadratic(t *testing.T) {
	t.Parallel()
	require.Equal(t, 17.0, Quadratic(3, 2, 1, 2))
}

func TestPolarPreservesLength(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		length := rapid.Float64Range(0, 1e6).Draw(rt, "length")
		angle := rapid.Float64Range(-2*math.Pi, 2*math.Pi).Draw(rt, "angle")

		x, y := Polar(length, angle)
		if got := math.Hypot(x, y); math.Abs(got-length) > 1e-6*math.Max(1, length) {
			rt.Fatalf("hypot(%v, %v) = %v, want %v", x, y, got, length)
		}
	})
}
