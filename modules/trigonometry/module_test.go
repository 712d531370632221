package trigonometry_test

import (
	"math"
	"testing"

	"github.com/specialistvlad/hopsgo/internal/component"
	"github.com/specialistvlad/hopsgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrigonometricFunctions(t *testing.T) {
	t.Parallel()
	h := testutil.NewHarness(t)

	got := h.Numbers(t, "/trigonometric_functions_04", testutil.Ns(3, 4, 5)...)
	assert.InDeltaSlice(t, []float64{0.8, 0.6, 4.0 / 3.0}, got, 1e-12)

	_, err := h.Call("/trigonometric_functions_04", testutil.Ns(0, 4, 5)...)
	require.ErrorIs(t, err, component.ErrHandlerExecution)
}

func TestPolarDecomposition(t *testing.T) {
	t.Parallel()
	h := testutil.NewHarness(t)

	got := h.Numbers(t, "/displacement_01", testutil.Ns(2, math.Pi/2)...)
	assert.InDeltaSlice(t, []float64{0, 2}, got, 1e-12)

	// The vector argument does not take part in the decomposition.
	for _, v := range [][3]float64{{0, 0, 0}, {9, 9, 9}} {
		got = h.Numbers(t, "/vector_components_03", testutil.P(v[0], v[1], v[2]), testutil.N(2), testutil.N(0))
		assert.InDeltaSlice(t, []float64{2, 0}, got, 1e-12)
	}
}

func TestGraphicalMethod(t *testing.T) {
	t.Parallel()
	h := testutil.NewHarness(t)

	out, err := h.Call("/graphical_method_02", testutil.Ns(3, 0, 4, math.Pi/2)...)
	require.NoError(t, err)
	require.Len(t, out, 3)

	x, y, z, err := component.TripleValue(out[0])
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 4, 0}, []float64{x, y, z}, 1e-12)

	mag, err := component.NumberValue(out[1])
	require.NoError(t, err)
	assert.InDelta(t, 5, mag, 1e-12)

	angle, err := component.NumberValue(out[2])
	require.NoError(t, err)
	assert.InDelta(t, math.Atan2(4, 3), angle, 1e-12)
}
