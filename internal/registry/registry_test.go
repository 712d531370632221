package registry

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/specialistvlad/hopsgo/internal/component"
	"github.com/specialistvlad/hopsgo/internal/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const addManifest = `
component "/add" {
  name = "Add"
  lifecycle { on_run = "OnRunAdd" }
  input "A" { type = number }
  input "B" { type = number }
  output "Sum" { type = number }
}
`

const subtractManifest = `
component "/subtract" {
  lifecycle { on_run = "OnRunSubtract" }
  input "A" { type = number }
  input "B" { type = number }
  output "Difference" { type = number }
}
`

func arithmetic() *handlers.Handlers {
	h := handlers.New()
	h.Register("OnRunAdd", func(a, b float64) (float64, error) { return a + b, nil })
	h.Register("OnRunSubtract", func(a, b float64) (float64, error) { return a - b, nil })
	return h
}

func TestLoad_Success(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"arithmetic/add.hcl":      {Data: []byte(addManifest)},
		"arithmetic/subtract.hcl": {Data: []byte(subtractManifest)},
		"arithmetic/notes.txt":    {Data: []byte("not a manifest")},
	}

	r := New(arithmetic())
	reg, err := r.Load(context.Background(), fsys, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/add", "/subtract"}, reg.Routes())
	assert.Len(t, r.Manifests(), 2)

	d := component.NewDispatcher(reg)
	out, err := d.Dispatch(context.Background(), "/subtract", []cty.Value{cty.NumberIntVal(5), cty.NumberIntVal(3)})
	require.NoError(t, err)
	f, err := component.NumberValue(out[0])
	require.NoError(t, err)
	assert.Equal(t, 2.0, f)
}

func TestLoad_ParityFailures(t *testing.T) {
	t.Parallel()

	t.Run("manifest without handler", func(t *testing.T) {
		t.Parallel()
		h := handlers.New()
		h.Register("OnRunAdd", func(a, b float64) (float64, error) { return a + b, nil })
		fsys := fstest.MapFS{
			"a.hcl": {Data: []byte(addManifest)},
			"b.hcl": {Data: []byte(subtractManifest)},
		}
		_, err := New(h).Load(context.Background(), fsys, DefaultPattern)
		require.ErrorIs(t, err, ErrHandlerParity)
		assert.Contains(t, err.Error(), "OnRunSubtract")
	})

	t.Run("handler without manifest", func(t *testing.T) {
		t.Parallel()
		fsys := fstest.MapFS{"a.hcl": {Data: []byte(addManifest)}}
		_, err := New(arithmetic()).Load(context.Background(), fsys, DefaultPattern)
		require.ErrorIs(t, err, ErrHandlerParity)
		assert.Contains(t, err.Error(), "not referenced")
	})

	t.Run("duplicate route across files", func(t *testing.T) {
		t.Parallel()
		h := handlers.New()
		h.Register("OnRunAdd", func(a, b float64) (float64, error) { return a + b, nil })
		fsys := fstest.MapFS{
			"a.hcl": {Data: []byte(addManifest)},
			"b.hcl": {Data: []byte(addManifest)},
		}
		_, err := New(h).Load(context.Background(), fsys, DefaultPattern)
		require.ErrorIs(t, err, component.ErrDuplicateRoute)
		assert.Contains(t, err.Error(), "b.hcl")
	})

	t.Run("signature mismatch", func(t *testing.T) {
		t.Parallel()
		h := handlers.New()
		h.Register("OnRunAdd", func(a float64) (float64, error) { return a, nil })
		fsys := fstest.MapFS{"a.hcl": {Data: []byte(addManifest)}}
		_, err := New(h).Load(context.Background(), fsys, DefaultPattern)
		require.ErrorIs(t, err, component.ErrInvalidDescriptor)
	})

	t.Run("bad manifest", func(t *testing.T) {
		t.Parallel()
		fsys := fstest.MapFS{"a.hcl": {Data: []byte(`component "/x" {`)}}
		_, err := New(nil).Load(context.Background(), fsys, DefaultPattern)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "a.hcl")
	})
}

func TestLoad_NoFiles(t *testing.T) {
	t.Parallel()

	reg, err := New(nil).Load(context.Background(), fstest.MapFS{}, DefaultPattern)
	require.NoError(t, err)
	assert.Zero(t, reg.Len())
}
