package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/hopsgo/internal/component"
	"github.com/specialistvlad/hopsgo/internal/ctxlog"
	"github.com/specialistvlad/hopsgo/internal/handlers"
	"github.com/specialistvlad/hopsgo/internal/registry"
	"github.com/specialistvlad/hopsgo/modules"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// T is the part of testing.TB the result helpers use. *rapid.T satisfies it.
type T interface {
	require.TestingT
	Helper()
}

// Harness is a dispatcher built from the embedded manifests and the core
// modules, with a debug logger writing into Logs.
type Harness struct {
	Registry   *component.Registry
	Dispatcher *component.Dispatcher
	Logs       *SafeBuffer
	Ctx        context.Context
}

// NewHarness builds the production registry the same way the server does.
func NewHarness(t testing.TB, opts ...component.Option) *Harness {
	t.Helper()

	logs := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	reg, err := registry.New(handlers.Load(modules.Core()...)).Load(ctx, modules.Manifests(), modules.ManifestPattern)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("HOPSGO_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return &Harness{
		Registry:   reg,
		Dispatcher: component.NewDispatcher(reg, opts...),
		Logs:       logs,
		Ctx:        ctx,
	}
}

// Call dispatches route with args.
func (h *Harness) Call(route string, args ...cty.Value) ([]cty.Value, error) {
	return h.Dispatcher.Dispatch(h.Ctx, route, args)
}

// Numbers dispatches route and requires every result to be a number.
func (h *Harness) Numbers(t T, route string, args ...cty.Value) []float64 {
	t.Helper()
	out, err := h.Call(route, args...)
	require.NoError(t, err)
	fs := make([]float64, len(out))
	for i, v := range out {
		fs[i], err = component.NumberValue(v)
		require.NoError(t, err, "result %d of %s", i, route)
	}
	return fs
}

// Triples dispatches route and decodes every result as X, Y, Z.
func (h *Harness) Triples(t T, route string, args ...cty.Value) [][3]float64 {
	t.Helper()
	out, err := h.Call(route, args...)
	require.NoError(t, err)
	ts := make([][3]float64, len(out))
	for i, v := range out {
		x, y, z, err := component.TripleValue(v)
		require.NoError(t, err, "result %d of %s", i, route)
		ts[i] = [3]float64{x, y, z}
	}
	return ts
}

// N is shorthand for a cty number.
func N(f float64) cty.Value { return cty.NumberFloatVal(f) }

// P is shorthand for a point or vector argument.
func P(x, y, z float64) cty.Value { return component.TripleVal(x, y, z) }

// Ns converts a list of floats into number arguments.
func Ns(fs ...float64) []cty.Value {
	vs := make([]cty.Value, len(fs))
	for i, f := range fs {
		vs[i] = N(f)
	}
	return vs
}
