package component

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/hopsgo/internal/ctxlog"
	"github.com/specialistvlad/hopsgo/internal/formula"
	"github.com/specialistvlad/hopsgo/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"pgregory.net/rapid"
)

func num(name string) Param { return Param{Name: name, Type: Number} }

func addDescriptor(calls *int) Descriptor {
	return Descriptor{
		Route:   "/add",
		Inputs:  []Param{num("A"), num("B")},
		Outputs: []Param{num("Sum")},
		Handler: func(a, b float64) (float64, error) {
			if calls != nil {
				*calls++
			}
			return a + b, nil
		},
	}
}

func nums(fs ...float64) []cty.Value {
	out := make([]cty.Value, len(fs))
	for i, f := range fs {
		out[i] = cty.NumberFloatVal(f)
	}
	return out
}

func floats(t *testing.T, vs []cty.Value) []float64 {
	t.Helper()
	out := make([]float64, len(vs))
	for i, v := range vs {
		f, err := NumberValue(v)
		require.NoError(t, err)
		out[i] = f
	}
	return out
}

func TestBuilder_RegisterAndLookup(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	require.NoError(t, b.Register(addDescriptor(nil)))

	for _, route := range []string{"/add", "add", "/add/", "  /add "} {
		d, err := b.Lookup(route)
		require.NoError(t, err, route)
		assert.Equal(t, "/add", d.Route)
		assert.Equal(t, "add", d.Name, "name defaults to the route")
		assert.Len(t, d.Inputs, 2)
	}

	reg := b.Build()
	d, err := reg.Lookup("/add")
	require.NoError(t, err)
	assert.Equal(t, []string{"/add"}, reg.Routes())
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, "Sum", d.Outputs[0].Name)
}

func TestBuilder_DuplicateKeepsFirst(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	require.NoError(t, b.Register(addDescriptor(nil)))

	second := Descriptor{
		Route:   "add/",
		Inputs:  []Param{num("A")},
		Outputs: []Param{num("Twice")},
		Handler: func(a float64) (float64, error) { return 2 * a, nil },
	}
	err := b.Register(second)

	var dup *DuplicateRouteError
	require.ErrorAs(t, err, &dup)
	require.ErrorIs(t, err, ErrDuplicateRoute)
	assert.Equal(t, "/add", dup.Route)

	d, err := b.Lookup("/add")
	require.NoError(t, err)
	assert.Len(t, d.Inputs, 2, "first registration must be retained")
	assert.Equal(t, 1, b.Len())
}

func TestBuilder_InvalidDescriptors(t *testing.T) {
	t.Parallel()

	def := cty.StringVal("not a number")
	cases := []struct {
		name string
		desc Descriptor
	}{
		{"reserved route", Descriptor{Route: "/solve", Handler: func() error { return nil }}},
		{"nested route", Descriptor{Route: "/a/b", Handler: func() error { return nil }}},
		{"empty route", Descriptor{Route: "/", Handler: func() error { return nil }}},
		{"nil handler", Descriptor{Route: "/x", Outputs: []Param{num("R")}}},
		{"no outputs", Descriptor{Route: "/x", Handler: func() error { return nil }}},
		{"not a func", Descriptor{Route: "/x", Handler: 42}},
		{"arity", Descriptor{Route: "/x", Inputs: []Param{num("A")}, Handler: func() error { return nil }}},
		{"input type", Descriptor{
			Route:   "/x",
			Inputs:  []Param{{Name: "P", Type: Point}},
			Outputs: []Param{num("R")},
			Handler: func(a float64) (float64, error) { return a, nil },
		}},
		{"missing error", Descriptor{Route: "/x", Outputs: []Param{num("R")}, Handler: func() float64 { return 0 }}},
		{"output count", Descriptor{Route: "/x", Outputs: []Param{num("R"), num("S")}, Handler: func() (float64, error) { return 0, nil }}},
		{"invalid type", Descriptor{Route: "/x", Inputs: []Param{{Name: "A"}}, Handler: func(float64) error { return nil }}},
		{"duplicate param", Descriptor{Route: "/x", Inputs: []Param{num("A"), num("A")}, Handler: func(a, b float64) error { return nil }}},
		{"bad default", Descriptor{
			Route:   "/x",
			Inputs:  []Param{{Name: "A", Type: Number, Default: &def}},
			Handler: func(float64) error { return nil },
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			b := NewBuilder()
			err := b.Register(tc.desc)
			require.ErrorIs(t, err, ErrInvalidDescriptor)
			assert.Zero(t, b.Len())
		})
	}
}

func TestBuild_IsSnapshot(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	require.NoError(t, b.Register(addDescriptor(nil)))
	reg := b.Build()

	b.MustRegister(Descriptor{
		Route:   "/neg",
		Inputs:  []Param{num("A")},
		Outputs: []Param{num("R")},
		Handler: func(a float64) (float64, error) { return -a, nil },
	})

	_, err := reg.Lookup("/neg")
	require.ErrorIs(t, err, ErrUnknownRoute)
	assert.Equal(t, 1, reg.Len())
}

func TestDispatch_Add(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	require.NoError(t, b.Register(addDescriptor(nil)))
	d := NewDispatcher(b.Build())

	out, err := d.Dispatch(context.Background(), "/add", nums(2, 3))
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, floats(t, out))
}

func TestDispatch_UnknownRouteNeverCallsHandler(t *testing.T) {
	t.Parallel()

	calls := 0
	b := NewBuilder()
	require.NoError(t, b.Register(addDescriptor(&calls)))
	d := NewDispatcher(b.Build())

	_, err := d.Dispatch(context.Background(), "/nope", nums(1, 2))
	var unknown *UnknownRouteError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "/nope", unknown.Route)
	assert.Zero(t, calls)
	assert.Equal(t, OutcomeUnknownRoute, Outcome(err))
}

func TestDispatch_TypeMismatch(t *testing.T) {
	t.Parallel()

	calls := 0
	b := NewBuilder()
	require.NoError(t, b.Register(addDescriptor(&calls)))
	d := NewDispatcher(b.Build())

	cases := map[string][]cty.Value{
		"string":  {cty.NumberIntVal(1), cty.StringVal("abc")},
		"missing": {cty.NumberIntVal(1)},
		"null":    {cty.NumberIntVal(1), cty.NullVal(cty.Number)},
		"extra":   nums(1, 2, 3),
		"object":  {cty.NumberIntVal(1), TripleVal(1, 2, 3)},
	}
	for name, args := range cases {
		_, err := d.Dispatch(context.Background(), "/add", args)
		require.ErrorIs(t, err, ErrTypeMismatch, name)
		assert.Equal(t, OutcomeTypeMismatch, Outcome(err), name)
	}
	assert.Zero(t, calls)

	// Numeric strings convert like HCL does.
	out, err := d.Dispatch(context.Background(), "/add", []cty.Value{cty.StringVal("2"), cty.NumberIntVal(3)})
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, floats(t, out))
}

func TestDispatch_Defaults(t *testing.T) {
	t.Parallel()

	zero := cty.NumberIntVal(0)
	b := NewBuilder()
	b.MustRegister(Descriptor{
		Route:   "/offset",
		Inputs:  []Param{num("A"), {Name: "T", Type: Number, Default: &zero}},
		Outputs: []Param{num("R")},
		Handler: func(a, off float64) (float64, error) { return a + off, nil },
	})
	d := NewDispatcher(b.Build())

	out, err := d.Dispatch(context.Background(), "/offset", nums(4))
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, floats(t, out))

	out, err = d.Dispatch(context.Background(), "/offset", []cty.Value{cty.NumberIntVal(4), cty.NullVal(cty.Number)})
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, floats(t, out))

	out, err = d.Dispatch(context.Background(), "/offset", nums(4, 1.5))
	require.NoError(t, err)
	assert.Equal(t, []float64{5.5}, floats(t, out))
}

func TestDispatch_HandlerFailures(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	b.MustRegister(Descriptor{
		Route:   "/speed",
		Inputs:  []Param{num("D"), num("T")},
		Outputs: []Param{num("S")},
		Handler: formula.Div,
	})
	b.MustRegister(Descriptor{
		Route:   "/boom",
		Outputs: []Param{num("R")},
		Handler: func() (float64, error) { panic("kaboom") },
	})
	b.MustRegister(Descriptor{
		Route:   "/inf",
		Inputs:  []Param{num("A")},
		Outputs: []Param{num("R")},
		Handler: func(a float64) (float64, error) { return a * math.Inf(1), nil },
	})
	d := NewDispatcher(b.Build())

	_, err := d.Dispatch(context.Background(), "/speed", nums(5, 0))
	var he *HandlerExecutionError
	require.ErrorAs(t, err, &he)
	require.ErrorIs(t, err, formula.ErrDivisionByZero)

	_, err = d.Dispatch(context.Background(), "/boom", nil)
	require.ErrorIs(t, err, ErrHandlerExecution)
	assert.Contains(t, err.Error(), "kaboom")

	_, err = d.Dispatch(context.Background(), "/inf", nums(1))
	require.ErrorIs(t, err, ErrHandlerExecution)
	require.ErrorIs(t, err, formula.ErrNonFinite)

	// A failed call leaves the dispatcher serving normally.
	out, err := d.Dispatch(context.Background(), "/speed", nums(10, 4))
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5}, floats(t, out))
}

func TestDispatch_TupleResults(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	b.MustRegister(Descriptor{
		Route:   "/pair",
		Inputs:  []Param{num("N")},
		Outputs: []Param{num("A"), num("B")},
		Handler: func(n float64) (Tuple, error) {
			out := Tuple{}
			for i := 0; i < int(n); i++ {
				out = append(out, float64(i))
			}
			return out, nil
		},
	})
	b.MustRegister(Descriptor{
		Route:   "/wrong",
		Outputs: []Param{{Name: "P", Type: Point}},
		Handler: func() (Tuple, error) { return Tuple{1.0}, nil },
	})
	d := NewDispatcher(b.Build())

	out, err := d.Dispatch(context.Background(), "/pair", nums(2))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, floats(t, out))

	_, err = d.Dispatch(context.Background(), "/pair", nums(3))
	var arity *ResultArityError
	require.ErrorAs(t, err, &arity)
	assert.Equal(t, 2, arity.Want)
	assert.Equal(t, 3, arity.Got)

	_, err = d.Dispatch(context.Background(), "/wrong", nil)
	require.ErrorIs(t, err, ErrResultArity)
}

func TestDispatch_Geometry(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	b.MustRegister(Descriptor{
		Route:   "/vector",
		Inputs:  []Param{num("X"), num("Y"), num("Z")},
		Outputs: []Param{{Name: "V", Type: Vector}},
		Handler: func(x, y, z float64) (geometry.Vector3d, error) { return geometry.NewVector(x, y, z), nil },
	})
	b.MustRegister(Descriptor{
		Route:   "/line",
		Inputs:  []Param{{Name: "A", Type: Point}, {Name: "B", Type: Point}},
		Outputs: []Param{{Name: "C", Type: Curve}},
		Handler: func(ctx context.Context, a, b geometry.Point3d) (geometry.Curve, error) {
			return geometry.NewLineCurve(a, b), nil
		},
	})
	b.MustRegister(Descriptor{
		Route:   "/length",
		Inputs:  []Param{{Name: "C", Type: Curve}},
		Outputs: []Param{num("L")},
		Handler: func(c geometry.Curve) (float64, error) { return geometry.CurveLength(c), nil },
	})
	d := NewDispatcher(b.Build())
	ctx := context.Background()

	out, err := d.Dispatch(ctx, "/vector", nums(1, 2, 3))
	require.NoError(t, err)
	require.Len(t, out, 1)
	x, y, z, err := TripleValue(out[0])
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, []float64{x, y, z})

	a := cty.ObjectVal(map[string]cty.Value{"x": cty.NumberIntVal(0), "y": cty.NumberIntVal(0), "z": cty.NumberIntVal(0)})
	bPt := cty.TupleVal([]cty.Value{cty.NumberIntVal(3), cty.NumberIntVal(4), cty.NumberIntVal(0)})
	out, err = d.Dispatch(ctx, "/line", []cty.Value{a, bPt})
	require.NoError(t, err)
	require.True(t, out[0].Type().Equals(cty.String))

	out, err = d.Dispatch(ctx, "/length", out)
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, floats(t, out))

	_, err = d.Dispatch(ctx, "/length", []cty.Value{cty.StringVal(`{"kind":"blob"}`)})
	require.ErrorIs(t, err, ErrTypeMismatch)
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []string
}

func (o *recordingObserver) ObserveDispatch(route, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, route+" "+outcome)
}

func TestDispatch_ObserverTracerAndLogs(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	require.NoError(t, b.Register(addDescriptor(nil)))

	obs := &recordingObserver{}
	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	d := NewDispatcher(b.Build(), WithObserver(obs), WithTracer(tp.Tracer("test")))

	var logs bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	_, err := d.Dispatch(ctx, "/add", nums(1, 1))
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, "/secret-path", nil)
	require.Error(t, err)
	_, err = d.Dispatch(ctx, "/add", nums(1))
	require.Error(t, err)

	want := []string{"/add ok", "unknown unknown_route", "/add type_mismatch"}
	if diff := cmp.Diff(want, obs.seen); diff != "" {
		t.Errorf("observed outcomes mismatch (-want +got):\n%s", diff)
	}

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "dispatch /add", spans[0].Name())
	assert.Contains(t, logs.String(), "Dispatch failed.")
	assert.Contains(t, logs.String(), "outcome=type_mismatch")
}

func TestOutcome(t *testing.T) {
	t.Parallel()
	assert.Equal(t, OutcomeOK, Outcome(nil))
	assert.Equal(t, OutcomeHandlerExecution, Outcome(&HandlerExecutionError{Cause: errors.New("x")}))
	assert.Equal(t, OutcomeResultArity, Outcome(&ResultArityError{}))
	assert.Equal(t, OutcomeInternal, Outcome(errors.New("other")))
}

func TestDispatch_Idempotent(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.Register(addDescriptor(nil)))
	b.MustRegister(Descriptor{
		Route:   "/ratio",
		Inputs:  []Param{num("A"), num("B")},
		Outputs: []Param{num("R")},
		Handler: formula.Div,
	})
	d := NewDispatcher(b.Build())

	rapid.Check(t, func(rt *rapid.T) {
		route := rapid.SampledFrom([]string{"/add", "/ratio"}).Draw(rt, "route")
		a := rapid.Float64Range(-1e6, 1e6).Draw(rt, "a")
		bv := rapid.SampledFrom([]float64{0, 1, -2.5, 1e-3, 42}).Draw(rt, "b")

		first, err1 := d.Dispatch(context.Background(), route, nums(a, bv))
		second, err2 := d.Dispatch(context.Background(), route, nums(a, bv))

		if (err1 == nil) != (err2 == nil) || Outcome(err1) != Outcome(err2) {
			rt.Fatalf("outcomes differ: %v vs %v", err1, err2)
		}
		if len(first) != len(second) {
			rt.Fatalf("result lengths differ")
		}
		for i := range first {
			if !first[i].RawEquals(second[i]) {
				rt.Fatalf("result %d differs: %#v vs %#v", i, first[i], second[i])
			}
		}
	})
}

func TestDispatch_Concurrent(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	require.NoError(t, b.Register(addDescriptor(nil)))
	d := NewDispatcher(b.Build())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := d.Dispatch(context.Background(), "/add", nums(float64(i), 1))
			assert.NoError(t, err)
			if assert.Len(t, out, 1) {
				f, _ := NumberValue(out[0])
				assert.Equal(t, float64(i+1), f)
			}
		}(i)
	}
	wg.Wait()
}
