package component

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/specialistvlad/hopsgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// UnknownRouteLabel is the route reported to observers for lookups that did
// not resolve, so arbitrary request paths never become metric labels.
const UnknownRouteLabel = "unknown"

// Observer is notified once per dispatch.
type Observer interface {
	ObserveDispatch(route, outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveDispatch(string, string, time.Duration) {}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTracer records one span per dispatch.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

// WithObserver reports each dispatch outcome, e.g. to metrics.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.observer = o
		}
	}
}

// Dispatcher runs components from a frozen Registry. It keeps no per-request
// state and is safe for concurrent use.
type Dispatcher struct {
	registry *Registry
	tracer   trace.Tracer
	observer Observer
}

// NewDispatcher returns a Dispatcher over reg.
func NewDispatcher(reg *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		tracer:   noop.NewTracerProvider().Tracer(""),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the route table the dispatcher serves.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch invokes the component at route with positional args and returns
// one value per declared output, in declaration order.
//
// A missing or null argument takes the input's default when one is declared.
// The handler is never called when the route is unknown or an argument does
// not decode.
func (d *Dispatcher) Dispatch(ctx context.Context, route string, args []cty.Value) (results []cty.Value, err error) {
	start := time.Now()
	route = NormalizeRoute(route)
	ctx, span := d.tracer.Start(ctx, "dispatch "+route)
	logger := ctxlog.FromContext(ctx).With("route", route)

	defer func() {
		outcome := Outcome(err)
		label := route
		if errors.Is(err, ErrUnknownRoute) {
			label = UnknownRouteLabel
		}
		span.SetAttributes(
			attribute.String("hops.route", label),
			attribute.String("hops.outcome", outcome),
			attribute.Int("hops.args", len(args)),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			logger.Warn("Dispatch failed.", "outcome", outcome, "error", err)
		} else {
			logger.Debug("Dispatch finished.", "results", len(results), "elapsed", time.Since(start))
		}
		span.End()
		d.observer.ObserveDispatch(label, outcome, time.Since(start))
	}()

	desc, err := d.registry.Lookup(route)
	if err != nil {
		return nil, err
	}

	in, err := desc.decodeArgs(args)
	if err != nil {
		return nil, err
	}

	out, err := desc.bound.call(ctxlog.WithLogger(ctx, logger), in)
	if err != nil {
		return nil, &HandlerExecutionError{Route: desc.Route, Cause: err}
	}
	return desc.encodeResults(out)
}

func (desc *Descriptor) decodeArgs(args []cty.Value) ([]reflect.Value, error) {
	if len(args) > len(desc.Inputs) {
		return nil, &TypeMismatchError{
			Route: desc.Route,
			Param: "(extra)",
			Index: len(desc.Inputs),
			Err:   fmt.Errorf("got %d arguments, component takes %d", len(args), len(desc.Inputs)),
		}
	}

	in := make([]reflect.Value, len(desc.Inputs))
	for i, p := range desc.Inputs {
		var v cty.Value
		if i < len(args) {
			v = args[i]
		}
		if v.IsNull() {
			if p.Default == nil {
				return nil, &TypeMismatchError{Route: desc.Route, Param: p.Name, Index: i, Want: p.Type, Err: errors.New("argument is missing")}
			}
			v = *p.Default
		}
		rv, err := decodeArg(p, v)
		if err != nil {
			return nil, &TypeMismatchError{Route: desc.Route, Param: p.Name, Index: i, Want: p.Type, Err: err}
		}
		in[i] = rv
	}
	return in, nil
}

func (desc *Descriptor) encodeResults(out []any) ([]cty.Value, error) {
	if len(out) != len(desc.Outputs) {
		return nil, &ResultArityError{Route: desc.Route, Want: len(desc.Outputs), Got: len(out)}
	}
	results := make([]cty.Value, len(out))
	for i, p := range desc.Outputs {
		v, err := encodeResult(p, out[i])
		if errors.Is(err, errShape) {
			return nil, &ResultArityError{Route: desc.Route, Want: len(desc.Outputs), Got: len(out), Detail: err.Error()}
		}
		if err != nil {
			return nil, &HandlerExecutionError{Route: desc.Route, Cause: err}
		}
		results[i] = v
	}
	return results, nil
}
