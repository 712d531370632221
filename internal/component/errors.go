package component

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is. Each typed error below matches exactly one.
var (
	ErrDuplicateRoute    = errors.New("duplicate route")
	ErrInvalidDescriptor = errors.New("invalid component descriptor")
	ErrUnknownRoute      = errors.New("unknown route")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrHandlerExecution  = errors.New("handler execution failed")
	ErrResultArity       = errors.New("result arity mismatch")
)

// Outcome labels used in logs, metrics and transport error bodies.
const (
	OutcomeOK               = "ok"
	OutcomeUnknownRoute     = "unknown_route"
	OutcomeTypeMismatch     = "type_mismatch"
	OutcomeHandlerExecution = "handler_execution"
	OutcomeResultArity      = "result_arity"
	OutcomeInternal         = "internal"
)

// DuplicateRouteError is returned when a route is registered twice.
type DuplicateRouteError struct {
	Route string
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("route %q is already registered", e.Route)
}

func (e *DuplicateRouteError) Is(target error) bool { return target == ErrDuplicateRoute }

// InvalidDescriptorError is returned when a descriptor breaks a registration
// rule, e.g. the handler signature does not match the declared params.
type InvalidDescriptorError struct {
	Route  string
	Reason string
}

func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("component %q: %s", e.Route, e.Reason)
}

func (e *InvalidDescriptorError) Is(target error) bool { return target == ErrInvalidDescriptor }

// UnknownRouteError is returned when no component is registered at Route.
type UnknownRouteError struct {
	Route string
}

func (e *UnknownRouteError) Error() string {
	return fmt.Sprintf("no component registered at %q", e.Route)
}

func (e *UnknownRouteError) Is(target error) bool { return target == ErrUnknownRoute }

// TypeMismatchError is returned when an argument cannot be decoded into the
// semantic type of its input.
type TypeMismatchError struct {
	Route string
	Param string
	Index int
	Want  Type
	Err   error
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("component %q: argument %d (%s) is not a valid %s: %v", e.Route, e.Index, e.Param, e.Want, e.Err)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }
func (e *TypeMismatchError) Unwrap() error        { return e.Err }

// HandlerExecutionError carries the failure of the computation itself.
type HandlerExecutionError struct {
	Route string
	Cause error
}

func (e *HandlerExecutionError) Error() string {
	return fmt.Sprintf("component %q failed: %v", e.Route, e.Cause)
}

func (e *HandlerExecutionError) Is(target error) bool { return target == ErrHandlerExecution }
func (e *HandlerExecutionError) Unwrap() error        { return e.Cause }

// ResultArityError is returned when the handler's results do not match the
// declared outputs in count or type.
type ResultArityError struct {
	Route  string
	Want   int
	Got    int
	Detail string
}

func (e *ResultArityError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("component %q: %s", e.Route, e.Detail)
	}
	return fmt.Sprintf("component %q: handler returned %d values, %d outputs declared", e.Route, e.Got, e.Want)
}

func (e *ResultArityError) Is(target error) bool { return target == ErrResultArity }

// Outcome classifies err for logs, metrics and error bodies.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrUnknownRoute):
		return OutcomeUnknownRoute
	case errors.Is(err, ErrTypeMismatch):
		return OutcomeTypeMismatch
	case errors.Is(err, ErrHandlerExecution):
		return OutcomeHandlerExecution
	case errors.Is(err, ErrResultArity):
		return OutcomeResultArity
	default:
		return OutcomeInternal
	}
}
