package component

import (
	"context"
	"fmt"
	"reflect"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	tupleType   = reflect.TypeOf(Tuple(nil))
)

// boundHandler is a handler func whose signature has been checked against
// the declared params.
type boundHandler struct {
	fn      reflect.Value
	withCtx bool
	tuple   bool
}

func bindHandler(fn any, inputs, outputs []Param) (*boundHandler, error) {
	if fn == nil {
		return nil, fmt.Errorf("handler is nil")
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("handler must be a func, got %s", t)
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("handler must not be variadic")
	}

	h := &boundHandler{fn: v}
	offset := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		h.withCtx = true
		offset = 1
	}
	if got := t.NumIn() - offset; got != len(inputs) {
		return nil, fmt.Errorf("handler takes %d arguments, %d inputs declared", got, len(inputs))
	}
	for i, p := range inputs {
		if got, want := t.In(i+offset), p.Type.GoType(); got != want {
			return nil, fmt.Errorf("handler argument %d (%s) is %s, want %s", i, p.Name, got, want)
		}
	}

	if t.NumOut() == 0 || t.Out(t.NumOut()-1) != errorType {
		return nil, fmt.Errorf("handler must return error as its last result")
	}
	results := t.NumOut() - 1
	if results == 1 && t.Out(0) == tupleType {
		h.tuple = true
		return h, nil
	}
	if results != len(outputs) {
		return nil, fmt.Errorf("handler returns %d values, %d outputs declared", results, len(outputs))
	}
	for i, p := range outputs {
		if got, want := t.Out(i), p.Type.GoType(); got != want {
			return nil, fmt.Errorf("handler result %d (%s) is %s, want %s", i, p.Name, got, want)
		}
	}
	return h, nil
}

// call invokes the handler. A panic inside it is returned as an error.
func (h *boundHandler) call(ctx context.Context, args []reflect.Value) (results []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	in := args
	if h.withCtx {
		in = append([]reflect.Value{reflect.ValueOf(&ctx).Elem()}, args...)
	}
	out := h.fn.Call(in)

	if last := out[len(out)-1]; !last.IsNil() {
		return nil, last.Interface().(error)
	}
	if h.tuple {
		tup, _ := out[0].Interface().(Tuple)
		return []any(tup), nil
	}
	results = make([]any, 0, len(out)-1)
	for _, o := range out[:len(out)-1] {
		results = append(results, o.Interface())
	}
	return results, nil
}
