package component

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/specialistvlad/hopsgo/internal/formula"
	"github.com/specialistvlad/hopsgo/internal/geometry"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// errShape marks a handler result whose Go type does not fit its output.
var errShape = errors.New("result does not match declared output type")

// NumberValue converts a known, non-null value to float64. Strings holding
// numbers are accepted the same way HCL would convert them.
func NumberValue(v cty.Value) (float64, error) {
	if err := usable(v); err != nil {
		return 0, err
	}
	n, err := convert.Convert(v, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %s to number: %w", v.Type().FriendlyName(), err)
	}
	f, _ := n.AsBigFloat().Float64()
	return f, nil
}

// TripleValue reads X, Y and Z from an object or map with those keys (case
// insensitive) or from a three-element tuple or list.
func TripleValue(v cty.Value) (x, y, z float64, err error) {
	if err := usable(v); err != nil {
		return 0, 0, 0, err
	}
	ty := v.Type()
	var parts [3]cty.Value
	switch {
	case ty.IsObjectType() || ty.IsMapType():
		found := 0
		for it := v.ElementIterator(); it.Next(); {
			k, val := it.Element()
			switch strings.ToUpper(k.AsString()) {
			case "X":
				parts[0] = val
			case "Y":
				parts[1] = val
			case "Z":
				parts[2] = val
			default:
				continue
			}
			found++
		}
		if found != 3 {
			return 0, 0, 0, fmt.Errorf("want keys X, Y and Z")
		}
	case ty.IsTupleType() || ty.IsListType():
		if v.LengthInt() != 3 {
			return 0, 0, 0, fmt.Errorf("want 3 coordinates, got %d", v.LengthInt())
		}
		i := 0
		for it := v.ElementIterator(); it.Next(); i++ {
			_, parts[i] = it.Element()
		}
	default:
		return 0, 0, 0, fmt.Errorf("cannot read coordinates from %s", ty.FriendlyName())
	}

	var coords [3]float64
	for i, p := range parts {
		if coords[i], err = NumberValue(p); err != nil {
			return 0, 0, 0, fmt.Errorf("coordinate %d: %w", i, err)
		}
	}
	return coords[0], coords[1], coords[2], nil
}

// TripleVal encodes a coordinate triple as an X/Y/Z object.
func TripleVal(x, y, z float64) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"X": cty.NumberFloatVal(x),
		"Y": cty.NumberFloatVal(y),
		"Z": cty.NumberFloatVal(z),
	})
}

// GeometryJSON returns the JSON document behind a curve or surface value. It
// accepts the string form handlers produce and the object form a JSON
// transport decodes into.
func GeometryJSON(v cty.Value) ([]byte, error) {
	if err := usable(v); err != nil {
		return nil, err
	}
	ty := v.Type()
	switch {
	case ty.Equals(cty.String):
		return []byte(v.AsString()), nil
	case ty.IsObjectType() || ty.IsMapType():
		return ctyjson.Marshal(v, ty)
	default:
		return nil, fmt.Errorf("cannot read geometry from %s", ty.FriendlyName())
	}
}

// FromJSON decodes one JSON document into a value the dispatcher accepts.
// Empty input and JSON null become a null value so input defaults apply.
func FromJSON(b []byte) (cty.Value, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	ty, err := ctyjson.ImpliedType(b)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(b, ty)
}

// ToJSON encodes a dispatch result. Geometry handles are strings holding JSON
// and are inlined as the document they carry.
func ToJSON(v cty.Value) ([]byte, error) {
	if err := usable(v); err != nil {
		return nil, err
	}
	if v.Type().Equals(cty.String) {
		if s := []byte(v.AsString()); json.Valid(s) {
			return s, nil
		}
	}
	return ctyjson.Marshal(v, v.Type())
}

func usable(v cty.Value) error {
	if v.IsNull() {
		return fmt.Errorf("value is null")
	}
	if !v.IsWhollyKnown() {
		return fmt.Errorf("value is unknown")
	}
	return nil
}

// decodeArg converts a cty value into the Go value a handler expects for p.
func decodeArg(p Param, v cty.Value) (reflect.Value, error) {
	switch p.Type {
	case Number:
		f, err := NumberValue(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(f), nil
	case Point:
		x, y, z, err := TripleValue(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(geometry.NewPoint(x, y, z)), nil
	case Vector:
		x, y, z, err := TripleValue(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(geometry.NewVector(x, y, z)), nil
	case Curve:
		raw, err := GeometryJSON(v)
		if err != nil {
			return reflect.Value{}, err
		}
		c, err := geometry.UnmarshalCurve(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(c), nil
	case Surface:
		raw, err := GeometryJSON(v)
		if err != nil {
			return reflect.Value{}, err
		}
		s, err := geometry.UnmarshalSurface(raw)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(s), nil
	default:
		return reflect.Value{}, fmt.Errorf("unsupported type %s", p.Type)
	}
}

// encodeResult converts a handler result into the cty value for p. It returns
// errShape for a Go value of the wrong kind and formula.ErrNonFinite for NaN
// or infinite numbers.
func encodeResult(p Param, out any) (cty.Value, error) {
	switch p.Type {
	case Number:
		f, ok := asFloat(out)
		if !ok {
			return cty.NilVal, fmt.Errorf("%w: %s wants a number, got %T", errShape, p.Name, out)
		}
		if err := finite(p.Name, f); err != nil {
			return cty.NilVal, err
		}
		return cty.NumberFloatVal(f), nil
	case Point:
		pt, ok := out.(geometry.Point3d)
		if !ok {
			return cty.NilVal, fmt.Errorf("%w: %s wants a point, got %T", errShape, p.Name, out)
		}
		if err := finite(p.Name, pt.X, pt.Y, pt.Z); err != nil {
			return cty.NilVal, err
		}
		return TripleVal(pt.X, pt.Y, pt.Z), nil
	case Vector:
		vec, ok := out.(geometry.Vector3d)
		if !ok {
			return cty.NilVal, fmt.Errorf("%w: %s wants a vector, got %T", errShape, p.Name, out)
		}
		if err := finite(p.Name, vec.X, vec.Y, vec.Z); err != nil {
			return cty.NilVal, err
		}
		return TripleVal(vec.X, vec.Y, vec.Z), nil
	case Curve:
		c, ok := out.(geometry.Curve)
		if !ok || c == nil {
			return cty.NilVal, fmt.Errorf("%w: %s wants a curve, got %T", errShape, p.Name, out)
		}
		raw, err := geometry.MarshalCurve(c)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(string(raw)), nil
	case Surface:
		s, ok := out.(geometry.Surface)
		if !ok || s == nil {
			return cty.NilVal, fmt.Errorf("%w: %s wants a surface, got %T", errShape, p.Name, out)
		}
		raw, err := geometry.MarshalSurface(s)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.StringVal(string(raw)), nil
	default:
		return cty.NilVal, fmt.Errorf("%w: unsupported type %s", errShape, p.Type)
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func finite(name string, fs ...float64) error {
	for _, f := range fs {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("output %s is %v: %w", name, f, formula.ErrNonFinite)
		}
	}
	return nil
}
