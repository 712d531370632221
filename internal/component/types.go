package component

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/specialistvlad/hopsgo/internal/geometry"
	"github.com/zclconf/go-cty/cty"
)

// Type is the semantic type of a component parameter.
type Type int

const (
	Invalid Type = iota
	Number
	Point
	Vector
	Curve
	Surface
)

// Tuple lets a handler return a dynamically sized result list. Its length and
// element types are checked against the declared outputs on every dispatch.
type Tuple []any

var (
	typeNames = map[Type]string{
		Number:  "number",
		Point:   "point",
		Vector:  "vector",
		Curve:   "curve",
		Surface: "surface",
	}

	// Hops parameter kinds and the .NET type names the host expects.
	paramTypes = map[Type]string{
		Number:  "Number",
		Point:   "Point",
		Vector:  "Vector",
		Curve:   "Curve",
		Surface: "Surface",
	}
	resultTypes = map[Type]string{
		Number:  "System.Double",
		Point:   "Rhino.Geometry.Point3d",
		Vector:  "Rhino.Geometry.Vector3d",
		Curve:   "Rhino.Geometry.Curve",
		Surface: "Rhino.Geometry.Surface",
	}

	goTypes = map[Type]reflect.Type{
		Number:  reflect.TypeOf(float64(0)),
		Point:   reflect.TypeOf(geometry.Point3d{}),
		Vector:  reflect.TypeOf(geometry.Vector3d{}),
		Curve:   reflect.TypeOf((*geometry.Curve)(nil)).Elem(),
		Surface: reflect.TypeOf((*geometry.Surface)(nil)).Elem(),
	}

	// TripleType is the cty shape of points and vectors.
	TripleType = cty.Object(map[string]cty.Type{
		"X": cty.Number,
		"Y": cty.Number,
		"Z": cty.Number,
	})
)

// ParseType resolves a manifest keyword such as "number" or "point".
func ParseType(s string) (Type, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for t, name := range typeNames {
		if name == needle {
			return t, nil
		}
	}
	return Invalid, fmt.Errorf("unknown parameter type %q", s)
}

// Types lists every valid semantic type.
func Types() []Type {
	return []Type{Number, Point, Vector, Curve, Surface}
}

// Valid reports whether t is one of the declared semantic types.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParamType is the Hops parameter kind, e.g. "Number".
func (t Type) ParamType() string { return paramTypes[t] }

// ResultType is the host type name used on the wire, e.g. "System.Double".
func (t Type) ResultType() string { return resultTypes[t] }

// GoType is the Go type handlers use for this semantic type.
func (t Type) GoType() reflect.Type { return goTypes[t] }

// CtyType is the shape of encoded values of this type. Curves and surfaces are
// opaque JSON handles carried as strings.
func (t Type) CtyType() cty.Type {
	switch t {
	case Number:
		return cty.Number
	case Point, Vector:
		return TripleType
	case Curve, Surface:
		return cty.String
	default:
		return cty.DynamicPseudoType
	}
}

// IsGeometry reports whether values of t are opaque geometry handles.
func (t Type) IsGeometry() bool { return t == Curve || t == Surface }
