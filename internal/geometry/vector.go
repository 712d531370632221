package geometry

import (
	"errors"
	"math"
)

// ErrZeroLength is returned when an operation needs a direction but the
// vector has no length.
var ErrZeroLength = errors.New("vector has zero length")

// Point3d is a location in 3D space.
type Point3d struct {
	X float64 `json:"X" cty:"X"`
	Y float64 `json:"Y" cty:"Y"`
	Z float64 `json:"Z" cty:"Z"`
}

// Vector3d is a displacement in 3D space.
type Vector3d struct {
	X float64 `json:"X" cty:"X"`
	Y float64 `json:"Y" cty:"Y"`
	Z float64 `json:"Z" cty:"Z"`
}

// NewPoint is shorthand for a Point3d literal.
func NewPoint(x, y, z float64) Point3d { return Point3d{X: x, Y: y, Z: z} }

// NewVector is shorthand for a Vector3d literal.
func NewVector(x, y, z float64) Vector3d { return Vector3d{X: x, Y: y, Z: z} }

// VectorTo returns the vector pointing from p to q.
func (p Point3d) VectorTo(q Point3d) Vector3d {
	return Vector3d{X: q.X - p.X, Y: q.Y - p.Y, Z: q.Z - p.Z}
}

// Add moves p by v.
func (p Point3d) Add(v Vector3d) Point3d {
	return Point3d{X: p.X + v.X, Y: p.Y + v.Y, Z: p.Z + v.Z}
}

// DistanceTo is the Euclidean distance between p and q.
func (p Point3d) DistanceTo(q Point3d) float64 {
	return p.VectorTo(q).Length()
}

// Lerp interpolates between p (s=0) and q (s=1). Values of s outside
// [0, 1] extrapolate along the same line.
func (p Point3d) Lerp(q Point3d, s float64) Point3d {
	return p.Add(p.VectorTo(q).Scale(s))
}

// Add returns v + w.
func (v Vector3d) Add(w Vector3d) Vector3d {
	return Vector3d{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Sub returns v - w.
func (v Vector3d) Sub(w Vector3d) Vector3d {
	return Vector3d{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Scale returns v multiplied by s.
func (v Vector3d) Scale(s float64) Vector3d {
	return Vector3d{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length is the Euclidean norm of v.
func (v Vector3d) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// IsZero reports whether all components are exactly zero.
func (v Vector3d) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Unitize returns v scaled to length 1.
func (v Vector3d) Unitize() (Vector3d, error) {
	l := v.Length()
	if l == 0 {
		return Vector3d{}, ErrZeroLength
	}
	return Vector3d{X: v.X / l, Y: v.Y / l, Z: v.Z / l}, nil
}

// Sum adds any number of vectors.
func Sum(vs ...Vector3d) Vector3d {
	var out Vector3d
	for _, v := range vs {
		out = out.Add(v)
	}
	return out
}
