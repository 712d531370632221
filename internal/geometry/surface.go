package geometry

import "fmt"

// Surface is a parametric surface in 3D.
type Surface interface {
	Domain() (u, v Interval)
	PointAt(u, v float64) Point3d
}

// RuledSurface sweeps straight lines between matching parameters of two edge
// curves. The u direction follows the first edge's domain, v runs from the
// first edge (0) to the second edge (1).
type RuledSurface struct {
	Edge1 Curve
	Edge2 Curve
}

// CreateRuledSurface builds the surface ruled between edge1 and edge2. Edges
// with no length are rejected.
func CreateRuledSurface(edge1, edge2 Curve) (*RuledSurface, error) {
	if edge1 == nil || edge2 == nil {
		return nil, fmt.Errorf("ruled surface needs two edges: %w", ErrDegenerate)
	}
	if CurveLength(edge1) == 0 {
		return nil, fmt.Errorf("first edge has zero length: %w", ErrDegenerate)
	}
	if CurveLength(edge2) == 0 {
		return nil, fmt.Errorf("second edge has zero length: %w", ErrDegenerate)
	}
	return &RuledSurface{Edge1: edge1, Edge2: edge2}, nil
}

// Domain returns the u and v intervals.
func (s *RuledSurface) Domain() (Interval, Interval) {
	return s.Edge1.Domain(), Interval{T0: 0, T1: 1}
}

// PointAt evaluates the surface. u is mapped proportionally onto the second
// edge's domain so both edges are traversed start to end.
func (s *RuledSurface) PointAt(u, v float64) Point3d {
	d1, d2 := s.Edge1.Domain(), s.Edge2.Domain()
	p := s.Edge1.PointAt(u)
	q := s.Edge2.PointAt(d2.ParameterAt(d1.NormalizedParameterAt(u)))
	return p.Lerp(q, v)
}

// Corners returns the four corner points in (u0v0, u1v0, u0v1, u1v1) order.
func (s *RuledSurface) Corners() [4]Point3d {
	return [4]Point3d{
		s.Edge1.PointAtStart(),
		s.Edge1.PointAtEnd(),
		s.Edge2.PointAtStart(),
		s.Edge2.PointAtEnd(),
	}
}
