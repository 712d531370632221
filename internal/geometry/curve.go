package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerate is returned when a construction would produce geometry with
// no extent.
var ErrDegenerate = errors.New("degenerate geometry")

// Interval is a closed parameter range.
type Interval struct {
	T0 float64 `json:"t0"`
	T1 float64 `json:"t1"`
}

// Length is T1 - T0.
func (i Interval) Length() float64 { return i.T1 - i.T0 }

// NormalizedParameterAt maps t in the interval onto [0, 1].
func (i Interval) NormalizedParameterAt(t float64) float64 {
	if i.Length() == 0 {
		return 0
	}
	return (t - i.T0) / i.Length()
}

// ParameterAt maps s in [0, 1] onto the interval.
func (i Interval) ParameterAt(s float64) float64 {
	return i.T0 + s*i.Length()
}

// Curve is a parametric curve in 3D.
type Curve interface {
	Domain() Interval
	PointAt(t float64) Point3d
	PointAtStart() Point3d
	PointAtEnd() Point3d
}

// LineCurve is a straight segment. Like its Rhino counterpart its domain is
// [0, length], and evaluation outside the domain extrapolates along the line.
type LineCurve struct {
	From Point3d
	To   Point3d
}

// NewLineCurve builds the segment from a to b.
func NewLineCurve(a, b Point3d) *LineCurve {
	return &LineCurve{From: a, To: b}
}

// Domain is [0, length].
func (l *LineCurve) Domain() Interval {
	return Interval{T0: 0, T1: l.From.DistanceTo(l.To)}
}

// PointAt evaluates the line at t.
func (l *LineCurve) PointAt(t float64) Point3d {
	length := l.From.DistanceTo(l.To)
	if length == 0 {
		return l.From
	}
	return l.From.Lerp(l.To, t/length)
}

func (l *LineCurve) PointAtStart() Point3d { return l.From }
func (l *LineCurve) PointAtEnd() Point3d   { return l.To }

// PolylineCurve connects a sequence of points. Segment i spans parameters
// [i, i+1]; evaluation is clamped to the domain.
type PolylineCurve struct {
	Points []Point3d
}

// NewPolylineCurve requires at least two points.
func NewPolylineCurve(points ...Point3d) (*PolylineCurve, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("polyline needs at least 2 points, got %d: %w", len(points), ErrDegenerate)
	}
	cp := make([]Point3d, len(points))
	copy(cp, points)
	return &PolylineCurve{Points: cp}, nil
}

// Domain is [0, segment count].
func (p *PolylineCurve) Domain() Interval {
	return Interval{T0: 0, T1: float64(len(p.Points) - 1)}
}

// PointAt evaluates the polyline at t.
func (p *PolylineCurve) PointAt(t float64) Point3d {
	segments := len(p.Points) - 1
	if t <= 0 {
		return p.Points[0]
	}
	if t >= float64(segments) {
		return p.Points[segments]
	}
	i := int(math.Floor(t))
	return p.Points[i].Lerp(p.Points[i+1], t-float64(i))
}

func (p *PolylineCurve) PointAtStart() Point3d { return p.Points[0] }
func (p *PolylineCurve) PointAtEnd() Point3d   { return p.Points[len(p.Points)-1] }

// CurveLength approximates the arc length of c. Lines and polylines are
// exact.
func CurveLength(c Curve) float64 {
	switch v := c.(type) {
	case *LineCurve:
		return v.From.DistanceTo(v.To)
	case *PolylineCurve:
		var total float64
		for i := 1; i < len(v.Points); i++ {
			total += v.Points[i-1].DistanceTo(v.Points[i])
		}
		return total
	default:
		const samples = 64
		d := c.Domain()
		var total float64
		prev := c.PointAt(d.T0)
		for i := 1; i <= samples; i++ {
			next := c.PointAt(d.ParameterAt(float64(i) / samples))
			total += prev.DistanceTo(next)
			prev = next
		}
		return total
	}
}
