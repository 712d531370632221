package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned when a geometry handle cannot be decoded.
var ErrMalformed = errors.New("malformed geometry")

const (
	kindLine     = "line"
	kindPolyline = "polyline"
	kindRuled    = "ruled"
)

type envelope struct {
	Kind   string            `json:"kind"`
	From   *Point3d          `json:"from,omitempty"`
	To     *Point3d          `json:"to,omitempty"`
	Points []Point3d         `json:"points,omitempty"`
	Edges  []json.RawMessage `json:"edges,omitempty"`
}

// MarshalCurve encodes c as an opaque JSON handle.
func MarshalCurve(c Curve) ([]byte, error) {
	switch v := c.(type) {
	case *LineCurve:
		return json.Marshal(envelope{Kind: kindLine, From: &v.From, To: &v.To})
	case *PolylineCurve:
		return json.Marshal(envelope{Kind: kindPolyline, Points: v.Points})
	case nil:
		return nil, fmt.Errorf("nil curve: %w", ErrMalformed)
	default:
		return nil, fmt.Errorf("unsupported curve type %T", c)
	}
}

// UnmarshalCurve decodes a handle produced by MarshalCurve or by the host.
func UnmarshalCurve(data []byte) (Curve, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch env.Kind {
	case kindLine:
		if env.From == nil || env.To == nil {
			return nil, fmt.Errorf("%w: line requires 'from' and 'to'", ErrMalformed)
		}
		return NewLineCurve(*env.From, *env.To), nil
	case kindPolyline:
		c, err := NewPolylineCurve(env.Points...)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return c, nil
	case "":
		return nil, fmt.Errorf("%w: missing 'kind'", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: unknown curve kind %q", ErrMalformed, env.Kind)
	}
}

// MarshalSurface encodes s as an opaque JSON handle.
func MarshalSurface(s Surface) ([]byte, error) {
	switch v := s.(type) {
	case *RuledSurface:
		e1, err := MarshalCurve(v.Edge1)
		if err != nil {
			return nil, fmt.Errorf("first edge: %w", err)
		}
		e2, err := MarshalCurve(v.Edge2)
		if err != nil {
			return nil, fmt.Errorf("second edge: %w", err)
		}
		return json.Marshal(envelope{Kind: kindRuled, Edges: []json.RawMessage{e1, e2}})
	case nil:
		return nil, fmt.Errorf("nil surface: %w", ErrMalformed)
	default:
		return nil, fmt.Errorf("unsupported surface type %T", s)
	}
}

// UnmarshalSurface decodes a handle produced by MarshalSurface.
func UnmarshalSurface(data []byte) (Surface, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Kind != kindRuled {
		return nil, fmt.Errorf("%w: unknown surface kind %q", ErrMalformed, env.Kind)
	}
	if len(env.Edges) != 2 {
		return nil, fmt.Errorf("%w: ruled surface requires 2 edges, got %d", ErrMalformed, len(env.Edges))
	}
	e1, err := UnmarshalCurve(env.Edges[0])
	if err != nil {
		return nil, err
	}
	e2, err := UnmarshalCurve(env.Edges[1])
	if err != nil {
		return nil, err
	}
	srf, err := CreateRuledSurface(e1, e2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return srf, nil
}
