// Package rpc is the compact JSON envelope used by the NATS and socket.io
// transports and by the call client. Arguments and results are plain JSON:
// numbers, {"X","Y","Z"} objects or [x, y, z] lists, and geometry documents.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/specialistvlad/hopsgo/internal/component"
	"github.com/specialistvlad/hopsgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// KindBadRequest marks an envelope that could not be decoded.
const KindBadRequest = "bad_request"

// Request asks for one component call.
type Request struct {
	ID    string            `json:"id,omitempty"`
	Route string            `json:"route"`
	Args  []json.RawMessage `json:"args"`
}

// Response carries either results or an error.
type Response struct {
	ID      string            `json:"id,omitempty"`
	Route   string            `json:"route"`
	Results []json.RawMessage `json:"results,omitempty"`
	Error   *Error            `json:"error,omitempty"`
}

// Error is a dispatch failure. Kind is one of the component outcome labels
// or KindBadRequest.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

// NewRequest marshals args into a request for route.
func NewRequest(id, route string, args ...any) (Request, error) {
	req := Request{ID: id, Route: route, Args: make([]json.RawMessage, 0, len(args))}
	for i, a := range args {
		if raw, ok := a.(json.RawMessage); ok {
			req.Args = append(req.Args, raw)
			continue
		}
		b, err := json.Marshal(a)
		if err != nil {
			return Request{}, fmt.Errorf("argument %d: %w", i, err)
		}
		req.Args = append(req.Args, b)
	}
	return req, nil
}

// Handle runs req against d.
func Handle(ctx context.Context, d *component.Dispatcher, req Request) Response {
	resp := Response{ID: req.ID, Route: req.Route}

	args := make([]cty.Value, len(req.Args))
	for i, raw := range req.Args {
		v, err := component.FromJSON(raw)
		if err != nil {
			resp.Error = &Error{Kind: KindBadRequest, Message: fmt.Sprintf("argument %d: %v", i, err)}
			return resp
		}
		args[i] = v
	}

	results, err := d.Dispatch(ctx, req.Route, args)
	if err != nil {
		resp.Error = &Error{Kind: component.Outcome(err), Message: err.Error()}
		return resp
	}

	resp.Results = make([]json.RawMessage, len(results))
	for i, v := range results {
		b, err := component.ToJSON(v)
		if err != nil {
			resp.Results = nil
			resp.Error = &Error{Kind: component.OutcomeInternal, Message: fmt.Sprintf("result %d: %v", i, err)}
			return resp
		}
		resp.Results[i] = b
	}
	return resp
}

// Process decodes a request envelope, handles it and encodes the response.
// It never fails: malformed input produces a bad_request response.
func Process(ctx context.Context, d *component.Dispatcher, data []byte) []byte {
	var req Request
	var resp Response
	if err := json.Unmarshal(data, &req); err != nil {
		resp = Response{Error: &Error{Kind: KindBadRequest, Message: fmt.Sprintf("malformed request: %v", err)}}
	} else if req.Route == "" {
		resp = Response{ID: req.ID, Error: &Error{Kind: KindBadRequest, Message: "request has no route"}}
	} else {
		resp = Handle(ctx, d, req)
	}

	out, err := json.Marshal(resp)
	if err != nil {
		// Results are valid JSON by construction.
		ctxlog.FromContext(ctx).Error("Encoding RPC response failed.", "error", err)
		out, _ = json.Marshal(Response{ID: resp.ID, Route: resp.Route, Error: &Error{Kind: component.OutcomeInternal, Message: err.Error()}})
	}
	return out
}

// Err returns the response error, or nil on success.
func (r Response) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// Floats decodes every result as a number.
func (r Response) Floats() ([]float64, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	out := make([]float64, len(r.Results))
	for i, raw := range r.Results {
		if err := json.Unmarshal(raw, &out[i]); err != nil {
			return nil, errors.Join(fmt.Errorf("result %d is not a number", i), err)
		}
	}
	return out, nil
}
