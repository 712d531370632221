package hops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/specialistvlad/hopsgo/internal/component"
	"github.com/specialistvlad/hopsgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Greeting is served on GET /help.
const Greeting = "Welcome to Grasshopper Hops for Go!"

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-Id"

const maxBodyBytes = 8 << 20

// SolveRequest is the body of POST /solve and POST /{route}.
type SolveRequest struct {
	Pointer string     `json:"pointer"`
	Values  []DataTree `json:"values"`
}

// SolveResponse is returned for every solve, successful or not.
type SolveResponse struct {
	Pointer  string     `json:"pointer"`
	Values   []DataTree `json:"values"`
	Errors   []string   `json:"errors"`
	Warnings []string   `json:"warnings"`
}

// Server serves one dispatcher over the Hops protocol.
type Server struct {
	dispatcher *component.Dispatcher
}

// NewServer returns a Server for d.
func NewServer(d *component.Dispatcher) *Server {
	return &Server{dispatcher: d}
}

// Register mounts the protocol endpoints on mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /help", s.handleHelp)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /solve", s.handleSolve)
	mux.HandleFunc("GET /{route}", s.handleDescribe)
	mux.HandleFunc("POST /{route}", s.handleRoute)
}

// Handler returns the protocol endpoints on their own mux, wrapped with
// WithRequestID.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return WithRequestID(mux)
}

// WithRequestID tags every request with an id, reusing the caller's
// X-Request-Id when present, and puts a logger carrying it in the request
// context.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := ctxlog.With(r.Context(), "request_id", id)
		ctxlog.FromContext(ctx).Debug("HTTP request received.", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// StatusCode maps a dispatch error to its HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, component.ErrUnknownRoute):
		return http.StatusNotFound
	case errors.Is(err, component.ErrTypeMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	descs := s.dispatcher.Registry().Descriptors()
	infos := make([]ComponentInfo, 0, len(descs))
	for _, d := range descs {
		infos = append(infos, Describe(d))
	}
	writeJSON(r.Context(), w, http.StatusOK, infos)
}

func (s *Server) handleHelp(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, Greeting)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctxlog.FromContext(r.Context()).Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	route := "/" + r.PathValue("route")
	d, err := s.dispatcher.Registry().Lookup(route)
	if err != nil {
		writeJSON(r.Context(), w, StatusCode(err), failure(route, err.Error()))
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, Describe(d))
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, failure("", err.Error()))
		return
	}
	if req.Pointer == "" {
		writeJSON(r.Context(), w, http.StatusBadRequest, failure("", "request has no pointer"))
		return
	}
	resp, status := s.Solve(r.Context(), req.Pointer, req.Values)
	writeJSON(r.Context(), w, status, resp)
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	route := "/" + r.PathValue("route")
	req, err := decodeRequest(w, r)
	if err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, failure(route, err.Error()))
		return
	}
	resp, status := s.Solve(r.Context(), route, req.Values)
	writeJSON(r.Context(), w, status, resp)
}

// Solve runs the component at pointer with Hops input trees and returns the
// response document with its HTTP status.
func (s *Server) Solve(ctx context.Context, pointer string, values []DataTree) (SolveResponse, int) {
	route := component.NormalizeRoute(pointer)
	logger := ctxlog.FromContext(ctx).With("route", route)

	d, err := s.dispatcher.Registry().Lookup(route)
	if err != nil {
		// Let the dispatcher see it so the miss is logged and counted.
		_, err = s.dispatcher.Dispatch(ctx, route, nil)
		return failure(pointer, err.Error()), StatusCode(err)
	}

	args, warnings := inputArgs(d, values)
	results, err := s.dispatcher.Dispatch(ctx, route, args)
	if err != nil {
		resp := failure(pointer, err.Error())
		resp.Warnings = append(resp.Warnings, warnings...)
		return resp, StatusCode(err)
	}

	resp := SolveResponse{Pointer: pointer, Values: make([]DataTree, 0, len(results)), Errors: []string{}, Warnings: warnings}
	for i, v := range results {
		item, err := encodeItem(d.Outputs[i], v)
		if err != nil {
			logger.Error("Encoding result failed.", "output", d.Outputs[i].Name, "error", err)
			return failure(pointer, fmt.Sprintf("output %q: %v", d.Outputs[i].Name, err)), http.StatusInternalServerError
		}
		resp.Values = append(resp.Values, DataTree{
			ParamName: d.Outputs[i].Name,
			InnerTree: map[string][]Item{FirstBranch: {item}},
		})
	}
	logger.Debug("Solve finished.", "outputs", len(resp.Values), "warnings", len(resp.Warnings))
	return resp, http.StatusOK
}

// inputArgs lines trees up with d's inputs by name, then nickname. Inputs
// without a tree are passed as null so the dispatcher applies defaults.
func inputArgs(d *component.Descriptor, values []DataTree) ([]cty.Value, []string) {
	warnings := []string{}
	args := make([]cty.Value, len(d.Inputs))
	for i, p := range d.Inputs {
		args[i] = cty.NullVal(cty.DynamicPseudoType)
		tree, ok := findTree(values, p)
		if !ok {
			continue
		}
		item, extra, ok := tree.first()
		if !ok {
			continue
		}
		if extra > 0 {
			warnings = append(warnings, fmt.Sprintf("input %q: %d extra item(s) ignored", p.Name, extra))
		}
		v, err := itemValue(item.Data)
		if err != nil {
			// Hand the raw text over; the dispatcher reports the mismatch.
			v = cty.StringVal(item.Data)
		}
		args[i] = v
	}
	return args, warnings
}

func findTree(values []DataTree, p component.Param) (DataTree, bool) {
	for _, t := range values {
		if t.ParamName == p.Name {
			return t, true
		}
	}
	if p.Nickname != "" {
		for _, t := range values {
			if t.ParamName == p.Nickname {
				return t, true
			}
		}
	}
	return DataTree{}, false
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (SolveRequest, error) {
	var req SolveRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, errors.New("empty request body")
		}
		return req, fmt.Errorf("malformed request body: %w", err)
	}
	return req, nil
}

func failure(pointer, msg string) SolveResponse {
	return SolveResponse{Pointer: pointer, Values: []DataTree{}, Errors: []string{msg}, Warnings: []string{}}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.FromContext(ctx).Warn("Writing response failed.", "error", err)
	}
}
