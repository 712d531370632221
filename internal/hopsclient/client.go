// Package hopsclient calls a running hopsgo server, either through the Hops
// HTTP protocol or through the socket.io transport.
package hopsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/specialistvlad/hopsgo/internal/component"
	"github.com/specialistvlad/hopsgo/internal/ctxlog"
	"github.com/specialistvlad/hopsgo/internal/hops"
	"resty.dev/v3"
)

// DefaultTimeout bounds a single call.
const DefaultTimeout = 10 * time.Second

// Client talks to the Hops HTTP endpoints.
type Client struct {
	http *resty.Client
}

// New returns a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &Client{http: c}
}

// Close releases idle connections.
func (c *Client) Close() error { return c.http.Close() }

// StatusError is a non-2xx reply.
type StatusError struct {
	Status int
	Errors []string
	Body   string
}

func (e *StatusError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("server returned %d: %s", e.Status, strings.Join(e.Errors, "; "))
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// Components lists every component the server exposes.
func (c *Client) Components(ctx context.Context) ([]hops.ComponentInfo, error) {
	var out []hops.ComponentInfo
	res, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/")
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	if res.IsError() {
		return nil, &StatusError{Status: res.StatusCode(), Body: res.String()}
	}
	return out, nil
}

// Describe fetches the metadata of one component.
func (c *Client) Describe(ctx context.Context, route string) (hops.ComponentInfo, error) {
	var out hops.ComponentInfo
	var fail hops.SolveResponse
	res, err := c.http.R().SetContext(ctx).SetResult(&out).SetError(&fail).Get(component.NormalizeRoute(route))
	if err != nil {
		return out, fmt.Errorf("describe %s: %w", route, err)
	}
	if res.IsError() {
		return out, &StatusError{Status: res.StatusCode(), Errors: fail.Errors, Body: res.String()}
	}
	return out, nil
}

// Solve posts input trees to /solve.
func (c *Client) Solve(ctx context.Context, route string, values []hops.DataTree) (hops.SolveResponse, error) {
	var out hops.SolveResponse
	req := hops.SolveRequest{Pointer: component.NormalizeRoute(route), Values: values}
	res, err := c.http.R().SetContext(ctx).SetBody(req).SetResult(&out).SetError(&out).Post("/solve")
	if err != nil {
		return out, fmt.Errorf("solve %s: %w", route, err)
	}
	if res.IsError() {
		return out, &StatusError{Status: res.StatusCode(), Errors: out.Errors, Body: res.String()}
	}
	return out, nil
}

// Call describes route, sends args as its inputs in order and returns one
// JSON document per output. Each arg is JSON text, for example "2" or
// `{"X":1,"Y":2,"Z":3}`.
func (c *Client) Call(ctx context.Context, route string, args ...string) ([]json.RawMessage, error) {
	info, err := c.Describe(ctx, route)
	if err != nil {
		return nil, err
	}
	if len(args) > len(info.Inputs) {
		return nil, fmt.Errorf("%s takes %d inputs, got %d", route, len(info.Inputs), len(args))
	}

	values := make([]hops.DataTree, 0, len(args))
	for i, a := range args {
		in := info.Inputs[i]
		values = append(values, hops.DataTree{
			ParamName: in.Name,
			InnerTree: map[string][]hops.Item{hops.FirstBranch: {{Type: in.ResultType, Data: a}}},
		})
	}

	resp, err := c.Solve(ctx, route, values)
	if err != nil {
		return nil, err
	}
	for _, w := range resp.Warnings {
		ctxlog.FromContext(ctx).Warn("Server warning.", "route", route, "warning", w)
	}

	out := make([]json.RawMessage, 0, len(resp.Values))
	for _, tree := range resp.Values {
		items := tree.InnerTree[hops.FirstBranch]
		if len(items) == 0 {
			return nil, fmt.Errorf("output %q is empty", tree.ParamName)
		}
		out = append(out, json.RawMessage(items[0].Data))
	}
	return out, nil
}
