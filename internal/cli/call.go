package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/specialistvlad/hopsgo/internal/component"
	"github.com/specialistvlad/hopsgo/internal/hopsclient"
	"github.com/specialistvlad/hopsgo/internal/rpc"
)

type callOptions struct {
	url       string
	transport string
	timeout   time.Duration
	insecure  bool
}

func newCallCommand() *cobra.Command {
	opts := callOptions{}
	cmd := &cobra.Command{
		Use:   "call ROUTE [ARG...]",
		Short: "Call a component on a running server",
		Long: `Call a component on a running hopsgo server.

With --transport http the call goes through the Hops protocol: the
component is described first and each ARG is bound to the matching input.
With --transport socketio the call is sent as a solve event to the
socket.io endpoint.

Each ARG is a JSON document; anything that is not valid JSON is sent as a
string. Results are printed one JSON document per line.

Examples:
  hopsgo call add 2 3
  hopsgo call --url http://10.0.0.5:5000 pointat '{"kind":"line","from":{"X":0,"Y":0,"Z":0},"to":{"X":10,"Y":0,"Z":0}}' 0.5
  hopsgo call --transport socketio unit_vectors '{"X":3,"Y":4,"Z":0}'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var (
				results []json.RawMessage
				err     error
			)
			switch opts.transport {
			case "http":
				results, err = callHTTP(ctx, opts, args[0], args[1:])
			case "socketio":
				results, err = callSocketIO(ctx, opts, args[0], args[1:])
			default:
				return usageError(fmt.Errorf("unknown transport %q: use http or socketio", opts.transport))
			}
			if err != nil {
				return runtimeError(err)
			}
			return printDocs(cmd.OutOrStdout(), results)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.url, "url", "http://localhost:5000", "Base URL of the server")
	f.StringVar(&opts.transport, "transport", "http", "Transport: http or socketio")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "Deadline for the whole call")
	f.BoolVar(&opts.insecure, "insecure", false, "Skip TLS certificate verification for socketio")
	return cmd
}

func callHTTP(ctx context.Context, opts callOptions, route string, args []string) ([]json.RawMessage, error) {
	c := hopsclient.New(opts.url, opts.timeout)
	defer c.Close()
	return c.Call(ctx, component.NormalizeRoute(route), args...)
}

func callSocketIO(ctx context.Context, opts callOptions, route string, args []string) ([]json.RawMessage, error) {
	values := make([]any, 0, len(args))
	for _, a := range args {
		if json.Valid([]byte(a)) {
			values = append(values, json.RawMessage(a))
			continue
		}
		values = append(values, a)
	}
	req, err := rpc.NewRequest(uuid.NewString(), component.NormalizeRoute(route), values...)
	if err != nil {
		return nil, err
	}
	resp, err := hopsclient.CallSocketIO(ctx, opts.url, req, hopsclient.SocketOptions{InsecureSkipVerify: opts.insecure})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func printDocs(w io.Writer, docs []json.RawMessage) error {
	for _, d := range docs {
		if _, err := fmt.Fprintln(w, string(d)); err != nil {
			return runtimeError(err)
		}
	}
	return nil
}
