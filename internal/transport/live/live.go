// Package live serves component calls to socket.io clients. A client emits
// "solve" with an rpc request envelope and receives "solved" with the
// response envelope.
package live

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/specialistvlad/hopsgo/internal/component"
	"github.com/specialistvlad/hopsgo/internal/ctxlog"
	"github.com/specialistvlad/hopsgo/internal/rpc"
	"github.com/zishang520/socket.io/v2/socket"
)

const (
	// Path is where the transport is mounted.
	Path = "/socket.io/"

	SolveEvent  = "solve"
	SolvedEvent = "solved"
)

// Server is a socket.io server bound to one dispatcher.
type Server struct {
	io         *socket.Server
	dispatcher *component.Dispatcher
}

// New creates the socket.io server and its event handlers. ctx supplies the
// logger for connection events.
func New(ctx context.Context, d *component.Dispatcher) *Server {
	s := &Server{io: socket.NewServer(nil, nil), dispatcher: d}
	logger := ctxlog.FromContext(ctx)

	s.io.On("connection", func(clients ...any) {
		client, ok := clients[0].(*socket.Socket)
		if !ok {
			return
		}
		clog := logger.With("sid", string(client.Id()))
		clog.Debug("Socket.IO client connected.")
		cctx := ctxlog.WithLogger(ctx, clog)

		client.On(SolveEvent, func(data ...any) {
			if err := client.Emit(SolvedEvent, s.reply(cctx, data...)); err != nil {
				clog.Warn("Emitting reply failed.", "error", err)
			}
		})
		client.On("disconnect", func(reason ...any) {
			clog.Debug("Socket.IO client disconnected.", "reason", reason)
		})
	})
	return s
}

// Handler serves the socket.io endpoints; mount it at Path.
func (s *Server) Handler() http.Handler { return s.io.ServeHandler(nil) }

// Close disconnects every client.
func (s *Server) Close() { s.io.Close(nil) }

// reply turns the first event argument into an rpc request and returns the
// response as a plain JSON object.
func (s *Server) reply(ctx context.Context, data ...any) map[string]any {
	var payload []byte
	if len(data) > 0 {
		switch v := data[0].(type) {
		case string:
			payload = []byte(v)
		case []byte:
			payload = v
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return map[string]any{"error": rpc.Error{Kind: rpc.KindBadRequest, Message: err.Error()}}
			}
			payload = b
		}
	}

	out := rpc.Process(ctx, s.dispatcher, payload)
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		ctxlog.FromContext(ctx).Error("Decoding RPC response failed.", "error", err)
		return map[string]any{"error": rpc.Error{Kind: component.OutcomeInternal, Message: err.Error()}}
	}
	return m
}
