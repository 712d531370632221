package hopsclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"

	"github.com/specialistvlad/hopsgo/internal/ctxlog"
	"github.com/specialistvlad/hopsgo/internal/rpc"
	"github.com/specialistvlad/hopsgo/internal/transport/live"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// SocketOptions tunes CallSocketIO.
type SocketOptions struct {
	Namespace          string
	InsecureSkipVerify bool
}

// CallSocketIO connects to rawURL, emits req on the solve event and waits for
// the solved reply. The context bounds the whole exchange.
func CallSocketIO(ctx context.Context, rawURL string, req rpc.Request, o SocketOptions) (rpc.Response, error) {
	logger := ctxlog.FromContext(ctx).With("url", rawURL, "route", req.Route)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return rpc.Response{}, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return rpc.Response{}, fmt.Errorf("URL %q must include scheme and host", rawURL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	} else {
		opts.SetPath(live.Path)
	}
	if o.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(o.Namespace, opts)
	defer io.Disconnect()

	type result struct {
		resp rpc.Response
		err  error
	}
	done := make(chan result, 1)
	finish := func(r result) {
		select {
		case done <- r:
		default:
		}
	}
	var connected atomic.Bool

	io.On(types.EventName("connect"), func(...any) {
		connected.Store(true)
		logger.Debug("Connected.", "sid", io.Id())
		io.Emit(live.SolveEvent, req)
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err, _ := firstArg(errs).(error)
		if err == nil {
			err = errors.New("connect error")
		}
		finish(result{err: fmt.Errorf("socket.io connection failed: %w", err)})
	})
	io.On(types.EventName(live.SolvedEvent), func(data ...any) {
		b, err := json.Marshal(firstArg(data))
		if err != nil {
			finish(result{err: fmt.Errorf("encode reply: %w", err)})
			return
		}
		var resp rpc.Response
		if err := json.Unmarshal(b, &resp); err != nil {
			finish(result{err: fmt.Errorf("decode reply: %w", err)})
			return
		}
		finish(result{resp: resp})
	})

	io.Connect()

	select {
	case <-ctx.Done():
		if connected.Load() {
			return rpc.Response{}, fmt.Errorf("timed out after connecting while waiting for %q: %w", live.SolvedEvent, ctx.Err())
		}
		return rpc.Response{}, fmt.Errorf("timed out while waiting for initial connection: %w", ctx.Err())
	case r := <-done:
		return r.resp, r.err
	}
}

func firstArg(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}
