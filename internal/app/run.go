package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/hopsgo/internal/ctxlog"
	"github.com/specialistvlad/hopsgo/internal/transport/natsrpc"
	"golang.org/x/sync/errgroup"
)

// Run listens on the configured address and serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.config.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln and the NATS responder when configured.
// Cancelling ctx shuts everything down gracefully; the first transport to
// fail stops the others.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Serve method started.")

	var responder *natsrpc.Responder
	if a.config.NATS.Enabled() {
		r, err := natsrpc.Connect(a.config.NATS, a.dispatcher)
		if err != nil {
			ln.Close()
			return err
		}
		responder = r
	}

	a.httpServer = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Requests keep their logger but are not cancelled by shutdown;
		// Shutdown waits for them instead.
		BaseContext: func(net.Listener) context.Context { return a.ctx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("🚀 Hops server starting", "address", ln.Addr().String(), "components", a.registry.Len())
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if responder != nil {
		g.Go(func() error { return responder.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	err := g.Wait()
	a.logger.Info("🏁 Hops server stopped.")
	return err
}

func (a *App) shutdown() error {
	logger := a.logger
	ctx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()

	if a.live != nil {
		logger.Debug("Closing socket.io transport...")
		a.live.Close()
	}

	logger.Info("🛑 Shutting down HTTP server...")
	var errs []error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := a.tracing.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
	}
	logger.Debug("HTTP server shut down gracefully.")
	return errors.Join(errs...)
}
