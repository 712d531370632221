// Package natsrpc answers component calls over NATS request/reply using the
// rpc envelope.
package natsrpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/specialistvlad/hopsgo/internal/component"
	"github.com/specialistvlad/hopsgo/internal/ctxlog"
	"github.com/specialistvlad/hopsgo/internal/rpc"
)

// Config selects the server and subject. The responder is disabled when URL
// is empty.
type Config struct {
	URL     string `mapstructure:"url" yaml:"url"`
	Subject string `mapstructure:"subject" yaml:"subject"`
	Queue   string `mapstructure:"queue" yaml:"queue"`
}

// DefaultConfig returns the default subject and queue group with no server.
func DefaultConfig() Config {
	return Config{Subject: "hops.solve", Queue: "hopsgo"}
}

// Enabled reports whether a server URL is configured.
func (c Config) Enabled() bool { return c.URL != "" }

// Responder serves one dispatcher on a queue subscription.
type Responder struct {
	cfg        Config
	conn       *nats.Conn
	dispatcher *component.Dispatcher
	publish    func(subject string, data []byte) error
}

// Connect dials the NATS server.
func Connect(cfg Config, d *component.Dispatcher) (*Responder, error) {
	if !cfg.Enabled() {
		return nil, errors.New("nats url is not configured")
	}
	if cfg.Subject == "" {
		return nil, errors.New("nats subject is required")
	}
	conn, err := nats.Connect(cfg.URL,
		nats.Name("hopsgo"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Responder{cfg: cfg, conn: conn, dispatcher: d, publish: conn.Publish}, nil
}

// Run subscribes and serves until ctx is cancelled, then drains the
// connection so in-flight requests are answered.
func (r *Responder) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("subject", r.cfg.Subject, "queue", r.cfg.Queue)

	sub, err := r.conn.QueueSubscribe(r.cfg.Subject, r.cfg.Queue, func(m *nats.Msg) {
		r.serve(ctx, m.Reply, m.Data)
	})
	if err != nil {
		r.conn.Close()
		return fmt.Errorf("subscribe to %s: %w", r.cfg.Subject, err)
	}
	logger.Info("📡 NATS responder listening", "url", r.conn.ConnectedUrl())

	<-ctx.Done()
	logger.Info("📡 Draining NATS responder...")
	if err := sub.Drain(); err != nil {
		logger.Warn("Draining subscription failed.", "error", err)
	}
	if err := r.conn.Drain(); err != nil {
		return fmt.Errorf("drain NATS connection: %w", err)
	}
	return nil
}

// serve handles one request. Messages without a reply subject are dropped.
func (r *Responder) serve(ctx context.Context, reply string, data []byte) {
	logger := ctxlog.FromContext(ctx)
	if reply == "" {
		logger.Warn("Dropping NATS request without reply subject.", "subject", r.cfg.Subject)
		return
	}
	out := rpc.Process(ctx, r.dispatcher, data)
	if err := r.publish(reply, out); err != nil {
		logger.Error("Publishing NATS reply failed.", "reply", reply, "error", err)
	}
}
