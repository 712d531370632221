package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specialistvlad/hopsgo/internal/app"
)

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the component registry",
		Long: `Serve the component registry over HTTP using the Hops protocol.

The HTTP listener always answers the Hops endpoints. Prometheus metrics are
exposed on /metrics unless --metrics=false, socket.io is mounted on
/socket.io/ with --socketio, and a NATS responder is started when --nats-url
is set. SIGINT and SIGTERM trigger a graceful shutdown.

Examples:
  hopsgo serve
  hopsgo serve --addr 127.0.0.1:8080 --log-format json
  hopsgo serve --socketio --nats-url nats://localhost:4222
  HOPSGO_TRACING_ENABLED=true hopsgo serve --tracing-exporter otlp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cmd, cfg)
		},
	}

	d := app.DefaultConfig()
	f := cmd.Flags()
	f.String("addr", d.Addr, "HTTP listen address")
	f.Bool("metrics", d.Metrics, "Expose Prometheus metrics on /metrics")
	f.Bool("socketio", d.SocketIO, "Mount the socket.io transport on /socket.io/")
	f.Duration("shutdown-timeout", d.ShutdownTimeout, "Grace period for in-flight requests on shutdown")
	f.String("nats-url", d.NATS.URL, "NATS server URL; empty disables the NATS responder")
	f.String("nats-subject", d.NATS.Subject, "NATS subject the responder listens on")
	f.String("nats-queue", d.NATS.Queue, "NATS queue group shared by replicas")
	f.Bool("tracing", d.Tracing.Enabled, "Enable OpenTelemetry tracing")
	f.String("tracing-exporter", d.Tracing.Exporter, "Trace exporter: none, stdout, file, otlp")
	f.String("tracing-file", d.Tracing.FilePath, "Output file for the file exporter")
	f.String("otlp-endpoint", d.Tracing.OTLPEndpoint, "Collector address for the otlp exporter")
	bindFlags(v, cmd, false, map[string]string{
		"addr":                  "addr",
		"metrics":               "metrics",
		"socketio":              "socketio",
		"shutdown_timeout":      "shutdown-timeout",
		"nats.url":              "nats-url",
		"nats.subject":          "nats-subject",
		"nats.queue":            "nats-queue",
		"tracing.enabled":       "tracing",
		"tracing.exporter":      "tracing-exporter",
		"tracing.file_path":     "tracing-file",
		"tracing.otlp_endpoint": "otlp-endpoint",
	})
	return cmd
}

func serve(ctx context.Context, cmd *cobra.Command, cfg *app.Config) error {
	a, err := app.NewApp(cmd.ErrOrStderr(), cfg)
	if err != nil {
		return runtimeError(err)
	}
	if err := a.Run(ctx); err != nil {
		return runtimeError(err)
	}
	return nil
}
