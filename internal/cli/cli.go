package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specialistvlad/hopsgo/internal/app"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// usageError marks bad flags, arguments or configuration. The process exits
// with code 2.
func usageError(err error) error {
	return &ExitError{Code: 2, Message: err.Error()}
}

// runtimeError marks a failure after the input was accepted. The process
// exits with code 1.
func runtimeError(err error) error {
	return &ExitError{Code: 1, Message: err.Error()}
}

// Execute runs the command line in args. Every failure comes back as an
// *ExitError; flag and argument errors reported by cobra itself map to
// code 2.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	root := NewRootCommand(out, errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return usageError(err)
}

// NewRootCommand builds the hopsgo command tree. Each tree has its own viper
// instance so trees built in parallel tests do not share state.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	v := newViper()
	var cfgFile string

	root := &cobra.Command{
		Use:   "hopsgo",
		Short: "Grasshopper Hops component server",
		Long: `hopsgo serves a registry of physics and geometry components to
Grasshopper through the Hops protocol.

Components are declared in HCL manifests and implemented by Go handlers.
The same registry is reachable over HTTP, socket.io and NATS, and can be
evaluated locally from the command line.

Configuration is read from flags, HOPSGO_* environment variables and an
optional YAML file passed with --config, in that order of precedence.

Examples:
  hopsgo serve --addr :5000
  hopsgo components -o yaml
  hopsgo eval add 2 3
  hopsgo call --url http://localhost:5000 unit_vectors '{"X":3,"Y":4,"Z":0}'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return usageError(fmt.Errorf("reading config file: %w", err))
			}
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file")
	pf.String("log-level", app.DefaultConfig().LogLevel, "Log level: debug, info, warn, error")
	pf.String("log-format", app.DefaultConfig().LogFormat, "Log format: text or json")
	pf.String("manifests-path", "", "Directory of *.hcl manifests replacing the embedded set")
	bindFlags(v, root, true, map[string]string{
		"log_level":      "log-level",
		"log_format":     "log-format",
		"manifests_path": "manifests-path",
	})

	root.AddCommand(
		newServeCommand(v),
		newComponentsCommand(v),
		newEvalCommand(v),
		newCallCommand(),
		newVersionCommand(),
	)
	return root
}

// newViper registers every configuration key with its default so that
// environment variables and config files can override any of them.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("HOPSGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	d := app.DefaultConfig()
	v.SetDefault("addr", d.Addr)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("manifests_path", d.ManifestsPath)
	v.SetDefault("metrics", d.Metrics)
	v.SetDefault("socketio", d.SocketIO)
	v.SetDefault("shutdown_timeout", d.ShutdownTimeout)
	v.SetDefault("nats.url", d.NATS.URL)
	v.SetDefault("nats.subject", d.NATS.Subject)
	v.SetDefault("nats.queue", d.NATS.Queue)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	return v
}

// bindFlags binds each viper key to the named flag of cmd.
func bindFlags(v *viper.Viper, cmd *cobra.Command, persistent bool, keys map[string]string) {
	fs := cmd.Flags()
	if persistent {
		fs = cmd.PersistentFlags()
	}
	for key, name := range keys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %q: %v", name, err))
		}
	}
}

// loadConfig merges flags, environment, config file and defaults into a
// validated app.Config.
func loadConfig(v *viper.Viper) (*app.Config, error) {
	var cfg app.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, usageError(fmt.Errorf("decoding configuration: %w", err))
	}
	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return validated, nil
}
