package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/hopsgo/internal/tracing"
	"github.com/specialistvlad/hopsgo/internal/transport/natsrpc"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`

	// ManifestsPath replaces the embedded manifests with the *.hcl files
	// under this directory when set.
	ManifestsPath string `mapstructure:"manifests_path" yaml:"manifests_path"`

	Metrics         bool          `mapstructure:"metrics" yaml:"metrics"`
	SocketIO        bool          `mapstructure:"socketio" yaml:"socketio"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	NATS    natsrpc.Config `mapstructure:"nats" yaml:"nats"`
	Tracing tracing.Config `mapstructure:"tracing" yaml:"tracing"`
}

// DefaultConfig returns the settings used when nothing else is configured.
func DefaultConfig() Config {
	return Config{
		Addr:            ":5000",
		LogFormat:       "text",
		LogLevel:        "info",
		Metrics:         true,
		ShutdownTimeout: 5 * time.Second,
		NATS:            natsrpc.DefaultConfig(),
		Tracing:         tracing.DefaultConfig(),
	}
}

var (
	logLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	logFormats = map[string]bool{"text": true, "json": true}
	exporters  = map[string]bool{"none": true, "stdout": true, "file": true, "otlp": true}
)

// NewConfig validates cfg and fills zero values that have a sensible
// default.
func NewConfig(cfg Config) (*Config, error) {
	var errs []error
	if cfg.Addr == "" {
		errs = append(errs, errors.New("addr is a required configuration field and cannot be empty"))
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !logLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level %q must be one of debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !logFormats[cfg.LogFormat] {
		errs = append(errs, fmt.Errorf("log_format %q must be text or json", cfg.LogFormat))
	}
	switch {
	case cfg.ShutdownTimeout < 0:
		errs = append(errs, errors.New("shutdown_timeout cannot be negative"))
	case cfg.ShutdownTimeout == 0:
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.NATS.Enabled() && cfg.NATS.Subject == "" {
		errs = append(errs, errors.New("nats.subject is required when nats.url is set"))
	}
	if cfg.Tracing.Enabled && !exporters[cfg.Tracing.Exporter] {
		errs = append(errs, fmt.Errorf("tracing.exporter %q is not supported", cfg.Tracing.Exporter))
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_rate %v must be between 0 and 1", cfg.Tracing.SampleRate))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return &cfg, nil
}
