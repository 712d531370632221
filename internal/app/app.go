package app

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/specialistvlad/hopsgo/internal/component"
	"github.com/specialistvlad/hopsgo/internal/ctxlog"
	"github.com/specialistvlad/hopsgo/internal/handlers"
	"github.com/specialistvlad/hopsgo/internal/hops"
	"github.com/specialistvlad/hopsgo/internal/metrics"
	"github.com/specialistvlad/hopsgo/internal/registry"
	"github.com/specialistvlad/hopsgo/internal/tracing"
	"github.com/specialistvlad/hopsgo/internal/transport/live"
	"github.com/specialistvlad/hopsgo/modules"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	ctx        context.Context
	config     *Config
	registry   *component.Registry
	dispatcher *component.Dispatcher
	tracing    *tracing.Provider
	metrics    *metrics.Metrics
	live       *live.Server
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It builds an isolated
// logger, loads the manifests, pairs them with the handlers of mods (the
// core modules when none are given) and freezes the component registry.
func NewApp(outW io.Writer, cfg *Config, mods ...handlers.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(mods) == 0 {
		mods = modules.Core()
	}
	h := handlers.Load(mods...)
	logger.Debug("All Go modules registered.", "modules", len(mods), "handlers", h.Len())

	fsys, pattern, source := manifestSource(cfg)
	reg, err := registry.New(h).Load(ctx, fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to build component registry from %s: %w", source, err)
	}
	logger.Debug("Component registry built.", "source", source, "components", reg.Len())

	tp, err := tracing.NewProvider(ctx, cfg.Tracing, outW)
	if err != nil {
		return nil, fmt.Errorf("failed to configure tracing: %w", err)
	}

	opts := []component.Option{component.WithTracer(tp.Tracer())}
	var m *metrics.Metrics
	if cfg.Metrics {
		m = metrics.New()
		m.SetComponents(reg.Len())
		opts = append(opts, component.WithObserver(m))
	}

	a := &App{
		outW:       outW,
		logger:     logger,
		ctx:        ctx,
		config:     cfg,
		registry:   reg,
		dispatcher: component.NewDispatcher(reg, opts...),
		tracing:    tp,
		metrics:    m,
	}
	if cfg.SocketIO {
		a.live = live.New(ctx, a.dispatcher)
	}
	return a, nil
}

func manifestSource(cfg *Config) (fs.FS, string, string) {
	if cfg.ManifestsPath != "" {
		return os.DirFS(cfg.ManifestsPath), registry.DefaultPattern, cfg.ManifestsPath
	}
	return modules.Manifests(), modules.ManifestPattern, "embedded manifests"
}

// Registry returns the frozen component registry.
func (a *App) Registry() *component.Registry { return a.registry }

// Dispatcher returns the dispatcher every transport shares.
func (a *App) Dispatcher() *component.Dispatcher { return a.dispatcher }

// Context returns the application context carrying its logger.
func (a *App) Context() context.Context { return a.ctx }

// Handler assembles the HTTP surface: the Hops protocol, /metrics when
// enabled and the socket.io transport when enabled.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	hops.NewServer(a.dispatcher).Register(mux)
	if a.metrics != nil {
		mux.Handle("GET /metrics", a.metrics.Handler())
	}
	if a.live != nil {
		mux.Handle(live.Path, a.live.Handler())
	}
	return hops.WithRequestID(mux)
}
