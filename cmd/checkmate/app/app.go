// Package app provides the application context and dependency management
// for the checkmate CLI. It centralizes configuration, logging and the
// metrics recorder, and hands commands the library options they need.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/checkmate"
	"github.com/agentstation/checkmate/cmd/application"
	"github.com/agentstation/checkmate/internal/metrics"
	"github.com/agentstation/checkmate/pkg/errors"
	"github.com/agentstation/checkmate/pkg/reconciler"
)

// App represents the checkmate application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Recorder is lazy-initialized and only when a metrics file is configured.
	mu      sync.RWMutex
	metrics *metrics.Recorder
}

var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.NewConfigError("app", "failed to load config", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Metrics returns the outcome recorder, creating it on first use. It is
// nil when no metrics file is configured.
func (a *App) Metrics() *metrics.Recorder {
	if a.config.MetricsFile == "" {
		return nil
	}

	a.mu.RLock()
	if a.metrics != nil {
		m := a.metrics
		a.mu.RUnlock()
		return m
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.metrics == nil {
		a.metrics = metrics.New()
	}
	return a.metrics
}

// Options returns the library options derived from configuration.
func (a *App) Options() []checkmate.Option {
	opts := []checkmate.Option{
		checkmate.WithForce(a.config.Force),
		checkmate.WithConcurrency(a.config.Concurrency),
		checkmate.WithOutputDir(a.config.OutputDir),
		checkmate.WithLogger(a.logger),
		checkmate.WithMetrics(a.Metrics()),
	}
	if s, ok := reconciler.ParseStrategy(a.config.Strategy); ok {
		opts = append(opts, checkmate.WithStrategy(s))
	}
	return opts
}

// validate rejects configuration the library would only refuse later.
func (a *App) validate() error {
	if _, ok := reconciler.ParseStrategy(a.config.Strategy); !ok {
		return errors.NewConfigError("strategy", "unknown strategy "+a.config.Strategy, nil)
	}
	return nil
}

// Shutdown flushes the metrics textfile, if one is configured.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	m := a.metrics
	a.mu.RUnlock()

	if m == nil {
		return nil
	}
	if err := m.WriteToTextfile(a.config.MetricsFile); err != nil {
		return err
	}
	a.logger.Debug().Str("path", a.config.MetricsFile).Msg("Wrote metrics")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
