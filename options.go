package checkmate

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/checkmate/internal/metrics"
	"github.com/agentstation/checkmate/pkg/constants"
	"github.com/agentstation/checkmate/pkg/errors"
	"github.com/agentstation/checkmate/pkg/reconciler"
)

// config holds settings for the file-level operations.
type config struct {
	force       bool
	concurrency int
	outputDir   string
	dryRun      bool
	strategy    reconciler.Strategy
	logger      *zerolog.Logger
	metrics     *metrics.Recorder
	now         func() time.Time
	hooks       *hooks
}

func defaultConfig() *config {
	return &config{
		concurrency: constants.DefaultConcurrency,
		outputDir:   constants.DefaultOutputDir,
		strategy:    reconciler.NewCarryForwardStrategy(),
		now:         time.Now,
		hooks:       newHooks(),
	}
}

func newConfig(opts ...Option) (*config, error) {
	c := defaultConfig()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// reconcilerOptions translates the config for the reconciler.
func (c *config) reconcilerOptions() []reconciler.Option {
	// The logger travels in the context; see UpgradeFiles.
	return []reconciler.Option{
		reconciler.WithForce(c.force),
		reconciler.WithConcurrency(c.concurrency),
		reconciler.WithStrategy(c.strategy),
		reconciler.WithMetrics(c.metrics),
	}
}

// Option configures the file-level operations.
type Option func(*config) error

// WithForce allows merging across a benchmark identity mismatch.
func WithForce(force bool) Option {
	return func(c *config) error {
		c.force = force
		return nil
	}
}

// WithConcurrency bounds how many checklists are reconciled at once.
func WithConcurrency(n int) Option {
	return func(c *config) error {
		if n < 1 || n > constants.MaxConcurrency {
			return errors.NewValidationError("concurrency", n, "must be between 1 and 64")
		}
		c.concurrency = n
		return nil
	}
}

// WithOutputDir sets where upgraded checklists are written.
func WithOutputDir(dir string) Option {
	return func(c *config) error {
		if dir == "" {
			return errors.NewValidationError("output_dir", dir, "cannot be empty")
		}
		c.outputDir = dir
		return nil
	}
}

// WithDryRun reconciles without writing any files.
func WithDryRun(enabled bool) Option {
	return func(c *config) error {
		c.dryRun = enabled
		return nil
	}
}

// WithStrategy sets the carry-forward strategy.
func WithStrategy(s reconciler.Strategy) Option {
	return func(c *config) error {
		if s == nil {
			return errors.NewValidationError("strategy", nil, "cannot be nil")
		}
		c.strategy = s
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithMetrics records outcomes on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(c *config) error {
		c.metrics = m
		return nil
	}
}

// WithClock sets the clock used to date output file names.
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		if now == nil {
			return errors.NewValidationError("clock", nil, "cannot be nil")
		}
		c.now = now
		return nil
	}
}

// OnUpgraded registers a callback for each checklist written successfully.
func OnUpgraded(fn UpgradedHook) Option {
	return func(c *config) error {
		c.hooks.OnUpgraded(fn)
		return nil
	}
}

// OnFailed registers a callback for each checklist that could not be upgraded.
func OnFailed(fn FailedHook) Option {
	return func(c *config) error {
		c.hooks.OnFailed(fn)
		return nil
	}
}
