package reconciler

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/checkmate/internal/metrics"
	"github.com/agentstation/checkmate/pkg/constants"
	"github.com/agentstation/checkmate/pkg/differ"
	"github.com/agentstation/checkmate/pkg/errors"
)

// Options configures a reconciler.
type options struct {
	force       bool
	concurrency int
	strategy    Strategy
	differ      differ.Differ
	logger      *zerolog.Logger
	metrics     *metrics.Recorder
}

func defaultOptions() *options {
	return &options{
		concurrency: constants.DefaultConcurrency,
		strategy:    NewCarryForwardStrategy(),
		differ:      differ.New(),
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithForce allows reconciliation across a benchmark identity mismatch.
// The mismatch is still reported.
func WithForce(force bool) Option {
	return func(o *options) error {
		o.force = force
		return nil
	}
}

// WithConcurrency bounds the number of pairs Batch reconciles at once.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 || n > constants.MaxConcurrency {
			return &errors.ValidationError{
				Field:   "concurrency",
				Value:   n,
				Message: "must be between 1 and 64",
			}
		}
		o.concurrency = n
		return nil
	}
}

// WithStrategy sets the carry-forward strategy.
func WithStrategy(strategy Strategy) Option {
	return func(o *options) error {
		if strategy == nil {
			return &errors.ValidationError{
				Field:   "strategy",
				Message: "cannot be nil",
			}
		}
		o.strategy = strategy
		return nil
	}
}

// WithDiffer sets the rule matcher.
func WithDiffer(d differ.Differ) Option {
	return func(o *options) error {
		if d == nil {
			return &errors.ValidationError{
				Field:   "differ",
				Message: "cannot be nil",
			}
		}
		o.differ = d
		return nil
	}
}

// WithLogger sets the logger. Without one, the logger carried by the
// context passed to One and Batch is used.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithMetrics records outcomes on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}
