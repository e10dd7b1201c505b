// Package reconciler carries evaluation data from a completed checklist onto
// the checklist of a newer benchmark version.
//
// Reconciliation of one pair is pure and synchronous: inputs are never
// modified and the merged bundle shares no mutable state with them. Batch
// runs many pairs against one shared template on a bounded worker pool; a
// failure in one slot never affects the others.
package reconciler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/checkmate/internal/metrics"
	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/differ"
	"github.com/agentstation/checkmate/pkg/errors"
	"github.com/agentstation/checkmate/pkg/guard"
	"github.com/agentstation/checkmate/pkg/logging"
)

// Reconciler merges prior evaluations into newer checklists.
type Reconciler interface {
	// Reconcile builds the merged bundle for a pair whose guard result and
	// match set were computed by the caller.
	Reconcile(old, updated *checklist.Bundle, set *differ.MatchSet, g guard.Result) (*checklist.Bundle, *Report, error)

	// One runs guard, matcher and reconciliation for a single pair. The
	// returned Result is never nil; its Err matches the returned error.
	One(ctx context.Context, old, updated *checklist.Bundle) (*Result, error)

	// Batch reconciles every old bundle against updated and returns one
	// result per input, in input order.
	Batch(ctx context.Context, olds []*checklist.Bundle, updated *checklist.Bundle) []Result
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	force       bool
	concurrency int
	strategy    Strategy
	differ      differ.Differ
	merger      *merger
	logger      *zerolog.Logger
	metrics     *metrics.Recorder
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &reconciler{
		force:       options.force,
		concurrency: options.concurrency,
		strategy:    options.strategy,
		differ:      options.differ,
		merger:      newMerger(options.strategy),
		logger:      options.logger,
		metrics:     options.metrics,
	}, nil
}

// Reconcile implements Reconciler.
func (r *reconciler) Reconcile(old, updated *checklist.Bundle, set *differ.MatchSet, g guard.Result) (*checklist.Bundle, *Report, error) {
	if old == nil || updated == nil || set == nil {
		return nil, nil, errors.NewMergeError(label(old), label(updated), nil, errors.New("nil input"))
	}
	if err := g.Err(); err != nil {
		return nil, nil, err
	}

	rules, err := r.merger.Rules(old, updated, set)
	if err != nil {
		return nil, nil, err
	}

	merged, err := updated.WithRules(rules,
		checklist.WithSource(old.Source()),
		checklist.WithHostMetadata(r.merger.HostMetadata(old, updated)),
	)
	if err != nil {
		return nil, nil, errors.NewMergeError(old.Source(), updated.Source(), nil, err)
	}
	if err := validateMerged(merged, updated, set); err != nil {
		return nil, nil, err
	}

	return merged, newReport(old, updated, set, g), nil
}

// One implements Reconciler.
func (r *reconciler) One(ctx context.Context, old, updated *checklist.Bundle) (*Result, error) {
	result := NewResult(0, label(old))
	result.Metadata.Strategy = r.strategy.Type()
	err := r.one(ctx, result, old, updated)
	return result, err
}

func (r *reconciler) one(ctx context.Context, result *Result, old, updated *checklist.Bundle) (err error) {
	ctx = logging.WithBundle(logging.WithLogger(ctx, r.loggerFrom(ctx)), result.Source)
	logger := logging.FromContext(ctx).With().
		Str("template", label(updated)).
		Logger()

	defer func() {
		if p := recover(); p != nil {
			err = errors.NewMergeError(result.Source, label(updated), nil, fmt.Errorf("panic: %v", p))
		}
		result.Err = err
		result.Finalize()
		r.record(result)
		if err != nil {
			logger.Warn().Err(err).Msg("Reconciliation failed")
		}
	}()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return canceled(ctxErr)
	}
	if old == nil || updated == nil {
		return errors.NewMergeError(label(old), label(updated), nil, errors.New("nil bundle"))
	}

	result.Guard = guard.Check(old, updated, r.force)
	if w := result.Guard.Warning; w != nil {
		logger.Warn().
			Str("old_id", w.OldID).
			Str("new_id", w.NewID).
			Bool("forced", result.Guard.Forced).
			Msg("Benchmark identity mismatch")
	}
	if err := result.Guard.Err(); err != nil {
		return err
	}
	if result.Guard.Downgrade {
		logger.Info().
			Stringer("old_version", old.Version()).
			Stringer("new_version", updated.Version()).
			Msg("Reconciling onto an older benchmark version")
	}

	set, err := r.differ.Rules(old, updated)
	if err != nil {
		return err
	}

	merged, report, err := r.Reconcile(old, updated, set, result.Guard)
	if err != nil {
		return err
	}
	result.Bundle = merged
	result.Report = report

	logger.Debug().
		Int("matched", report.MatchedCount).
		Int("added", report.AddedCount).
		Int("removed", report.RemovedCount).
		Msg("Reconciled checklist")
	return nil
}

// Batch implements Reconciler.
func (r *reconciler) Batch(ctx context.Context, olds []*checklist.Bundle, updated *checklist.Bundle) []Result {
	results := make([]Result, len(olds))
	logger := r.loggerFrom(ctx)
	logger.Debug().
		Int("count", len(olds)).
		Int("concurrency", r.concurrency).
		Msg("Starting batch reconciliation")

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, old := range olds {
		results[i] = *NewResult(i, label(old))
		results[i].Metadata.Strategy = r.strategy.Type()

		// Slots not yet dispatched when the context ends are reported as canceled.
		if ctxErr := ctx.Err(); ctxErr != nil {
			results[i].Err = canceled(ctxErr)
			results[i].Finalize()
			continue
		}

		g.Go(func() error {
			_ = r.one(ctx, &results[i], old, updated)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i := range results {
		if results[i].Err != nil {
			failed++
		}
	}
	logger.Info().
		Int("count", len(results)).
		Int("failed", failed).
		Msg("Batch reconciliation complete")

	return results
}

func (r *reconciler) loggerFrom(ctx context.Context) *zerolog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return logging.FromContext(ctx)
}

func (r *reconciler) record(result *Result) {
	if r.metrics == nil {
		return
	}
	r.metrics.Observe(metrics.OutcomeOf(result.Err), result.Metadata.Duration)
	if result.Guard.Warning != nil {
		r.metrics.Mismatch()
	}
	if result.Report != nil {
		r.metrics.Rules(result.Report.MatchedCount, result.Report.AddedCount, result.Report.RemovedCount)
		if result.Report.Downgrade {
			r.metrics.Downgrade()
		}
	}
}

func canceled(err error) error {
	return fmt.Errorf("%w: %w", errors.ErrCanceled, err)
}

func label(b *checklist.Bundle) string {
	if b == nil {
		return "<nil>"
	}
	return b.Source()
}

