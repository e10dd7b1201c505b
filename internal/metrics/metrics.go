// Package metrics records reconciliation outcomes as Prometheus metrics.
//
// A Recorder owns its registry so that library callers never write to the
// global default registry. The CLI exports it with WriteToTextfile for the
// node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentstation/checkmate/pkg/errors"
)

const namespace = "checkmate"

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeMismatch = "identity_mismatch"
	OutcomeParse    = "parse_error"
	OutcomeMerge    = "merge_error"
	OutcomeCanceled = "canceled"
	OutcomeError    = "error"
)

// Recorder collects reconciliation metrics.
type Recorder struct {
	registry   *prometheus.Registry
	reconciles *prometheus.CounterVec
	rules      *prometheus.CounterVec
	duration   prometheus.Histogram
	mismatches prometheus.Counter
	downgrades prometheus.Counter
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliations_total",
			Help:      "Checklist reconciliations by outcome.",
		}, []string{"outcome"}),
		rules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_total",
			Help:      "Rules processed by match classification.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Time spent reconciling one checklist pair.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		mismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identity_mismatches_total",
			Help:      "Benchmark identity mismatches, forced or blocked.",
		}),
		downgrades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "version_downgrades_total",
			Help:      "Reconciliations onto an older benchmark version.",
		}),
	}
	r.registry.MustRegister(r.reconciles, r.rules, r.duration, r.mismatches, r.downgrades)
	return r
}

// Observe records one reconciliation attempt. A nil Recorder is a no-op.
func (r *Recorder) Observe(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.reconciles.WithLabelValues(outcome).Inc()
	r.duration.Observe(d.Seconds())
}

// Rules records match counts for one reconciliation.
func (r *Recorder) Rules(matched, added, removed int) {
	if r == nil {
		return
	}
	r.rules.WithLabelValues("matched").Add(float64(matched))
	r.rules.WithLabelValues("added").Add(float64(added))
	r.rules.WithLabelValues("removed").Add(float64(removed))
}

// Mismatch records a benchmark identity mismatch.
func (r *Recorder) Mismatch() {
	if r == nil {
		return
	}
	r.mismatches.Inc()
}

// Downgrade records a reconciliation onto an older version.
func (r *Recorder) Downgrade() {
	if r == nil {
		return
	}
	r.downgrades.Inc()
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteToTextfile writes all metrics in the text exposition format to path.
func (r *Recorder) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// OutcomeOf maps an error to an outcome label.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.IsIdentityMismatch(err):
		return OutcomeMismatch
	case errors.IsParseError(err):
		return OutcomeParse
	case errors.IsMergeError(err):
		return OutcomeMerge
	case errors.IsCanceled(err):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
