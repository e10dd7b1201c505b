// Package checkmate upgrades completed STIG checklists to newer benchmark
// releases.
//
// A completed checklist for benchmark version N is reconciled against a
// freshly generated, unevaluated checklist for version N+k. The result keeps
// the newer benchmark's rules and content and carries forward every prior
// evaluation (status, comments, finding details and severity overrides) onto
// rules that still exist. Added, removed and renumbered rules are reported.
//
// The three core operations are GuardCheck, ReconcileOne and ReconcileBatch.
// UpgradeFiles, CompareFiles and ValidateFiles work on CKLB files on disk.
package checkmate

import (
	"context"

	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/guard"
	"github.com/agentstation/checkmate/pkg/reconciler"
)

// GuardCheck decides whether old may be reconciled onto updated.
func GuardCheck(old, updated *checklist.Bundle, force bool) guard.Result {
	return guard.Check(old, updated, force)
}

// ReconcileOne reconciles a single pair. The returned result is never nil.
func ReconcileOne(ctx context.Context, old, updated *checklist.Bundle, force bool) (*reconciler.Result, error) {
	r, err := reconciler.New(reconciler.WithForce(force))
	if err != nil {
		return nil, err
	}
	return r.One(ctx, old, updated)
}

// ReconcileBatch reconciles every old bundle against one shared template and
// returns one result per input, in order. Failures are reported per slot.
func ReconcileBatch(ctx context.Context, olds []*checklist.Bundle, updated *checklist.Bundle, force bool) []reconciler.Result {
	r, err := reconciler.New(reconciler.WithForce(force))
	if err != nil {
		results := make([]reconciler.Result, len(olds))
		for i := range results {
			results[i] = reconciler.Result{Index: i, Err: err}
		}
		return results
	}
	return r.Batch(ctx, olds, updated)
}
