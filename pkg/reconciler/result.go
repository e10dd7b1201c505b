package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/guard"
)

// Result represents the outcome of reconciling one old checklist.
type Result struct {
	// Index is the position of the old checklist in the batch input.
	Index int

	// Source labels the old checklist, typically its path.
	Source string

	// Core data, nil when Err is set
	Bundle *checklist.Bundle
	Report *Report

	// Guard holds the identity decision; it is zero if the guard never ran.
	Guard guard.Result

	// Err is the failure for this slot, if any.
	Err error

	// Metadata
	Metadata ResultMetadata
}

// ResultMetadata contains timing for one reconciliation.
type ResultMetadata struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Strategy  StrategyType
}

// IsSuccess returns true if the reconciliation produced a bundle.
func (r *Result) IsSuccess() bool {
	return r.Err == nil && r.Bundle != nil
}

// HasChanges returns true if rules were added or removed.
func (r *Result) HasChanges() bool {
	return r.Report != nil && r.Report.HasChanges()
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	if r.Err != nil {
		return fmt.Sprintf("Reconciliation of %s failed: %v", r.label(), r.Err)
	}
	if r.Report == nil {
		return fmt.Sprintf("Reconciliation of %s completed.", r.label())
	}
	return fmt.Sprintf("Reconciliation of %s completed. %s", r.label(), r.Report.Summary())
}

func (r *Result) label() string {
	if r.Source != "" {
		return r.Source
	}
	return fmt.Sprintf("checklist #%d", r.Index)
}

// NewResult creates a new result for slot index.
func NewResult(index int, source string) *Result {
	return &Result{
		Index:  index,
		Source: source,
		Metadata: ResultMetadata{
			StartTime: time.Now(),
		},
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}
