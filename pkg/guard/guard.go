// Package guard decides whether two checklist bundles may be reconciled.
//
// Bundles are compatible when their benchmark ids are equal after trimming,
// collapsing internal whitespace and Unicode case folding. No other
// normalization is applied: "WIN10" and "WIN_10" are different benchmarks.
// Only identity and version are read; rules are never inspected.
package guard

import (
	"fmt"

	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/errors"
)

// MismatchWarning records two benchmark ids that did not match.
type MismatchWarning struct {
	OldID string `json:"old_id" yaml:"old_id"`
	NewID string `json:"new_id" yaml:"new_id"`
}

// String implements fmt.Stringer.
func (w *MismatchWarning) String() string {
	return fmt.Sprintf("benchmark mismatch: %q vs %q", w.OldID, w.NewID)
}

// Result is the guard's decision.
type Result struct {
	// Proceed is true when reconciliation may continue.
	Proceed bool
	// Warning is set whenever the ids differ, forced or not.
	Warning *MismatchWarning
	// Downgrade is set when the new version orders before the old one.
	Downgrade bool
	// Forced is set when a mismatch was overridden.
	Forced bool
}

// Err returns an *errors.IdentityMismatchError when the result blocks
// reconciliation and nil otherwise.
func (r Result) Err() error {
	if r.Proceed {
		return nil
	}
	if r.Warning == nil {
		return errors.NewMergeError("", "", nil, errors.New("guard blocked without a mismatch"))
	}
	return errors.NewIdentityMismatchError(r.Warning.OldID, r.Warning.NewID)
}

// Check compares the identities of old and updated. A mismatch blocks
// unless force is set, in which case the warning is still reported.
func Check(old, updated *checklist.Bundle, force bool) Result {
	oldID, newID := old.BenchmarkID(), updated.BenchmarkID()

	r := Result{
		Proceed:   true,
		Downgrade: Downgrade(old.Version(), updated.Version()),
	}
	if SameBenchmark(oldID, newID) {
		return r
	}

	r.Warning = &MismatchWarning{OldID: oldID, NewID: newID}
	r.Proceed = force
	r.Forced = force
	return r
}

// SameBenchmark reports whether two benchmark ids identify the same benchmark.
func SameBenchmark(a, b string) bool {
	return checklist.NormalizeIdentity(a) == checklist.NormalizeIdentity(b)
}

// Downgrade reports whether updated orders strictly before old. Versions
// that could not be determined never count as a downgrade.
func Downgrade(old, updated checklist.Version) bool {
	if old.IsZero() || updated.IsZero() {
		return false
	}
	return updated.Less(old)
}
