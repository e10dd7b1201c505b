package reconciler

import (
	"fmt"
	"slices"

	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/differ"
	"github.com/agentstation/checkmate/pkg/errors"
)

// validateMerged checks the merged bundle against the template it was built
// from: same benchmark and version, same rule keys in the same order, and
// exactly the added rules flagged new.
func validateMerged(merged, updated *checklist.Bundle, set *differ.MatchSet) error {
	fail := func(ids []string, format string, args ...any) error {
		return errors.NewMergeError(merged.Source(), updated.Source(), ids, fmt.Errorf(format, args...))
	}

	if merged.BenchmarkID() != updated.BenchmarkID() {
		return fail(nil, "benchmark id %q differs from template %q", merged.BenchmarkID(), updated.BenchmarkID())
	}
	if merged.Version().Compare(updated.Version()) != 0 {
		return fail(nil, "version %s differs from template %s", merged.Version(), updated.Version())
	}
	if !slices.Equal(merged.Keys(), updated.Keys()) {
		return fail(nil, "rule order differs from template")
	}

	fresh := merged.NewRules()
	if !slices.Equal(fresh, set.AddedKeys()) {
		return fail(fresh, "new-rule flags do not match added rules")
	}
	return nil
}
