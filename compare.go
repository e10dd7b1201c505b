package checkmate

import (
	"context"

	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/cklb"
	"github.com/agentstation/checkmate/pkg/differ"
	"github.com/agentstation/checkmate/pkg/errors"
	"github.com/agentstation/checkmate/pkg/guard"
)

// Comparison describes how the rules of two checklists correspond, without
// merging them.
type Comparison struct {
	OldPath    string
	NewPath    string
	OldID      string
	NewID      string
	OldVersion checklist.Version
	NewVersion checklist.Version
	// Guard holds the identity decision. Comparisons never block on a
	// mismatch; Guard.Warning reports it.
	Guard   guard.Result
	Matches *differ.MatchSet
	Err     error
}

// Compare matches the rules of old and updated.
func Compare(old, updated *checklist.Bundle) (*Comparison, error) {
	if old == nil || updated == nil {
		return nil, errors.NewMergeError("", "", nil, errors.New("nil bundle"))
	}
	set, err := differ.New().Rules(old, updated)
	if err != nil {
		return nil, err
	}
	return &Comparison{
		OldPath:    old.Source(),
		NewPath:    updated.Source(),
		OldID:      old.BenchmarkID(),
		NewID:      updated.BenchmarkID(),
		OldVersion: old.Version(),
		NewVersion: updated.Version(),
		Guard:      guard.Check(old, updated, true),
		Matches:    set,
	}, nil
}

// CompareFiles compares each old checklist with the checklist at newPath.
// A file that fails to load fails only its own comparison. The returned
// error is set only when newPath cannot be loaded.
func CompareFiles(ctx context.Context, oldPaths []string, newPath string) ([]Comparison, error) {
	updated, err := cklb.Load(newPath)
	if err != nil {
		return nil, err
	}

	out := make([]Comparison, len(oldPaths))
	for i, path := range oldPaths {
		out[i] = Comparison{OldPath: path, NewPath: newPath}
		if err := ctx.Err(); err != nil {
			out[i].Err = errors.Join(errors.ErrCanceled, err)
			continue
		}
		old, err := cklb.Load(path)
		if err != nil {
			out[i].Err = err
			continue
		}
		c, err := Compare(old, updated)
		if err != nil {
			out[i].Err = err
			continue
		}
		out[i] = *c
	}
	return out, nil
}
