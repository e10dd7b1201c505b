// Package differ computes the correspondence between the rules of two
// checklist bundles.
package differ

import (
	"fmt"
	"slices"

	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/errors"
)

// Differ handles rule correspondence between checklist versions.
type Differ interface {
	// Rules partitions the rules of old and updated into matched, added
	// and removed sets. Neither bundle is modified.
	Rules(old, updated *checklist.Bundle) (*MatchSet, error)
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields   map[string]bool
	deepComparison bool
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreFields:   make(map[string]bool),
		deepComparison: true,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Rules matches rules by normalized rule key. Matched pairs and additions
// follow the order of updated; removals follow the order of old.
func (diff *differ) Rules(old, updated *checklist.Bundle) (*MatchSet, error) {
	if old == nil || updated == nil {
		return nil, errors.NewMergeError(source(old), source(updated), nil, errors.New("nil bundle"))
	}

	oldRules := old.Rules()
	oldIndex, dups := index(oldRules)
	newRules := updated.Rules()
	_, newDups := index(newRules)
	if dups = append(dups, newDups...); len(dups) > 0 {
		return nil, errors.NewMergeError(old.Source(), updated.Source(), dups, nil)
	}

	set := &MatchSet{
		Matched: []Match{},
		Added:   []checklist.RuleEvaluation{},
		Removed: []checklist.RuleEvaluation{},
	}

	hit := make([]bool, len(oldRules))
	for _, n := range newRules {
		i, ok := oldIndex[checklist.NormalizeKey(n.RuleKey)]
		if !ok {
			set.Added = append(set.Added, n)
			continue
		}
		hit[i] = true
		m := Match{
			Key: n.RuleKey,
			Old: oldRules[i],
			New: n,
		}
		if diff.deepComparison {
			m.Changes = diff.rule(m.Old, m.New)
		}
		set.Matched = append(set.Matched, m)
	}

	for i, o := range oldRules {
		if !hit[i] {
			set.Removed = append(set.Removed, o)
		}
	}

	set.Summary = calculateSummary(set)
	return set, nil
}

// index maps normalized keys to positions and reports duplicate keys.
func index(rules []checklist.RuleEvaluation) (map[string]int, []string) {
	idx := make(map[string]int, len(rules))
	var dups []string
	for i, r := range rules {
		key := checklist.NormalizeKey(r.RuleKey)
		if _, ok := idx[key]; ok {
			dups = append(dups, r.RuleKey)
			continue
		}
		idx[key] = i
	}
	return idx, dups
}

// rule lists the content fields that differ between two revisions of a rule.
func (diff *differ) rule(old, updated checklist.RuleEvaluation) []FieldChange {
	changes := []FieldChange{}

	add := func(path, oldValue, newValue string) {
		if oldValue == newValue || diff.ignoreFields[path] {
			return
		}
		changes = append(changes, FieldChange{
			Path:     path,
			OldValue: truncateString(oldValue, 50),
			NewValue: truncateString(newValue, 50),
			Type:     ChangeTypeUpdate,
		})
	}

	add("rule_uid", old.RuleUID, updated.RuleUID)
	add("severity", old.Severity, updated.Severity)
	add("title", old.Title, updated.Title)
	add("description", old.Description, updated.Description)
	add("group_title", old.GroupTitle, updated.GroupTitle)
	add("rule_version", old.RuleVersion, updated.RuleVersion)
	add("check_content", old.CheckContent, updated.CheckContent)
	add("fix_text", old.FixText, updated.FixText)
	if !slices.Equal(old.CCIs, updated.CCIs) && !diff.ignoreFields["ccis"] {
		changes = append(changes, FieldChange{
			Path:     "ccis",
			OldValue: fmt.Sprint(old.CCIs),
			NewValue: fmt.Sprint(updated.CCIs),
			Type:     ChangeTypeUpdate,
		})
	}

	if len(changes) == 0 {
		return nil
	}
	return changes
}

func source(b *checklist.Bundle) string {
	if b == nil {
		return "<nil>"
	}
	return b.Source()
}

// truncateString truncates a string to maxLen characters.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
