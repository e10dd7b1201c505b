package differ

import (
	"fmt"
	"io"
	"strings"

	"github.com/agentstation/checkmate/pkg/checklist"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates a rule was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates a rule's content was revised.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates a rule was removed.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a single content field of a rule.
type FieldChange struct {
	Path     string     // Field name (e.g., "check_content")
	OldValue string     // Previous value, truncated
	NewValue string     // New value, truncated
	Type     ChangeType // Type of change
}

// Match pairs the old and new revision of one rule.
type Match struct {
	Key     string                   // Rule key as written in the new bundle
	Old     checklist.RuleEvaluation // Rule from the old bundle
	New     checklist.RuleEvaluation // Rule from the new bundle
	Changes []FieldChange            // Content differences, nil if none
}

// Renumbered reports whether the rule's uid changed between versions.
func (m Match) Renumbered() bool {
	return m.Old.RuleUID != m.New.RuleUID
}

// Revised reports whether any content field changed.
func (m Match) Revised() bool {
	return len(m.Changes) > 0
}

// MatchSet partitions the rules of two bundles. Every new rule is in
// exactly one of Matched or Added; every old rule is in exactly one of
// Matched or Removed.
type MatchSet struct {
	Matched []Match                    // Rules present in both, new-bundle order
	Added   []checklist.RuleEvaluation // Rules only in the new bundle, new-bundle order
	Removed []checklist.RuleEvaluation // Rules only in the old bundle, old-bundle order
	Summary Summary                    // Summary statistics
}

// Summary provides counts for a MatchSet.
type Summary struct {
	Matched    int
	Added      int
	Removed    int
	Renumbered int
	Revised    int
	TotalNew   int
	TotalOld   int
}

// calculateSummary computes the summary for a match set.
func calculateSummary(m *MatchSet) Summary {
	s := Summary{
		Matched: len(m.Matched),
		Added:   len(m.Added),
		Removed: len(m.Removed),
	}
	for _, match := range m.Matched {
		if match.Renumbered() {
			s.Renumbered++
		}
		if match.Revised() {
			s.Revised++
		}
	}
	s.TotalNew = s.Matched + s.Added
	s.TotalOld = s.Matched + s.Removed
	return s
}

// Renumbered returns the matched pairs whose rule uid changed.
func (m *MatchSet) Renumbered() []Match {
	out := []Match{}
	for _, match := range m.Matched {
		if match.Renumbered() {
			out = append(out, match)
		}
	}
	return out
}

// AddedKeys returns the keys of added rules in order.
func (m *MatchSet) AddedKeys() []string {
	return keys(m.Added)
}

// RemovedKeys returns the keys of removed rules in order.
func (m *MatchSet) RemovedKeys() []string {
	return keys(m.Removed)
}

// MatchedKeys returns the keys of matched rules in order.
func (m *MatchSet) MatchedKeys() []string {
	out := make([]string, len(m.Matched))
	for i, match := range m.Matched {
		out[i] = match.Key
	}
	return out
}

// HasChanges returns true if any rule was added, removed or revised.
func (m *MatchSet) HasChanges() bool {
	return m.Summary.Added > 0 || m.Summary.Removed > 0 || m.Summary.Revised > 0
}

// String returns a human-readable summary of the match set.
func (m *MatchSet) String() string {
	if !m.HasChanges() {
		return fmt.Sprintf("No changes detected (%d rules matched)", m.Summary.Matched)
	}

	parts := []string{fmt.Sprintf("%d matched", m.Summary.Matched)}
	if m.Summary.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", m.Summary.Added))
	}
	if m.Summary.Removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", m.Summary.Removed))
	}
	if m.Summary.Revised > 0 {
		parts = append(parts, fmt.Sprintf("%d revised", m.Summary.Revised))
	}
	if m.Summary.Renumbered > 0 {
		parts = append(parts, fmt.Sprintf("%d renumbered", m.Summary.Renumbered))
	}
	return "Rules: " + strings.Join(parts, ", ")
}

// Print writes a detailed, human-readable view of the match set to w.
func (m *MatchSet) Print(w io.Writer) {
	fmt.Fprintln(w, m.String())
	fmt.Fprintln(w, strings.Repeat("─", 80))

	if len(m.Added) > 0 {
		fmt.Fprintf(w, "\n➕ Added Rules (%d):\n", len(m.Added))
		for _, r := range m.Added {
			printRule(w, r)
		}
	}

	revised := 0
	for _, match := range m.Matched {
		if !match.Revised() {
			continue
		}
		if revised == 0 {
			fmt.Fprintf(w, "\n🔄 Revised Rules (%d):\n", m.Summary.Revised)
		}
		revised++
		fmt.Fprintf(w, "  • %s:\n", match.Key)
		for _, change := range match.Changes {
			fmt.Fprintf(w, "    - %s: %s → %s\n", change.Path, change.OldValue, change.NewValue)
		}
	}

	if len(m.Removed) > 0 {
		fmt.Fprintf(w, "\n⚠️  Removed Rules (%d):\n", len(m.Removed))
		for _, r := range m.Removed {
			printRule(w, r)
		}
	}
}

func printRule(w io.Writer, r checklist.RuleEvaluation) {
	fmt.Fprintf(w, "  • %s", r.RuleKey)
	if r.Title != "" {
		fmt.Fprintf(w, " (%s)", truncateString(r.Title, 60))
	}
	fmt.Fprintln(w)
}

func keys(rules []checklist.RuleEvaluation) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.RuleKey
	}
	return out
}
