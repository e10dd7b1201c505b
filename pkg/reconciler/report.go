package reconciler

import (
	"fmt"
	"strings"

	"github.com/agentstation/utc"

	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/differ"
	"github.com/agentstation/checkmate/pkg/guard"
)

// Report summarizes one reconciliation.
type Report struct {
	BenchmarkID string            `json:"benchmark_id" yaml:"benchmark_id"`
	Source      string            `json:"source,omitempty" yaml:"source,omitempty"`
	Template    string            `json:"template,omitempty" yaml:"template,omitempty"`
	OldVersion  checklist.Version `json:"old_version" yaml:"old_version"`
	NewVersion  checklist.Version `json:"new_version" yaml:"new_version"`
	Downgrade   bool              `json:"downgrade,omitempty" yaml:"downgrade,omitempty"`

	MatchedCount    int `json:"matched_count" yaml:"matched_count"`
	AddedCount      int `json:"added_count" yaml:"added_count"`
	RemovedCount    int `json:"removed_count" yaml:"removed_count"`
	RenumberedCount int `json:"renumbered_count" yaml:"renumbered_count"`

	AddedRules      []string      `json:"added_rules" yaml:"added_rules"`
	RemovedRules    []string      `json:"removed_rules" yaml:"removed_rules"`
	RenumberedRules []Renumbering `json:"renumbered_rules,omitempty" yaml:"renumbered_rules,omitempty"`
	RevisedRules    []string      `json:"revised_rules,omitempty" yaml:"revised_rules,omitempty"`

	// IdentityMismatch is set when the benchmark ids differed and the
	// merge was forced.
	IdentityMismatch *guard.MismatchWarning `json:"identity_mismatch,omitempty" yaml:"identity_mismatch,omitempty"`

	GeneratedAt utc.Time `json:"generated_at" yaml:"generated_at"`
}

// Renumbering records a rule whose uid changed between versions.
type Renumbering struct {
	RuleKey string `json:"rule_key" yaml:"rule_key"`
	OldUID  string `json:"old_uid" yaml:"old_uid"`
	NewUID  string `json:"new_uid" yaml:"new_uid"`
}

func newReport(old, updated *checklist.Bundle, set *differ.MatchSet, g guard.Result) *Report {
	r := &Report{
		BenchmarkID:      updated.BenchmarkID(),
		Source:           old.Source(),
		Template:         updated.Source(),
		OldVersion:       old.Version(),
		NewVersion:       updated.Version(),
		Downgrade:        g.Downgrade,
		MatchedCount:     set.Summary.Matched,
		AddedCount:       set.Summary.Added,
		RemovedCount:     set.Summary.Removed,
		RenumberedCount:  set.Summary.Renumbered,
		AddedRules:       set.AddedKeys(),
		RemovedRules:     set.RemovedKeys(),
		IdentityMismatch: g.Warning,
		GeneratedAt:      utc.Now(),
	}
	for _, m := range set.Matched {
		if m.Renumbered() {
			r.RenumberedRules = append(r.RenumberedRules, Renumbering{
				RuleKey: m.Key,
				OldUID:  m.Old.RuleUID,
				NewUID:  m.New.RuleUID,
			})
		}
		if m.Revised() {
			r.RevisedRules = append(r.RevisedRules, m.Key)
		}
	}
	return r
}

// HasChanges returns true if any rule was added or removed.
func (r *Report) HasChanges() bool {
	return r.AddedCount > 0 || r.RemovedCount > 0
}

// Summary returns a one-line human-readable summary.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s → %s: %d matched, %d added, %d removed",
		r.BenchmarkID, versionString(r.OldVersion), versionString(r.NewVersion),
		r.MatchedCount, r.AddedCount, r.RemovedCount)
	if r.RenumberedCount > 0 {
		fmt.Fprintf(&b, ", %d renumbered", r.RenumberedCount)
	}
	if r.Downgrade {
		b.WriteString(" (version downgrade)")
	}
	if r.IdentityMismatch != nil {
		fmt.Fprintf(&b, " [forced: %s]", r.IdentityMismatch)
	}
	return b.String()
}

func versionString(v checklist.Version) string {
	if v.IsZero() {
		return "unknown"
	}
	return v.String()
}
