package reconciler

import (
	"maps"

	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/differ"
	"github.com/agentstation/checkmate/pkg/errors"
)

// merger builds the rule list and host metadata of a merged bundle.
type merger struct {
	strategy Strategy
}

// newMerger creates a merger using strategy for matched rules.
func newMerger(strategy Strategy) *merger {
	return &merger{strategy: strategy}
}

// Rules returns the rules of updated, in order, with evaluations carried
// from their matched old revisions. Rules the match set lists as added are
// reset and flagged new. A rule the match set does not account for is a
// MergeError.
func (m *merger) Rules(old, updated *checklist.Bundle, set *differ.MatchSet) ([]checklist.RuleEvaluation, error) {
	matched := make(map[string]differ.Match, len(set.Matched))
	for _, match := range set.Matched {
		matched[checklist.NormalizeKey(match.New.RuleKey)] = match
	}
	added := make(map[string]bool, len(set.Added))
	for _, r := range set.Added {
		added[checklist.NormalizeKey(r.RuleKey)] = true
	}

	rules := make([]checklist.RuleEvaluation, 0, updated.Len())
	var unaccounted []string
	for _, n := range updated.Rules() {
		key := checklist.NormalizeKey(n.RuleKey)
		if match, ok := matched[key]; ok {
			r := n.WithEvaluation(m.strategy.Carry(match))
			r.IsNew = false
			rules = append(rules, r)
			continue
		}
		if added[key] {
			r := n.Reset()
			r.IsNew = true
			rules = append(rules, r)
			continue
		}
		unaccounted = append(unaccounted, n.RuleKey)
	}

	if len(unaccounted) > 0 || len(matched)+len(added) != updated.Len() {
		return nil, errors.NewMergeError(old.Source(), updated.Source(), unaccounted,
			errors.New("match set does not partition the new checklist"))
	}
	return rules, nil
}

// HostMetadata overlays the old host values on the new template's defaults.
func (m *merger) HostMetadata(old, updated *checklist.Bundle) map[string]any {
	host := updated.HostMetadata()
	if host == nil {
		host = make(map[string]any)
	}
	maps.Copy(host, old.HostMetadata())
	if len(host) == 0 {
		return nil
	}
	return host
}
