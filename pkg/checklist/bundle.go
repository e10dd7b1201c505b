package checklist

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/agentstation/checkmate/pkg/errors"
)

// Bundle is one checklist document tied to a specific benchmark version.
type Bundle struct {
	id             string
	benchmarkID    string
	benchmarkName  string
	version        Version
	rawVersion     string
	releaseInfo    string
	source         string
	hostMetadata   map[string]any
	rules          []RuleEvaluation
	index          map[string]int
	extra          Extras
	benchmarkExtra Extras
}

// New validates and builds a Bundle. Rule keys must be non-empty and unique
// after normalization, and every status must be valid.
func New(benchmarkID string, version Version, rules []RuleEvaluation, opts ...Option) (*Bundle, error) {
	b := &Bundle{
		benchmarkID: strings.TrimSpace(benchmarkID),
		version:     version,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.benchmarkID == "" {
		return nil, errors.NewValidationError("benchmark_id", benchmarkID, "cannot be empty")
	}
	if b.id == "" {
		b.id = uuid.NewString()
	}
	if err := b.setRules(rules); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bundle) setRules(rules []RuleEvaluation) error {
	b.rules = make([]RuleEvaluation, len(rules))
	b.index = make(map[string]int, len(rules))
	for i, r := range rules {
		key := NormalizeKey(r.RuleKey)
		if key == "" {
			return errors.NewValidationError(fmt.Sprintf("rules[%d].rule_key", i), r.RuleKey, "cannot be empty")
		}
		if prev, dup := b.index[key]; dup {
			return errors.NewValidationError(fmt.Sprintf("rules[%d].rule_key", i), r.RuleKey,
				fmt.Sprintf("duplicate of rules[%d]", prev))
		}
		if r.Status == "" {
			r.Status = StatusNotReviewed
		}
		if !r.Status.IsValid() {
			return errors.NewValidationError(fmt.Sprintf("rules[%d].status", i), string(r.Status),
				"must be one of not_reviewed, not_applicable, open, not_a_finding")
		}
		b.index[key] = i
		b.rules[i] = r.Clone()
	}
	return nil
}

// WithRules returns a new Bundle with the identity, version and extras of b
// and the given rules. The new bundle gets a fresh document id unless an
// option sets one; b is not modified.
func (b *Bundle) WithRules(rules []RuleEvaluation, opts ...Option) (*Bundle, error) {
	out := &Bundle{
		benchmarkID:    b.benchmarkID,
		benchmarkName:  b.benchmarkName,
		version:        b.version,
		rawVersion:     b.rawVersion,
		releaseInfo:    b.releaseInfo,
		source:         b.source,
		hostMetadata:   maps.Clone(b.hostMetadata),
		extra:          b.extra.Clone(),
		benchmarkExtra: b.benchmarkExtra.Clone(),
	}
	for _, opt := range opts {
		opt(out)
	}
	if out.id == "" {
		out.id = uuid.NewString()
	}
	if err := out.setRules(rules); err != nil {
		return nil, err
	}
	return out, nil
}

// ID returns the document id.
func (b *Bundle) ID() string { return b.id }

// BenchmarkID returns the benchmark identity as written in the document.
func (b *Bundle) BenchmarkID() string { return b.benchmarkID }

// BenchmarkName returns the benchmark title.
func (b *Bundle) BenchmarkName() string { return b.benchmarkName }

// Version returns the benchmark version.
func (b *Bundle) Version() Version { return b.version }

// RawVersion returns the version and release_info strings as loaded.
func (b *Bundle) RawVersion() (version, releaseInfo string) {
	return b.rawVersion, b.releaseInfo
}

// Source returns the label set by WithSource, or the benchmark id.
func (b *Bundle) Source() string {
	if b.source != "" {
		return b.source
	}
	return b.benchmarkID
}

// HostMetadata returns a copy of the host key/values.
func (b *Bundle) HostMetadata() map[string]any {
	return maps.Clone(b.hostMetadata)
}

// Extras returns copies of the uninterpreted document and benchmark keys.
func (b *Bundle) Extras() (document, benchmark Extras) {
	return b.extra.Clone(), b.benchmarkExtra.Clone()
}

// Len returns the number of rules.
func (b *Bundle) Len() int { return len(b.rules) }

// Rules returns a copy of the rules in benchmark order.
func (b *Bundle) Rules() []RuleEvaluation {
	out := make([]RuleEvaluation, len(b.rules))
	for i, r := range b.rules {
		out[i] = r.Clone()
	}
	return out
}

// Keys returns the rule keys in benchmark order.
func (b *Bundle) Keys() []string {
	keys := make([]string, len(b.rules))
	for i, r := range b.rules {
		keys[i] = r.RuleKey
	}
	return keys
}

// Rule looks a rule up by key, ignoring case and surrounding whitespace.
func (b *Bundle) Rule(key string) (RuleEvaluation, bool) {
	i, ok := b.index[NormalizeKey(key)]
	if !ok {
		return RuleEvaluation{}, false
	}
	return b.rules[i].Clone(), true
}

// Each calls fn for every rule in order without copying. fn must not
// retain or modify the rule.
func (b *Bundle) Each(fn func(i int, r *RuleEvaluation)) {
	for i := range b.rules {
		fn(i, &b.rules[i])
	}
}

// Clone returns a deep copy of b with the same document id.
func (b *Bundle) Clone() *Bundle {
	out, _ := b.WithRules(b.rules, WithID(b.id))
	return out
}

// StatusCounts tallies rules per status.
func (b *Bundle) StatusCounts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, r := range b.rules {
		counts[r.Status]++
	}
	return counts
}

// NewRules returns the keys of rules flagged IsNew.
func (b *Bundle) NewRules() []string {
	var keys []string
	for _, r := range b.rules {
		if r.IsNew {
			keys = append(keys, r.RuleKey)
		}
	}
	return slices.Clip(keys)
}
