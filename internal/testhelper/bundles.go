// Package testhelper provides checklist builders and fixture utilities for
// tests across the module.
package testhelper

import (
	"fmt"
	"testing"

	"github.com/agentstation/checkmate/pkg/checklist"
)

// Rule builds an unevaluated rule with content derived from key.
func Rule(key string) checklist.RuleEvaluation {
	return checklist.RuleEvaluation{
		RuleKey:      key,
		RuleUID:      "S" + key + "r1_rule",
		Severity:     "medium",
		Title:        "Title of " + key,
		Description:  "Discussion of " + key,
		CheckContent: "Check " + key,
		FixText:      "Fix " + key,
		CCIs:         []string{"CCI-000001"},
		Status:       checklist.StatusNotReviewed,
	}
}

// Evaluated builds a rule carrying evaluation data.
func Evaluated(key string, status checklist.Status, comment string) checklist.RuleEvaluation {
	r := Rule(key)
	r.Status = status
	r.Comments = comment
	r.FindingDetails = "Details for " + key
	r.Overrides = map[string]any{"severity": map[string]any{"severity": "low", "reason": comment}}
	return r
}

// Revised returns r with a new uid and content, as a later benchmark
// release would publish it. Evaluation fields are reset.
func Revised(r checklist.RuleEvaluation, revision int) checklist.RuleEvaluation {
	out := r.Reset()
	out.RuleUID = fmt.Sprintf("S%sr%d_rule", r.RuleKey, revision)
	out.Title = fmt.Sprintf("%s (revision %d)", r.Title, revision)
	out.CheckContent = fmt.Sprintf("%s (revision %d)", r.CheckContent, revision)
	return out
}

// Bundle builds a bundle or fails the test.
func Bundle(t testing.TB, benchmarkID, version string, rules ...checklist.RuleEvaluation) *checklist.Bundle {
	t.Helper()

	v, err := checklist.ParseVersion(version)
	if err != nil {
		t.Fatalf("invalid version %q: %v", version, err)
	}
	b, err := checklist.New(benchmarkID, v, rules,
		checklist.WithName(benchmarkID+" Security Technical Implementation Guide"),
		checklist.WithSource(benchmarkID+"_"+version+".cklb"),
		checklist.WithHostMetadata(map[string]any{"host_name": "", "target_type": "Computing"}),
	)
	if err != nil {
		t.Fatalf("failed to build bundle: %v", err)
	}
	return b
}

// HostBundle builds a bundle whose host metadata names host.
func HostBundle(t testing.TB, host, benchmarkID, version string, rules ...checklist.RuleEvaluation) *checklist.Bundle {
	t.Helper()

	b := Bundle(t, benchmarkID, version, rules...)
	out, err := b.WithRules(b.Rules(),
		checklist.WithID(b.ID()),
		checklist.WithSource(host+".cklb"),
		checklist.WithHostMetadata(map[string]any{"host_name": host, "target_type": "Computing"}),
	)
	if err != nil {
		t.Fatalf("failed to build bundle: %v", err)
	}
	return out
}

// Keys builds a slice of unevaluated rules for the given keys.
func Keys(keys ...string) []checklist.RuleEvaluation {
	out := make([]checklist.RuleEvaluation, len(keys))
	for i, k := range keys {
		out[i] = Rule(k)
	}
	return out
}
