package checklist

import (
	"encoding/json"
	"slices"
)

// Extras holds document keys this model does not interpret, kept verbatim
// so that a load and save round trip is lossless.
type Extras map[string]json.RawMessage

// Clone returns a copy of e.
func (e Extras) Clone() Extras {
	if e == nil {
		return nil
	}
	out := make(Extras, len(e))
	for k, v := range e {
		out[k] = slices.Clone(v)
	}
	return out
}

// RuleEvaluation is one checklist item.
type RuleEvaluation struct {
	// RuleKey is the cross-version identifier (group id, "V-xxxxx").
	RuleKey string
	// RuleUID is the release-local rule identifier ("SV-xxxxx_rule").
	RuleUID string

	// Benchmark content, replaced on upgrade.
	Severity     string
	Title        string
	Description  string
	GroupTitle   string
	RuleVersion  string
	CheckContent string
	FixText      string
	CCIs         []string

	// Evaluation data, carried forward on upgrade.
	Status         Status
	Comments       string
	FindingDetails string
	Overrides      map[string]any
	Tool           *ToolStatus

	// IsNew is true when the rule had no counterpart in the checklist it
	// was upgraded from.
	IsNew bool

	Extra Extras
}

// ToolStatus is the status pair an automated evaluator such as
// Evaluate-STIG recorded for a rule. Nil when the rule carries none.
type ToolStatus struct {
	OldStatus string
	NewStatus string
}

func (t *ToolStatus) clone() *ToolStatus {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Evaluation is the user-entered part of a RuleEvaluation.
type Evaluation struct {
	Status         Status
	Comments       string
	FindingDetails string
	Overrides      map[string]any
	Tool           *ToolStatus
}

// Evaluation returns a copy of the evaluation fields of r.
func (r RuleEvaluation) Evaluation() Evaluation {
	return Evaluation{
		Status:         r.Status,
		Comments:       r.Comments,
		FindingDetails: r.FindingDetails,
		Overrides:      cloneOverrides(r.Overrides),
		Tool:           r.Tool.clone(),
	}
}

// WithEvaluation returns a copy of r carrying e.
func (r RuleEvaluation) WithEvaluation(e Evaluation) RuleEvaluation {
	out := r.Clone()
	out.Status = e.Status
	out.Comments = e.Comments
	out.FindingDetails = e.FindingDetails
	out.Overrides = cloneOverrides(e.Overrides)
	out.Tool = e.Tool.clone()
	return out
}

// Reset returns a copy of r with evaluation data cleared to a first-review state.
func (r RuleEvaluation) Reset() RuleEvaluation {
	return r.WithEvaluation(Evaluation{Status: StatusNotReviewed})
}

// Clone returns a deep copy of r.
func (r RuleEvaluation) Clone() RuleEvaluation {
	out := r
	out.CCIs = slices.Clone(r.CCIs)
	out.Overrides = cloneOverrides(r.Overrides)
	out.Tool = r.Tool.clone()
	out.Extra = r.Extra.Clone()
	return out
}

// cloneOverrides deep-copies the JSON-shaped override tree.
func cloneOverrides(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneOverrides(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
