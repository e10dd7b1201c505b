package reconciler

import (
	"strings"

	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/differ"
)

// StrategyType represents the type of carry-forward strategy.
type StrategyType string

// String returns the string representation of a strategy type.
func (s StrategyType) String() string {
	return string(s)
}

// Name returns the name of the strategy type.
func (s StrategyType) Name() string {
	words := strings.Split(s.String(), "-")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

const (
	// StrategyTypeCarryForward copies every evaluation field from the old rule.
	StrategyTypeCarryForward StrategyType = "carry-forward"
	// StrategyTypeReviewRevised copies evaluations but sends rules whose
	// check or fix text changed back to not_reviewed, keeping the comments.
	StrategyTypeReviewRevised StrategyType = "review-revised"
)

// Strategy decides what a matched rule inherits from its old revision.
type Strategy interface {
	// Type returns the strategy type
	Type() StrategyType

	// Description returns a human-readable description
	Description() string

	// Carry returns the evaluation the merged rule should hold.
	Carry(m differ.Match) checklist.Evaluation
}

// baseStrategy provides common strategy functionality.
type baseStrategy struct {
	typ         StrategyType
	description string
}

// Type returns the strategy type.
func (s *baseStrategy) Type() StrategyType {
	return s.typ
}

// Description returns a human-readable description.
func (s *baseStrategy) Description() string {
	return s.description
}

// CarryForwardStrategy copies the old evaluation unchanged, including any
// evaluator status pair.
type CarryForwardStrategy struct {
	baseStrategy
}

// NewCarryForwardStrategy creates the default strategy.
func NewCarryForwardStrategy() Strategy {
	return &CarryForwardStrategy{
		baseStrategy: baseStrategy{
			typ:         StrategyTypeCarryForward,
			description: "Carries status, comments, finding details and overrides onto matched rules",
		},
	}
}

// Carry returns the old rule's evaluation.
func (s *CarryForwardStrategy) Carry(m differ.Match) checklist.Evaluation {
	return m.Old.Evaluation()
}

// ReviewRevisedStrategy behaves like CarryForwardStrategy except for rules
// whose check content or fix text changed between versions.
type ReviewRevisedStrategy struct {
	baseStrategy
}

// NewReviewRevisedStrategy creates a strategy that flags revised checks for review.
func NewReviewRevisedStrategy() Strategy {
	return &ReviewRevisedStrategy{
		baseStrategy: baseStrategy{
			typ:         StrategyTypeReviewRevised,
			description: "Carries evaluations but resets status on rules whose check or fix text changed",
		},
	}
}

// Carry returns the old evaluation, with status reset when the check was revised.
func (s *ReviewRevisedStrategy) Carry(m differ.Match) checklist.Evaluation {
	e := m.Old.Evaluation()
	if m.Old.CheckContent != m.New.CheckContent || m.Old.FixText != m.New.FixText {
		e.Status = checklist.StatusNotReviewed
	}
	return e
}

// ParseStrategy returns the strategy named by typ.
func ParseStrategy(typ string) (Strategy, bool) {
	switch StrategyType(strings.ToLower(strings.TrimSpace(typ))) {
	case StrategyTypeCarryForward, "":
		return NewCarryForwardStrategy(), true
	case StrategyTypeReviewRevised:
		return NewReviewRevisedStrategy(), true
	default:
		return nil, false
	}
}
