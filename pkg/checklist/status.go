package checklist

import (
	"strings"

	"github.com/agentstation/checkmate/pkg/errors"
)

// Status is the evaluation outcome recorded for a rule.
type Status string

// Status values.
const (
	StatusNotReviewed   Status = "not_reviewed"
	StatusNotApplicable Status = "not_applicable"
	StatusOpen          Status = "open"
	StatusNotAFinding   Status = "not_a_finding"
)

// Statuses lists every valid status in display order.
func Statuses() []Status {
	return []Status{StatusNotReviewed, StatusOpen, StatusNotAFinding, StatusNotApplicable}
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusNotReviewed, StatusNotApplicable, StatusOpen, StatusNotAFinding:
		return true
	default:
		return false
	}
}

// String returns the status as written in a checklist.
func (s Status) String() string {
	return string(s)
}

// ParseStatus parses a status string. An empty status means not reviewed.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return StatusNotReviewed, nil
	}
	if !st.IsValid() {
		return "", errors.NewValidationError("status", s, "must be one of not_reviewed, not_applicable, open, not_a_finding")
	}
	return st, nil
}
