package checklist

import (
	"strings"

	"golang.org/x/text/cases"
)

// NormalizeKey returns the form of a rule key used for cross-version
// matching: surrounding whitespace trimmed and Unicode case folded.
func NormalizeKey(key string) string {
	return cases.Fold().String(strings.TrimSpace(key))
}

// NormalizeIdentity returns the form of a benchmark identity used for
// comparison: case folded, trimmed, and internal whitespace runs collapsed
// to a single space. Punctuation is significant.
func NormalizeIdentity(id string) string {
	return cases.Fold().String(strings.Join(strings.Fields(id), " "))
}
