package differ_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/checkmate/internal/testhelper"
	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/differ"
	"github.com/agentstation/checkmate/pkg/errors"
)

func TestRulesPartition(t *testing.T) {
	old := testhelper.Bundle(t, "WIN10", "V2R1",
		testhelper.Evaluated("V-1001", checklist.StatusOpen, "a"),
		testhelper.Evaluated("V-1002", checklist.StatusNotAFinding, "b"),
		testhelper.Evaluated("V-1099", checklist.StatusNotApplicable, "c"),
	)
	updated := testhelper.Bundle(t, "WIN10", "V2R2", testhelper.Keys("V-1003", "V-1002", "V-1001")...)

	set, err := differ.New().Rules(old, updated)
	require.NoError(t, err)

	assert.Equal(t, []string{"V-1002", "V-1001"}, set.MatchedKeys())
	assert.Equal(t, []string{"V-1003"}, set.AddedKeys())
	assert.Equal(t, []string{"V-1099"}, set.RemovedKeys())

	assert.Equal(t, updated.Len(), set.Summary.Matched+set.Summary.Added)
	assert.Equal(t, old.Len(), set.Summary.Matched+set.Summary.Removed)
	assert.Equal(t, updated.Len(), set.Summary.TotalNew)
	assert.Equal(t, old.Len(), set.Summary.TotalOld)

	m := set.Matched[1]
	assert.Equal(t, "a", m.Old.Comments)
	assert.Equal(t, checklist.StatusNotReviewed, m.New.Status)
}

func TestRulesOrdering(t *testing.T) {
	old := testhelper.Bundle(t, "A", "V1R1", testhelper.Keys("V-5", "V-1", "V-3", "V-2")...)
	updated := testhelper.Bundle(t, "A", "V1R2", testhelper.Keys("V-9", "V-3", "V-8", "V-5")...)

	set, err := differ.New().Rules(old, updated)
	require.NoError(t, err)

	assert.Equal(t, []string{"V-3", "V-5"}, set.MatchedKeys(), "matched follow new order")
	assert.Equal(t, []string{"V-9", "V-8"}, set.AddedKeys(), "added follow new order")
	assert.Equal(t, []string{"V-1", "V-2"}, set.RemovedKeys(), "removed follow old order")
}

func TestRulesNormalization(t *testing.T) {
	old := testhelper.Bundle(t, "A", "V1R1", testhelper.Keys(" v-1001 ", "V-1002")...)
	updated := testhelper.Bundle(t, "A", "V1R2", testhelper.Keys("V-1001", "V_1002")...)

	set, err := differ.New().Rules(old, updated)
	require.NoError(t, err)

	assert.Equal(t, []string{"V-1001"}, set.MatchedKeys())
	assert.Equal(t, []string{"V_1002"}, set.AddedKeys(), "no fuzzy matching beyond case and whitespace")
	assert.Equal(t, []string{"V-1002"}, set.RemovedKeys())
}

func TestRulesEmpty(t *testing.T) {
	tests := []struct {
		name    string
		old     []checklist.RuleEvaluation
		updated []checklist.RuleEvaluation
		matched int
		added   int
		removed int
	}{
		{"both empty", nil, nil, 0, 0, 0},
		{"old empty", nil, testhelper.Keys("V-1", "V-2"), 0, 2, 0},
		{"new empty", testhelper.Keys("V-1", "V-2"), nil, 0, 0, 2},
		{"identical", testhelper.Keys("V-1", "V-2"), testhelper.Keys("V-1", "V-2"), 2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := testhelper.Bundle(t, "A", "V1R1", tt.old...)
			updated := testhelper.Bundle(t, "A", "V1R2", tt.updated...)

			set, err := differ.New().Rules(old, updated)
			require.NoError(t, err)
			assert.Equal(t, tt.matched, set.Summary.Matched)
			assert.Equal(t, tt.added, set.Summary.Added)
			assert.Equal(t, tt.removed, set.Summary.Removed)
			assert.NotNil(t, set.Matched)
			assert.NotNil(t, set.Added)
			assert.NotNil(t, set.Removed)
		})
	}
}

func TestRulesNilBundle(t *testing.T) {
	b := testhelper.Bundle(t, "A", "V1R1", testhelper.Keys("V-1")...)

	_, err := differ.New().Rules(nil, b)
	require.Error(t, err)
	assert.True(t, errors.IsMergeError(err))

	_, err = differ.New().Rules(b, nil)
	assert.True(t, errors.IsMergeError(err))
}

func TestRulesDoesNotMutate(t *testing.T) {
	old := testhelper.Bundle(t, "A", "V1R1", testhelper.Evaluated("V-1", checklist.StatusOpen, "x"))
	updated := testhelper.Bundle(t, "A", "V1R2", testhelper.Keys("V-1")...)
	before := old.Rules()

	set, err := differ.New().Rules(old, updated)
	require.NoError(t, err)
	set.Matched[0].Old.Comments = "changed"
	set.Matched[0].Old.Overrides["severity"] = "high"

	assert.Equal(t, before, old.Rules())
}

func TestRevisionDetection(t *testing.T) {
	base := testhelper.Evaluated("V-1001", checklist.StatusOpen, "x")
	old := testhelper.Bundle(t, "A", "V1R1", base, testhelper.Rule("V-1002"))
	updated := testhelper.Bundle(t, "A", "V1R2", testhelper.Revised(base, 2), testhelper.Rule("V-1002"))

	t.Run("deep", func(t *testing.T) {
		set, err := differ.New().Rules(old, updated)
		require.NoError(t, err)

		assert.Equal(t, 1, set.Summary.Renumbered)
		assert.Equal(t, 1, set.Summary.Revised)
		require.Len(t, set.Renumbered(), 1)
		assert.Equal(t, "V-1001", set.Renumbered()[0].Key)

		var paths []string
		for _, c := range set.Matched[0].Changes {
			paths = append(paths, c.Path)
			assert.Equal(t, differ.ChangeTypeUpdate, c.Type)
		}
		assert.ElementsMatch(t, []string{"rule_uid", "title", "check_content"}, paths)
		assert.Nil(t, set.Matched[1].Changes)
		assert.True(t, set.HasChanges())
	})

	t.Run("ignored fields", func(t *testing.T) {
		set, err := differ.New(differ.WithIgnoredFields("title", "check_content")).Rules(old, updated)
		require.NoError(t, err)
		require.Len(t, set.Matched[0].Changes, 1)
		assert.Equal(t, "rule_uid", set.Matched[0].Changes[0].Path)
	})

	t.Run("shallow", func(t *testing.T) {
		set, err := differ.New(differ.WithDeepComparison(false)).Rules(old, updated)
		require.NoError(t, err)
		assert.Equal(t, 0, set.Summary.Revised)
		assert.Equal(t, 1, set.Summary.Renumbered, "renumbering is independent of deep comparison")
		assert.False(t, set.HasChanges())
	})
}

func TestMatchSetString(t *testing.T) {
	old := testhelper.Bundle(t, "A", "V1R1", testhelper.Keys("V-1", "V-2")...)

	t.Run("no changes", func(t *testing.T) {
		set, err := differ.New().Rules(old, old)
		require.NoError(t, err)
		assert.Equal(t, "No changes detected (2 rules matched)", set.String())
	})

	t.Run("changes", func(t *testing.T) {
		updated := testhelper.Bundle(t, "A", "V1R2", testhelper.Keys("V-2", "V-3")...)
		set, err := differ.New().Rules(old, updated)
		require.NoError(t, err)
		assert.Equal(t, "Rules: 1 matched, 1 added, 1 removed", set.String())

		var buf bytes.Buffer
		set.Print(&buf)
		out := buf.String()
		assert.Contains(t, out, "Added Rules (1)")
		assert.Contains(t, out, "V-3 (Title of V-3)")
		assert.Contains(t, out, "Removed Rules (1)")
		assert.NotContains(t, out, "Revised Rules")
	})
}
