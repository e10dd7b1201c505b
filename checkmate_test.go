package checkmate_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/checkmate"
	"github.com/agentstation/checkmate/internal/testhelper"
	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/errors"
	"github.com/agentstation/checkmate/pkg/logging"
)

var fixedDate = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedDate }

func TestGuardCheck(t *testing.T) {
	old := testhelper.Bundle(t, "WIN10", "V1R1")
	updated := testhelper.Bundle(t, "WIN_10", "V1R2")

	r := checkmate.GuardCheck(old, updated, false)
	assert.False(t, r.Proceed)
	require.NotNil(t, r.Warning)

	r = checkmate.GuardCheck(old, updated, true)
	assert.True(t, r.Proceed)
	assert.NotNil(t, r.Warning)
}

func TestReconcileOneAndBatch(t *testing.T) {
	old := testhelper.Bundle(t, "A", "V1R1", testhelper.Evaluated("V-1", checklist.StatusOpen, "x"))
	updated := testhelper.Bundle(t, "A", "V1R2", testhelper.Keys("V-1", "V-2")...)

	one, err := checkmate.ReconcileOne(context.Background(), old, updated, false)
	require.NoError(t, err)
	assert.Equal(t, 1, one.Report.AddedCount)

	batch := checkmate.ReconcileBatch(context.Background(), []*checklist.Bundle{old, nil, old}, updated, false)
	require.Len(t, batch, 3)
	assert.NoError(t, batch[0].Err)
	assert.True(t, errors.IsMergeError(batch[1].Err))
	assert.NoError(t, batch[2].Err)
	assert.Equal(t, one.Bundle.Rules(), batch[2].Bundle.Rules())
}

func TestUpgradeFilesIsolatesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	template := testhelper.WriteChecklist(t, dir, "template.cklb",
		testhelper.Bundle(t, "WIN10", "V2R2", testhelper.Keys("V-1001", "V-1003")...))

	host1 := testhelper.WriteChecklist(t, dir, "host1.cklb",
		testhelper.HostBundle(t, "host1", "WIN10", "V2R1",
			testhelper.Evaluated("V-1001", checklist.StatusOpen, "h1"),
			testhelper.Evaluated("V-1002", checklist.StatusNotAFinding, "h1")))
	corrupt := testhelper.WriteFile(t, dir, "host2.cklb", []byte(`{"stigs": [{"stig_id": `))
	host3 := testhelper.WriteChecklist(t, dir, "host3.cklb",
		testhelper.HostBundle(t, "host3", "WIN10", "V2R1",
			testhelper.Evaluated("V-1001", checklist.StatusNotAFinding, "h3")))

	outDir := filepath.Join(dir, "out")
	results, err := checkmate.UpgradeFiles(context.Background(),
		[]string{host1, corrupt, host3}, template,
		checkmate.WithOutputDir(outDir),
		checkmate.WithClock(clock),
		checkmate.WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].OK())
	assert.True(t, results[2].OK())
	assert.False(t, results[1].OK())
	assert.True(t, errors.IsParseError(results[1].Err))
	assert.Nil(t, results[1].Result)

	var pErr *errors.ParseError
	require.ErrorAs(t, results[1].Err, &pErr)
	assert.Equal(t, corrupt, pErr.File)

	assert.Equal(t, filepath.Join(outDir, "host1_upgraded_20260314.cklb"), results[0].OutputPath)
	merged := testhelper.LoadChecklist(t, results[0].OutputPath)
	assert.Equal(t, []string{"V-1001", "V-1003"}, merged.Keys())
	r, _ := merged.Rule("V-1001")
	assert.Equal(t, checklist.StatusOpen, r.Status)
	assert.Equal(t, "h1", r.Comments)
	r, _ = merged.Rule("V-1003")
	assert.True(t, r.IsNew)
	assert.Equal(t, "host1", merged.HostMetadata()["host_name"])
	assert.Equal(t, []string{"V-1002"}, results[0].Result.Report.RemovedRules)

	merged3 := testhelper.LoadChecklist(t, results[2].OutputPath)
	r, _ = merged3.Rule("V-1001")
	assert.Equal(t, checklist.StatusNotAFinding, r.Status)

	assert.Len(t, checkmate.Failed(results), 1)
	assert.True(t, errors.IsParseError(checkmate.Errors(results)))
}

func TestUpgradeFilesSharedStem(t *testing.T) {
	dir := t.TempDir()
	template := testhelper.WriteChecklist(t, dir, "template.cklb", testhelper.Bundle(t, "A", "V1R2", testhelper.Keys("V-1")...))
	a := testhelper.WriteChecklist(t, dir, filepath.Join("a", "host.cklb"),
		testhelper.HostBundle(t, "host-a", "A", "V1R1", testhelper.Evaluated("V-1", checklist.StatusOpen, "a")))
	b := testhelper.WriteChecklist(t, dir, filepath.Join("b", "host.cklb"),
		testhelper.HostBundle(t, "host-b", "A", "V1R1", testhelper.Evaluated("V-1", checklist.StatusNotAFinding, "b")))
	c := testhelper.WriteChecklist(t, dir, filepath.Join("c", "HOST.cklb"),
		testhelper.HostBundle(t, "host-c", "A", "V1R1", testhelper.Evaluated("V-1", checklist.StatusNotApplicable, "c")))

	outDir := filepath.Join(dir, "out")
	results, err := checkmate.UpgradeFiles(context.Background(), []string{a, b, c}, template,
		checkmate.WithOutputDir(outDir),
		checkmate.WithClock(clock),
		checkmate.WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		require.NoError(t, r.Err)
	}

	assert.Equal(t, filepath.Join(outDir, "host_upgraded_20260314.cklb"), results[0].OutputPath)
	assert.Equal(t, filepath.Join(outDir, "host_upgraded_20260314_2.cklb"), results[1].OutputPath)
	assert.Equal(t, filepath.Join(outDir, "HOST_upgraded_20260314_3.cklb"), results[2].OutputPath)

	for i, want := range []string{"a", "b", "c"} {
		merged := testhelper.LoadChecklist(t, results[i].OutputPath)
		r, _ := merged.Rule("V-1")
		assert.Equal(t, want, r.Comments)
	}
}

func TestUpgradeFilesCarriesToolStatus(t *testing.T) {
	testdata := filepath.Join("pkg", "cklb", "testdata")
	results, err := checkmate.UpgradeFiles(context.Background(),
		[]string{filepath.Join(testdata, "evaluated_v2r1.cklb")},
		filepath.Join(testdata, "evaluated_template_v2r2.cklb"),
		checkmate.WithOutputDir(t.TempDir()),
		checkmate.WithClock(clock),
		checkmate.WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	merged := testhelper.LoadChecklist(t, results[0].OutputPath)
	r, ok := merged.Rule("V-1001")
	require.True(t, ok)
	assert.Equal(t, checklist.StatusOpen, r.Status)
	require.NotNil(t, r.Tool)
	assert.Equal(t, "Open", r.Tool.OldStatus)
	assert.Equal(t, "NotAFinding", r.Tool.NewStatus)
	assert.Contains(t, string(r.Extra["evaluate-stig"]), "Windows10_AnswerFile_v2.xml", "template owns the evaluator metadata")

	r, ok = merged.Rule("V-1004")
	require.True(t, ok)
	assert.True(t, r.IsNew)
	require.NotNil(t, r.Tool)
	assert.Empty(t, r.Tool.OldStatus)
}

func TestUpgradeFilesTemplateErrors(t *testing.T) {
	_, err := checkmate.UpgradeFiles(context.Background(), nil, filepath.Join(t.TempDir(), "missing.cklb"))
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)

	_, err = checkmate.UpgradeFiles(context.Background(), nil, "x.cklb", checkmate.WithConcurrency(0))
	assert.True(t, errors.IsValidationError(err))
}

func TestUpgradeFilesMismatch(t *testing.T) {
	dir := t.TempDir()
	template := testhelper.WriteChecklist(t, dir, "template.cklb", testhelper.Bundle(t, "WIN_10", "V1R2", testhelper.Keys("V-1")...))
	old := testhelper.WriteChecklist(t, dir, "old.cklb", testhelper.Bundle(t, "WIN10", "V1R1", testhelper.Keys("V-1")...))

	t.Run("blocked", func(t *testing.T) {
		results, err := checkmate.UpgradeFiles(context.Background(), []string{old}, template,
			checkmate.WithOutputDir(filepath.Join(dir, "blocked")), checkmate.WithLogger(logging.NewNopLogger()))
		require.NoError(t, err)
		assert.True(t, errors.IsIdentityMismatch(results[0].Err))
		assert.NoDirExists(t, filepath.Join(dir, "blocked"))
	})

	t.Run("forced", func(t *testing.T) {
		results, err := checkmate.UpgradeFiles(context.Background(), []string{old}, template,
			checkmate.WithOutputDir(filepath.Join(dir, "forced")), checkmate.WithForce(true),
			checkmate.WithLogger(logging.NewNopLogger()))
		require.NoError(t, err)
		require.NoError(t, results[0].Err)
		assert.NotNil(t, results[0].Result.Report.IdentityMismatch)
		assert.FileExists(t, results[0].OutputPath)
	})
}

func TestUpgradeFilesDryRunAndHooks(t *testing.T) {
	dir := t.TempDir()
	template := testhelper.WriteChecklist(t, dir, "template.cklb", testhelper.Bundle(t, "A", "V1R2", testhelper.Keys("V-1")...))
	good := testhelper.WriteChecklist(t, dir, "good.cklb", testhelper.Bundle(t, "A", "V1R1", testhelper.Keys("V-1")...))
	missing := filepath.Join(dir, "missing.cklb")

	var mu sync.Mutex
	var upgraded, failed []string
	outDir := filepath.Join(dir, "out")
	results, err := checkmate.UpgradeFiles(context.Background(), []string{good, missing}, template,
		checkmate.WithOutputDir(outDir),
		checkmate.WithDryRun(true),
		checkmate.WithClock(clock),
		checkmate.WithLogger(logging.NewNopLogger()),
		checkmate.OnUpgraded(func(r checkmate.FileResult) {
			mu.Lock()
			defer mu.Unlock()
			upgraded = append(upgraded, r.Path)
		}),
		checkmate.OnFailed(func(r checkmate.FileResult) {
			mu.Lock()
			defer mu.Unlock()
			failed = append(failed, r.Path)
		}),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{good}, upgraded)
	assert.Equal(t, []string{missing}, failed)
	assert.Equal(t, filepath.Join(outDir, "good_upgraded_20260314.cklb"), results[0].OutputPath)
	assert.NoFileExists(t, results[0].OutputPath, "dry run writes nothing")
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "host1_upgraded_20260314.cklb", checkmate.OutputName("/data/old/host1.cklb", fixedDate))
	assert.Equal(t, "a.b_upgraded_20260314.cklb", checkmate.OutputName("a.b.cklb", fixedDate))
}

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()
	newPath := testhelper.WriteChecklist(t, dir, "new.cklb", testhelper.Bundle(t, "WIN_10", "V1R2", testhelper.Keys("V-1", "V-3")...))
	oldPath := testhelper.WriteChecklist(t, dir, "old.cklb", testhelper.Bundle(t, "WIN10", "V1R1", testhelper.Keys("V-1", "V-2")...))
	bad := testhelper.WriteFile(t, dir, "bad.cklb", []byte("nope"))

	cmps, err := checkmate.CompareFiles(context.Background(), []string{oldPath, bad}, newPath)
	require.NoError(t, err)
	require.Len(t, cmps, 2)

	c := cmps[0]
	require.NoError(t, c.Err)
	assert.Equal(t, []string{"V-3"}, c.Matches.AddedKeys())
	assert.Equal(t, []string{"V-2"}, c.Matches.RemovedKeys())
	assert.Equal(t, 1, c.Matches.Summary.Matched)
	require.NotNil(t, c.Guard.Warning, "mismatch is reported, not blocking")
	assert.Equal(t, "WIN10", c.Guard.Warning.OldID)

	assert.True(t, errors.IsParseError(cmps[1].Err))

	_, err = checkmate.CompareFiles(context.Background(), nil, bad)
	assert.True(t, errors.IsParseError(err))
}

func TestValidateAndImportFiles(t *testing.T) {
	dir := t.TempDir()
	good := testhelper.WriteChecklist(t, dir, "good.cklb", testhelper.Bundle(t, "A", "V1R1",
		testhelper.Evaluated("V-1", checklist.StatusOpen, "x"), testhelper.Rule("V-2")))
	bad := testhelper.WriteFile(t, dir, "bad.cklb", []byte(`{"stigs": []}`))
	wrongExt := testhelper.WriteFile(t, dir, "notes.txt", []byte("hello"))

	statuses := checkmate.ValidateFiles([]string{good, bad, wrongExt})
	require.Len(t, statuses, 3)
	assert.True(t, statuses[0].OK())
	assert.Equal(t, "A", statuses[0].BenchmarkID)
	assert.Equal(t, 2, statuses[0].Rules)
	assert.Equal(t, 1, statuses[0].Statuses[checklist.StatusOpen])
	assert.True(t, errors.IsParseError(statuses[1].Err))
	assert.True(t, errors.IsValidationError(statuses[2].Err))

	dest := filepath.Join(dir, "imported")
	imported := checkmate.ImportFiles([]string{good, bad}, dest)
	assert.Equal(t, filepath.Join(dest, "good.cklb"), imported[0].ImportedPath)
	assert.FileExists(t, imported[0].ImportedPath)
	assert.Empty(t, imported[1].ImportedPath)

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
