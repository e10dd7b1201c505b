package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/checkmate/internal/testhelper"
	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/errors"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("CHECKMATE_LOG_OUTPUT", "discard")
	app, err := New("1.0.0", "abc123", "2026-01-01", "test")
	require.NoError(t, err)
	return app
}

// run executes the CLI and returns what was written to stdout.
func run(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := app.createRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFixtures(t *testing.T) (dir, template string) {
	t.Helper()
	dir = t.TempDir()
	template = testhelper.WriteChecklist(t, dir, "template.cklb",
		testhelper.Bundle(t, "Windows_10_STIG", "V2R2", testhelper.Keys("V-1001", "V-1003")...))
	testhelper.WriteChecklist(t, filepath.Join(dir, "old"), "host1.cklb",
		testhelper.HostBundle(t, "host1", "Windows_10_STIG", "V2R1",
			testhelper.Evaluated("V-1001", checklist.StatusOpen, "tracked"),
			testhelper.Evaluated("V-1002", checklist.StatusNotApplicable, "n/a")))
	testhelper.WriteFile(t, filepath.Join(dir, "old"), "broken.cklb", []byte(`{"stigs": [`))
	return dir, template
}

func TestApp_New(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, "1.0.0", app.Version())
	assert.Equal(t, "abc123", app.Commit())
	assert.Equal(t, "2026-01-01", app.Date())
	assert.Equal(t, "test", app.BuiltBy())
	assert.NotNil(t, app.Logger())
	assert.NotNil(t, app.Config())
	assert.Nil(t, app.Metrics())
	assert.NotEmpty(t, app.Options())
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, newTestApp(t), "version")
	require.NoError(t, err)
	assert.Equal(t, "checkmate 1.0.0\n", out)
}

func TestUpgradeCommand(t *testing.T) {
	dir, template := writeFixtures(t)
	outDir := filepath.Join(dir, "out")

	out, err := run(t, newTestApp(t), "upgrade", "-t", template, filepath.Join(dir, "old"),
		"--output-dir", outDir, "-o", "json")
	require.Error(t, err, "the broken checklist fails its slot")
	assert.Contains(t, err.Error(), "1 of 2")

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.NotEmpty(t, rows[0]["error"])
	assert.EqualValues(t, 1, rows[1]["matched"])
	assert.EqualValues(t, 1, rows[1]["added"])
	assert.EqualValues(t, 1, rows[1]["removed"])

	written, _ := filepath.Glob(filepath.Join(outDir, "host1_upgraded_*.cklb"))
	require.Len(t, written, 1)
	merged := testhelper.LoadChecklist(t, written[0])
	assert.Equal(t, "host1", merged.HostMetadata()["host_name"])
	rule, ok := merged.Rule("V-1001")
	require.True(t, ok)
	assert.Equal(t, checklist.StatusOpen, rule.Status)
}

func TestUpgradeCommandDryRunAndExclude(t *testing.T) {
	dir, template := writeFixtures(t)
	outDir := filepath.Join(dir, "out")

	_, err := run(t, newTestApp(t), "upgrade", "-t", template, filepath.Join(dir, "old"),
		"--exclude", "broken*", "--output-dir", outDir, "--dry-run", "-o", "yaml")
	require.NoError(t, err)
	assert.NoDirExists(t, outDir)
}

func TestUpgradeCommandRejectsBadStrategy(t *testing.T) {
	_, template := writeFixtures(t)
	_, err := run(t, newTestApp(t), "upgrade", "-t", template, template, "--strategy", "guess")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}

func TestGuardCommand(t *testing.T) {
	dir := t.TempDir()
	old := testhelper.WriteChecklist(t, dir, "old.cklb", testhelper.Bundle(t, "WIN10", "V1R1"))
	updated := testhelper.WriteChecklist(t, dir, "new.cklb", testhelper.Bundle(t, "WIN_10", "V1R2"))

	out, err := run(t, newTestApp(t), "guard", old, updated, "-o", "json")
	require.Error(t, err)
	assert.True(t, errors.IsIdentityMismatch(err))
	assert.Contains(t, out, `"proceed": false`)

	out, err = run(t, newTestApp(t), "guard", old, updated, "--force", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"forced": true`)
}

func TestCompareCommand(t *testing.T) {
	dir, template := writeFixtures(t)
	out, err := run(t, newTestApp(t), "compare", "-a", template,
		filepath.Join(dir, "old", "host1.cklb"), "-o", "json")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, []any{"V-1003"}, rows[0]["added"])
	assert.Equal(t, []any{"V-1002"}, rows[0]["removed"])
}

func TestValidateCommandImport(t *testing.T) {
	dir, _ := writeFixtures(t)
	importDir := filepath.Join(dir, "imported")

	_, err := run(t, newTestApp(t), "validate", filepath.Join(dir, "old"), "--import-dir", importDir, "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.FileExists(t, filepath.Join(importDir, "host1.cklb"))
	assert.NoFileExists(t, filepath.Join(importDir, "broken.cklb"))
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, newTestApp(t), "version", "-o", "xml")
	assert.Error(t, err)
}

func TestShutdownWritesMetrics(t *testing.T) {
	dir, template := writeFixtures(t)
	metricsFile := filepath.Join(dir, "checkmate.prom")
	t.Setenv("CHECKMATE_METRICS_FILE", metricsFile)

	app := newTestApp(t)
	require.NotNil(t, app.Metrics())
	assert.Same(t, app.Metrics(), app.Metrics())

	_, _ = run(t, app, "upgrade", "-t", template, filepath.Join(dir, "old"), "--dry-run", "-o", "json")
	require.NoError(t, app.Shutdown(context.Background()))

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "checkmate_reconciliations_total")
}
