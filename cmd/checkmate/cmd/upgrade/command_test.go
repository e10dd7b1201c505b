package upgrade

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/checkmate"
	"github.com/agentstation/checkmate/internal/cmd/application"
	"github.com/agentstation/checkmate/internal/testhelper"
	"github.com/agentstation/checkmate/pkg/checklist"
)

func TestCommandWithMock(t *testing.T) {
	dir := t.TempDir()
	template := testhelper.WriteChecklist(t, dir, "template.cklb",
		testhelper.Bundle(t, "RHEL_9_STIG", "V1R2", testhelper.Keys("V-1", "V-2")...))
	old := testhelper.WriteChecklist(t, dir, "web01.cklb",
		testhelper.HostBundle(t, "web01", "RHEL_9_STIG", "V1R1",
			testhelper.Evaluated("V-1", checklist.StatusNotAFinding, "ok")))
	outDir := filepath.Join(dir, "out")

	mock := &application.Mock{
		OptionsFunc: func() []checkmate.Option {
			return []checkmate.Option{
				checkmate.WithOutputDir("ignored"),
				checkmate.WithClock(func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }),
			}
		},
	}

	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-t", template, old, "--output-dir", outDir})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.FileExists(t, filepath.Join(outDir, "web01_upgraded_20260501.cklb"))
	assert.NotEmpty(t, out.String())
}

func TestCommandRequiresTemplate(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"host1.cklb"})
	assert.Error(t, cmd.Execute())
}

func TestCommandNoMatches(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-t", "new.cklb", filepath.Join(t.TempDir(), "*.cklb")})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no checklists matched")
}
