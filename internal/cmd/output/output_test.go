package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/checkmate"
	"github.com/agentstation/checkmate/internal/cmd/globals"
	"github.com/agentstation/checkmate/pkg/errors"
)

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml", "wide", ""} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestTableFormatterStruct(t *testing.T) {
	type view struct {
		BenchmarkID string   `json:"benchmark_id"`
		Proceed     bool     `json:"proceed"`
		Rules       []string `json:"rules"`
		hidden      string
	}
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, view{BenchmarkID: "Windows_10_STIG", Proceed: true, hidden: "x"}))

	out := buf.String()
	assert.Contains(t, out, "Benchmark Id")
	assert.Contains(t, out, "Windows_10_STIG")
	assert.NotContains(t, out, "hidden")
}

func TestFormatStatusesJSON(t *testing.T) {
	statuses := []checkmate.FileStatus{
		{Path: "bad.cklb", Err: errors.NewParseError("json", "bad.cklb", "", "unexpected end of JSON input", nil)},
	}
	var buf bytes.Buffer
	require.NoError(t, FormatStatuses(&buf, statuses, &globals.Flags{Output: "json"}))

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "bad.cklb", rows[0]["path"])
	assert.Contains(t, rows[0]["error"], "unexpected end of JSON input")
}

func TestFormatUpgradesTable(t *testing.T) {
	results := []checkmate.FileResult{
		{Path: "missing.cklb", Err: errors.NewIOError("read", "missing.cklb", errors.New("no such file"))},
	}
	var buf bytes.Buffer
	require.NoError(t, FormatUpgrades(&buf, results, &globals.Flags{Output: "table"}))
	assert.Contains(t, buf.String(), "missing.cklb")
}

func TestFormatYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatAny(&buf, map[string]int{"matched": 2}, &globals.Flags{Output: "yaml"}))
	assert.Equal(t, "matched: 2\n", buf.String())
}
