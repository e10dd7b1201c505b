// Package table converts checklist results into rows for terminal tables.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/checkmate"
	"github.com/agentstation/checkmate/internal/cmd/emoji"
	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/constants"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// UpgradeRow is one upgraded checklist in machine-readable output.
type UpgradeRow struct {
	Path       string `json:"path" yaml:"path"`
	Output     string `json:"output,omitempty" yaml:"output,omitempty"`
	Benchmark  string `json:"benchmark,omitempty" yaml:"benchmark,omitempty"`
	OldVersion string `json:"old_version,omitempty" yaml:"old_version,omitempty"`
	NewVersion string `json:"new_version,omitempty" yaml:"new_version,omitempty"`
	Matched    int    `json:"matched" yaml:"matched"`
	Added      int    `json:"added" yaml:"added"`
	Removed    int    `json:"removed" yaml:"removed"`
	Renumbered int    `json:"renumbered" yaml:"renumbered"`
	Mismatch   string `json:"mismatch,omitempty" yaml:"mismatch,omitempty"`
	Downgrade  bool   `json:"downgrade,omitempty" yaml:"downgrade,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// UpgradeRows flattens file results.
func UpgradeRows(results []checkmate.FileResult) []UpgradeRow {
	rows := make([]UpgradeRow, 0, len(results))
	for _, r := range results {
		row := UpgradeRow{Path: r.Path, Output: r.OutputPath, Error: errString(r.Err)}
		if r.Result != nil && r.Result.Report != nil {
			rep := r.Result.Report
			row.Benchmark = rep.BenchmarkID
			row.OldVersion = rep.OldVersion.String()
			row.NewVersion = rep.NewVersion.String()
			row.Matched = rep.MatchedCount
			row.Added = rep.AddedCount
			row.Removed = rep.RemovedCount
			row.Renumbered = rep.RenumberedCount
			row.Downgrade = rep.Downgrade
			if rep.IdentityMismatch != nil {
				row.Mismatch = rep.IdentityMismatch.String()
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// UpgradesToTableData converts upgrade rows to table format.
func UpgradesToTableData(rows []UpgradeRow) Data {
	data := Data{
		Headers:         []string{"", "Checklist", "Version", "Matched", "Added", "Removed", "Output"},
		ColumnAlignment: []Align{AlignCenter, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignLeft},
	}
	for _, r := range rows {
		if r.Error != "" {
			data.Rows = append(data.Rows, []string{emoji.Error, r.Path, "-", "-", "-", "-", r.Error})
			continue
		}
		mark := emoji.Success
		if r.Mismatch != "" || r.Downgrade {
			mark = emoji.Warning
		}
		data.Rows = append(data.Rows, []string{
			mark,
			r.Path,
			versionSpan(r.OldVersion, r.NewVersion),
			strconv.Itoa(r.Matched),
			strconv.Itoa(r.Added),
			strconv.Itoa(r.Removed),
			r.Output,
		})
	}
	return data
}

// ComparisonRow is one old/new comparison in machine-readable output.
type ComparisonRow struct {
	Old        string   `json:"old" yaml:"old"`
	New        string   `json:"new" yaml:"new"`
	OldID      string   `json:"old_id,omitempty" yaml:"old_id,omitempty"`
	NewID      string   `json:"new_id,omitempty" yaml:"new_id,omitempty"`
	OldVersion string   `json:"old_version,omitempty" yaml:"old_version,omitempty"`
	NewVersion string   `json:"new_version,omitempty" yaml:"new_version,omitempty"`
	Common     int      `json:"common" yaml:"common"`
	Added      []string `json:"added" yaml:"added"`
	Removed    []string `json:"removed" yaml:"removed"`
	Mismatch   string   `json:"mismatch,omitempty" yaml:"mismatch,omitempty"`
	Error      string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// ComparisonRows flattens comparisons.
func ComparisonRows(comparisons []checkmate.Comparison) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(comparisons))
	for _, c := range comparisons {
		row := ComparisonRow{Old: c.OldPath, New: c.NewPath, Error: errString(c.Err)}
		if c.Matches != nil {
			row.OldID = c.OldID
			row.NewID = c.NewID
			row.OldVersion = c.OldVersion.String()
			row.NewVersion = c.NewVersion.String()
			row.Common = c.Matches.Summary.Matched
			row.Added = c.Matches.AddedKeys()
			row.Removed = c.Matches.RemovedKeys()
		}
		if c.Guard.Warning != nil {
			row.Mismatch = c.Guard.Warning.String()
		}
		rows = append(rows, row)
	}
	return rows
}

// ComparisonsToTableData converts comparison rows to table format. With
// wide set, the added and removed rule keys are listed in full.
func ComparisonsToTableData(rows []ComparisonRow, wide bool) Data {
	data := Data{
		Headers:         []string{"", "Checklist", "Version", "Common", "Added", "Removed"},
		ColumnAlignment: []Align{AlignCenter, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight},
	}
	for _, r := range rows {
		if r.Error != "" {
			data.Rows = append(data.Rows, []string{emoji.Error, r.Old, "-", "-", "-", r.Error})
			continue
		}
		mark := emoji.Success
		if r.Mismatch != "" {
			mark = emoji.Warning
		}
		added, removed := strconv.Itoa(len(r.Added)), strconv.Itoa(len(r.Removed))
		if wide {
			added = keyList(r.Added)
			removed = keyList(r.Removed)
		}
		data.Rows = append(data.Rows, []string{
			mark,
			r.Old,
			versionSpan(r.OldVersion, r.NewVersion),
			strconv.Itoa(r.Common),
			added,
			removed,
		})
	}
	return data
}

// StatusRow is one validated checklist in machine-readable output.
type StatusRow struct {
	Path          string `json:"path" yaml:"path"`
	Benchmark     string `json:"benchmark,omitempty" yaml:"benchmark,omitempty"`
	Version       string `json:"version,omitempty" yaml:"version,omitempty"`
	Rules         int    `json:"rules" yaml:"rules"`
	NotReviewed   int    `json:"not_reviewed" yaml:"not_reviewed"`
	Open          int    `json:"open" yaml:"open"`
	NotAFinding   int    `json:"not_a_finding" yaml:"not_a_finding"`
	NotApplicable int    `json:"not_applicable" yaml:"not_applicable"`
	Imported      string `json:"imported,omitempty" yaml:"imported,omitempty"`
	Error         string `json:"error,omitempty" yaml:"error,omitempty"`
}

// StatusRows flattens validation results.
func StatusRows(statuses []checkmate.FileStatus) []StatusRow {
	rows := make([]StatusRow, 0, len(statuses))
	for _, s := range statuses {
		row := StatusRow{Path: s.Path, Imported: s.ImportedPath, Error: errString(s.Err)}
		if s.Err == nil {
			row.Benchmark = s.BenchmarkID
			row.Version = s.Version.String()
			row.Rules = s.Rules
			row.NotReviewed = s.Statuses[checklist.StatusNotReviewed]
			row.Open = s.Statuses[checklist.StatusOpen]
			row.NotAFinding = s.Statuses[checklist.StatusNotAFinding]
			row.NotApplicable = s.Statuses[checklist.StatusNotApplicable]
		}
		rows = append(rows, row)
	}
	return rows
}

// StatusesToTableData converts validation rows to table format.
func StatusesToTableData(rows []StatusRow) Data {
	data := Data{
		Headers:         []string{"", "Checklist", "Benchmark", "Version", "Rules", "Open", "Not Reviewed"},
		ColumnAlignment: []Align{AlignCenter, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight},
	}
	for _, r := range rows {
		if r.Error != "" {
			data.Rows = append(data.Rows, []string{emoji.Error, r.Path, "-", "-", "-", "-", r.Error})
			continue
		}
		data.Rows = append(data.Rows, []string{
			emoji.Success,
			r.Path,
			r.Benchmark,
			r.Version,
			strconv.Itoa(r.Rules),
			strconv.Itoa(r.Open),
			strconv.Itoa(r.NotReviewed),
		})
	}
	return data
}

// Truncate shortens s to at most width runes, marking the cut with "...".
func Truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 3 || len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

func versionSpan(old, updated string) string {
	if old == "" && updated == "" {
		return "-"
	}
	return fmt.Sprintf("%s → %s", old, updated)
}

func keyList(keys []string) string {
	if len(keys) == 0 {
		return "-"
	}
	return Truncate(strings.Join(keys, ", "), constants.MaxTitleWidth)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
