package output

import (
	"io"

	"github.com/agentstation/checkmate"
	"github.com/agentstation/checkmate/internal/cmd/globals"
	"github.com/agentstation/checkmate/internal/cmd/table"
)

// FormatUpgrades writes upgrade results in the selected format.
func FormatUpgrades(w io.Writer, results []checkmate.FileResult, flags *globals.Flags) error {
	rows := table.UpgradeRows(results)
	var data any = rows
	if isTable(flags.Output) {
		data = toData(table.UpgradesToTableData(rows))
	}
	return NewFormatter(Format(flags.Output)).Format(w, data)
}

// FormatComparisons writes comparisons in the selected format.
func FormatComparisons(w io.Writer, comparisons []checkmate.Comparison, flags *globals.Flags) error {
	rows := table.ComparisonRows(comparisons)
	var data any = rows
	if isTable(flags.Output) {
		data = toData(table.ComparisonsToTableData(rows, Format(flags.Output) == FormatWide))
	}
	return NewFormatter(Format(flags.Output)).Format(w, data)
}

// FormatStatuses writes validation results in the selected format.
func FormatStatuses(w io.Writer, statuses []checkmate.FileStatus, flags *globals.Flags) error {
	rows := table.StatusRows(statuses)
	var data any = rows
	if isTable(flags.Output) {
		data = toData(table.StatusesToTableData(rows))
	}
	return NewFormatter(Format(flags.Output)).Format(w, data)
}

// FormatAny handles the common pattern of formatting any data type for output.
func FormatAny(w io.Writer, data any, flags *globals.Flags) error {
	return NewFormatter(Format(flags.Output)).Format(w, data)
}

func isTable(format string) bool {
	switch Format(format) {
	case FormatTable, FormatWide, "":
		return true
	}
	return false
}

func toData(d table.Data) Data {
	return Data{Headers: d.Headers, Rows: d.Rows, ColumnAlignment: d.ColumnAlignment}
}
