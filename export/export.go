/*
Package export renders a payroll report as a spreadsheet.

PURPOSE:
  Turns a payroll.Report into the tabular layout users hand to payroll:
  one line per shift with its effective (possibly overridden) values and a
  totals footer. CSV and XLSX share the same table.

COLUMNS:
  Date | Day | Start | End | Hours | Quota | Regular | 125% | 150% | Deduction | Notes

  Deduction is blank on rows that carry none. Notes joins the engine's
  annotation (e.g. the partial-week marker) with the shift's own note.

SEE ALSO:
  - payroll/overrides.go: Effective* accessors
  - payroll/totals.go: Summarize
*/
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/payroll"
)

// Format names an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", &generic.FormatError{Field: "format", Value: s, Expected: "csv or xlsx"}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename is the download name for a selector, e.g. "payroll-2025-11.csv".
func (f Format) Filename(selector string) string {
	return fmt.Sprintf("payroll-%s.%s", selector, f)
}

// Header is the first line of every export.
var Header = []string{"Date", "Day", "Start", "End", "Hours", "Quota", "Regular", "125%", "150%", "Deduction", "Notes"}

const totalLabel = "Total"

// Table lays the report out as string cells: Header, one line per row, then
// the totals line.
func Table(report *payroll.Report) [][]string {
	out := make([][]string, 0, len(report.Rows)+2)
	out = append(out, Header)
	for _, row := range report.Rows {
		out = append(out, rowCells(row))
	}
	out = append(out, totalsCells(payroll.Summarize(report.Rows)))
	return out
}

func rowCells(row payroll.ReportRow) []string {
	deduction := ""
	if row.IsOverridden(payroll.FieldDeduction) || row.EffectiveDeduction() != 0 {
		deduction = generic.FormatHours(row.EffectiveDeduction())
	}
	return []string{
		row.Shift.Date.String(),
		row.Shift.Date.Weekday().String(),
		row.Shift.Start,
		row.Shift.End,
		generic.FormatHours(row.Duration),
		row.EffectiveQuotaDisplay(),
		generic.FormatHours(row.EffectiveRegular()),
		generic.FormatHours(row.EffectiveExtra125()),
		generic.FormatHours(row.EffectiveExtra150()),
		deduction,
		joinNotes(row.Breakdown.Notes, row.Shift.Notes),
	}
}

func totalsCells(t payroll.Totals) []string {
	return []string{
		totalLabel, "", "", "",
		t.Hours.Format(),
		"",
		t.Regular.Format(),
		t.Extra125.Format(),
		t.Extra150.Format(),
		t.Deduction.Format(),
		"",
	}
}

func joinNotes(notes ...string) string {
	parts := make([]string, 0, len(notes))
	for _, n := range notes {
		if n = strings.TrimSpace(n); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "; ")
}

// Write renders the report in the given format.
func Write(w io.Writer, format Format, report *payroll.Report) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, report)
	case FormatCSV:
		return WriteCSV(w, report)
	}
	return &generic.FormatError{Field: "format", Value: string(format), Expected: "csv or xlsx"}
}
