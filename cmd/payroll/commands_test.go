package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/api"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const week = "26.10 06:30-08:00\n27.10 08:00-16:30\n28.10 09:00-17:00\n"

func TestPeriodCommand(t *testing.T) {
	out, err := run(t, "period", "--month", "2025-11")
	require.NoError(t, err)
	assert.Equal(t, "2025-11: 2025-10-20 to 2025-11-19\n", out)

	out, err = run(t, "period", "--date", "2025-11-20")
	require.NoError(t, err)
	assert.Equal(t, "2025-12: 2025-11-20 to 2025-12-19\n", out)

	_, err = run(t, "period", "--month", "2025-11", "--date", "2025-11-20")
	assert.Error(t, err)
}

func TestReportCommand_JSONFromBulkText(t *testing.T) {
	input := writeFile(t, "shifts.txt", week)

	out, err := run(t, "report", "--month", "2025-11", "--input", input, "--year", "2025", "--format", "json")
	require.NoError(t, err)

	var report api.ReportDTO
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Rows, 3)
	assert.Equal(t, "11.50", report.Totals.Deduction)
}

func TestReportCommand_TableFromJSONFile(t *testing.T) {
	input := writeFile(t, "shifts.json",
		`[{"date":"2025-11-03","start":"08:00","end":"16:00"},{"id":"x","date":"2025-11-04","start":"08:00","end":"16:00","overrides":{"deduction":0}}]`)

	out, err := run(t, "report", "--month", "2025-11", "--input", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Payroll 2025-11")
	assert.Contains(t, out, "2025-11-03")
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "Week 2025-11-02: earned 17.00, deficit 13.00")
}

func TestReportCommand_RequiresOneSource(t *testing.T) {
	_, err := run(t, "report", "--month", "2025-11")
	assert.Error(t, err)

	input := writeFile(t, "shifts.txt", week)
	_, err = run(t, "report", "--month", "2025-11", "--input", input, "--db", filepath.Join(t.TempDir(), "x.db"))
	assert.Error(t, err)
}

func TestImportThenReportFromDatabase(t *testing.T) {
	// GIVEN: A bulk-text file imported twice into the same database
	// WHEN: Reporting from the database as CSV
	// THEN: The second import finds only duplicates and the report has each shift once

	input := writeFile(t, "shifts.txt", week+"garbage\n")
	db := filepath.Join(t.TempDir(), "payroll.db")

	out, err := run(t, "import", "--input", input, "--db", db, "--year", "2025")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 shifts (0 duplicates, 1 skipped lines)")
	assert.Contains(t, out, "Suggested month: 2025-11")

	out, err = run(t, "import", "--input", input, "--db", db, "--year", "2025")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 shifts (3 duplicates, 1 skipped lines)")

	out, err = run(t, "report", "--month", "2025-11", "--db", db, "--format", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[4], "Total,"))
}
