package export

import (
	"fmt"
	"io"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/payroll"
	"github.com/xuri/excelize/v2"
)

// numericColumns are written as numbers so spreadsheet formulas work on them.
var numericColumns = map[int]bool{4: true, 6: true, 7: true, 8: true, 9: true}

// WriteXLSX writes the report table as a single-sheet workbook named after
// the selector.
func WriteXLSX(w io.Writer, report *payroll.Report) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warnf("Error closing workbook: %v", err)
		}
	}()

	sheet := report.Selector
	if sheet == "" {
		sheet = "Report"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	table := Table(report)
	for r, line := range table {
		cells := make([]any, len(line))
		for c, v := range line {
			cells[c] = cellValue(r, c, v)
		}
		ref, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, ref, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", r+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Header))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return err
	}
	footer := strconv.Itoa(len(table))
	if err := f.SetCellStyle(sheet, "A"+footer, lastCol+footer, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, lastCol, lastCol, 30); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		log.Errorf("Error writing workbook: %v", err)
		return err
	}
	return nil
}

// cellValue keeps the header and blank cells as text and turns numeric
// columns into float64.
func cellValue(row, col int, v string) any {
	if row == 0 || v == "" || !numericColumns[col] {
		return v
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return f
}
