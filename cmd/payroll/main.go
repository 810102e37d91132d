/*
main.go - Command-line payroll reports

PURPOSE:
  Generates a payroll report without running the server. Shifts come from
  a bulk-text or JSON file, or from the server's SQLite database.

COMMANDS:
  payroll report --month 2025-11 --input shifts.txt [--format table|csv|xlsx|json] [--out FILE]
  payroll report --month 2025-11 --db payroll.db
  payroll import --input shifts.txt --db payroll.db [--year 2025]
  payroll period --month 2025-11
  payroll period --date 2025-10-20

INPUT FILES:
  *.json  An array of {"id","date","start","end","notes","overrides"}
  other   Bulk text, one "DD.MM start-end[, start-end]" line per day

SEE ALSO:
  - importer/importer.go: Bulk text format
  - export/: CSV and XLSX layout
*/
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Debugf("command failed: %v", err)
		os.Exit(1)
	}
}
