package export

import (
	"encoding/csv"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/payroll"
)

// WriteCSV writes the report table as CSV.
func WriteCSV(w io.Writer, report *payroll.Report) error {
	writer := csv.NewWriter(w)
	for _, row := range Table(report) {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return err
	}
	return nil
}
