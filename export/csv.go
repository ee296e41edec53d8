// Package export serialises report output for download.
package export

import (
	"encoding/csv"
	"io"

	"github.com/hallops/dues-engine/dues"
)

// defaulterHeader is the fixed column layout consumed by the front office
// spreadsheet; do not reorder.
var defaulterHeader = []string{
	"IndexNumber", "FirstName", "LastName", "Program", "Hall", "AmountDue", "Status",
}

// WriteDefaulterCSV emits one row per defaulter. Status is always UNPAID
// for this export; paid students are simply absent.
func WriteDefaulterCSV(w io.Writer, defaulters []dues.Defaulter) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(defaulterHeader); err != nil {
		return err
	}
	for _, d := range defaulters {
		hall := d.HallName
		if hall == "" {
			hall = d.HallID
		}
		if err := writer.Write([]string{
			d.IndexNumber,
			d.FirstName,
			d.LastName,
			d.Program,
			hall,
			d.AmountDue.String(),
			"UNPAID",
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
