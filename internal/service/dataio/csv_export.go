package dataio

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Table is a tabular report ready for CSV export.
type Table struct {
	Header []string
	Rows   [][]string
}

// WriteCSV writes the table with RFC 4180 quoting. Rows end with "\n".
func WriteCSV(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range table.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
