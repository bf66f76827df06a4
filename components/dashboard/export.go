package dashboard

import (
	"encoding/csv"
	"io"
)

// WriteTableCSV serialises the rows of a table view, one column per schema column.
func WriteTableCSV(w io.Writer, view TableView) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := make([]string, 0, len(view.Columns)+1)
	header = append(header, "ID")
	for _, col := range view.Columns {
		header = append(header, col.Label)
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range view.Rows {
		record := make([]string, 0, len(header))
		record = append(record, row.ID)
		for _, col := range view.Columns {
			record = append(record, view.Cell(row, col.Key))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
