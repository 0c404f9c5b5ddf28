package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"cdm-mapper/internal/table"
)

// WriteCSV writes t with a header row. Missing cells are written as missing.
func WriteCSV(w io.Writer, t *table.Table, missing string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, t.Width())
	for i := range t.Len() {
		for j, v := range t.Row(i) {
			if v == nil {
				record[j] = missing
				continue
			}

			record[j] = table.Format(v)
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}
