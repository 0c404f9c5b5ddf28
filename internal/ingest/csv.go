package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"cdm-mapper/internal/table"
)

const utf8BOM = "\ufeff"

func parseCSV(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, parseErr("no columns to parse from file")
	}

	if err != nil {
		return nil, parseErr("reading csv header: %v", err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, parseErr("reading csv rows: %v", err)
	}

	// Short rows are padded with missing cells; a row wider than the
	// header has no column to land in.
	for i, row := range rows {
		if len(row) > len(header) {
			return nil, parseErr("expected %d fields in record %d, saw %d", len(header), i+2, len(row))
		}
	}

	return rowsToTable(header, rows)
}
