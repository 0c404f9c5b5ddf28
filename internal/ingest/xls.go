package ingest

import (
	"io"
	"time"

	"github.com/extrame/xls"

	"cdm-mapper/internal/table"
)

const xlsCharset = "utf-8"

// withXLS opens a legacy workbook and runs fn on it. The BIFF reader panics
// on truncated or unusual inputs; panics surface as parse errors.
func withXLS(r io.ReadSeeker, fn func(wb *xls.WorkBook) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = parseErr("reading legacy workbook: %v", rec)
		}
	}()

	wb, err := xls.OpenReader(r, xlsCharset)
	if err != nil {
		return parseErr("reading legacy workbook: %v", err)
	}

	return fn(wb)
}

func xlsSheetNames(wb *xls.WorkBook) []string {
	names := make([]string, 0, wb.NumSheets())
	for i := range wb.NumSheets() {
		name := ""
		if ws := wb.GetSheet(i); ws != nil {
			name = ws.Name
		}

		names = append(names, name)
	}

	return names
}

func xlsSheets(r io.ReadSeeker) ([]string, error) {
	var names []string

	err := withXLS(r, func(wb *xls.WorkBook) error {
		names = xlsSheetNames(wb)
		return nil
	})

	return names, err
}

func parseXLS(r io.ReadSeeker, sheet string) (*table.Table, error) {
	var t *table.Table

	err := withXLS(r, func(wb *xls.WorkBook) error {
		idx, err := selectSheet(xlsSheetNames(wb), sheet)
		if err != nil {
			return err
		}

		ws := wb.GetSheet(idx)
		if ws == nil {
			return parseErr("sheet %d could not be read", idx)
		}

		t, err = xlsTable(ws)

		return err
	})

	return t, err
}

// xlsTable reads a legacy sheet. The reader renders numbers under a custom
// date format as RFC 3339 text; those cells are kept as dates.
func xlsTable(ws *xls.WorkSheet) (*table.Table, error) {
	var grid [][]string

	dates := make(map[cell]time.Time)

	for i := 0; i <= int(ws.MaxRow); i++ {
		row := xlsRow(ws, i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}

		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)

			if t, err := time.Parse(time.RFC3339, cells[j]); err == nil && i > 0 {
				dates[cell{i - 1, j}] = t
			}
		}

		grid = append(grid, cells)
	}

	if len(grid) == 0 || (len(grid) == 1 && len(grid[0]) == 0) {
		return table.MustNew(), nil
	}

	return cellsToTable(grid[0], grid[1:], dates)
}

// xlsRow returns row i, or nil for rows the sheet does not store. The
// reader dereferences absent rows, so the lookup is guarded.
func xlsRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()

	return ws.Row(i)
}
