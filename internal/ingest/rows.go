package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cdm-mapper/internal/common"
	"cdm-mapper/internal/table"
)

// cell addresses a data cell: row is the index into the data rows, header
// excluded.
type cell struct {
	row, col int
}

// rowsToTable turns a header row plus text rows into a typed table.
// Rows shorter than the widest row are padded with missing cells.
func rowsToTable(header []string, rows [][]string) (*table.Table, error) {
	return cellsToTable(header, rows, nil)
}

// cellsToTable is rowsToTable for sources that store some cells as native
// dates. Those cells take their time value and are left out of the text
// inference of their column.
func cellsToTable(header []string, rows [][]string, dates map[cell]time.Time) (*table.Table, error) {
	width := len(header)
	for _, row := range rows {
		width = max(width, len(row))
	}

	names := uniqueNames(header, width)
	cols := make([]table.Column, width)

	for j := range width {
		raw := make([]string, len(rows))
		for i, row := range rows {
			if _, ok := dates[cell{i, j}]; !ok && j < len(row) {
				raw[i] = row[j]
			}
		}

		values := table.InferColumn(raw)
		for i := range values {
			if t, ok := dates[cell{i, j}]; ok {
				values[i] = t
			}
		}

		cols[j] = table.NewColumn(names[j], values...)
	}

	t, err := table.New(cols...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	return t, nil
}

// uniqueNames pads the header to width and makes every name unique:
// blank names become "Unnamed: <i>", repeats get ".1", ".2", ... suffixes.
func uniqueNames(header []string, width int) []string {
	names := make([]string, width)
	used := make(map[string]struct{}, width)

	for i := range width {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}

		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		candidate := name
		for n := 1; ; n++ {
			if _, dup := used[candidate]; !dup {
				break
			}

			candidate = name + "." + strconv.Itoa(n)
		}

		used[candidate] = struct{}{}
		names[i] = candidate
	}

	return names
}

// selectSheet resolves a sheet selector (name or zero-based index).
func selectSheet(sheets []string, selector string) (int, error) {
	if len(sheets) == 0 {
		return -1, ErrNoSheets
	}

	if selector == "" {
		if len(sheets) == 1 {
			return 0, nil
		}

		return -1, &SheetSelectionError{Sheets: sheets}
	}

	if i := common.IndexOf(sheets, selector); i >= 0 {
		return i, nil
	}

	if i, err := strconv.Atoi(selector); err == nil && i >= 0 && i < len(sheets) {
		return i, nil
	}

	return -1, parseErr("sheet %q not found (available: %s)", selector, strings.Join(sheets, ", "))
}
