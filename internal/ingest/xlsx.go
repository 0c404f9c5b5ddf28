package ingest

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"cdm-mapper/internal/table"
)

// isoCellLayouts are the layouts of cells stored with the ISO 8601 date type.
var isoCellLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"}

func xlsxSheets(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, parseErr("reading workbook: %v", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

func parseXLSX(r io.Reader, sheet string) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, parseErr("reading workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()

	idx, err := selectSheet(sheets, sheet)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheets[idx])
	if err != nil {
		return nil, parseErr("reading sheet %q: %v", sheets[idx], err)
	}

	if len(rows) == 0 {
		return table.MustNew(), nil
	}

	dates, err := newDateCells(f).scan(sheets[idx], rows[1:])
	if err != nil {
		return nil, err
	}

	return cellsToTable(rows[0], rows[1:], dates)
}

// dateCells finds the cells of a workbook holding dates: numbers shown
// through a date format, and cells typed as ISO 8601 dates.
type dateCells struct {
	f        *excelize.File
	date1904 bool
	styles   map[int]bool
}

func newDateCells(f *excelize.File) *dateCells {
	d := &dateCells{f: f, styles: make(map[int]bool)}

	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}

	return d
}

// scan returns the date cells of the data rows, which start on the second
// row of the sheet.
func (d *dateCells) scan(sheet string, rows [][]string) (map[cell]time.Time, error) {
	dates := make(map[cell]time.Time)

	for i, row := range rows {
		for j, text := range row {
			if strings.TrimSpace(text) == "" {
				continue
			}

			ref, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, parseErr("addressing cell: %v", err)
			}

			t, ok, err := d.at(sheet, ref)
			if err != nil {
				return nil, parseErr("reading cell %s!%s: %v", sheet, ref, err)
			}

			if ok {
				dates[cell{i, j}] = t
			}
		}
	}

	return dates, nil
}

func (d *dateCells) at(sheet, ref string) (time.Time, bool, error) {
	typ, err := d.f.GetCellType(sheet, ref)
	if err != nil {
		return time.Time{}, false, err
	}

	switch typ {
	case excelize.CellTypeDate:
		raw, err := d.f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
		if err != nil {
			return time.Time{}, false, err
		}

		for _, layout := range isoCellLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, true, nil
			}
		}

		return time.Time{}, false, nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
	default:
		return time.Time{}, false, nil
	}

	style, err := d.f.GetCellStyle(sheet, ref)
	if err != nil {
		return time.Time{}, false, err
	}

	if !d.isDateStyle(style) {
		return time.Time{}, false, nil
	}

	raw, err := d.f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
	if err != nil {
		return time.Time{}, false, err
	}

	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return time.Time{}, false, nil
	}

	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return time.Time{}, false, nil
	}

	return t, true, nil
}

func (d *dateCells) isDateStyle(idx int) bool {
	if known, ok := d.styles[idx]; ok {
		return known
	}

	isDate := false
	if s, err := d.f.GetStyle(idx); err == nil {
		isDate = dateNumFmt(s)
	}

	d.styles[idx] = isDate

	return isDate
}

// dateNumFmt reports whether a cell style displays numbers as calendar
// dates. Time-of-day formats do not count.
func dateNumFmt(s *excelize.Style) bool {
	if s.CustomNumFmt != nil {
		return isDateFormatCode(*s.CustomNumFmt)
	}

	switch n := s.NumFmt; {
	case n >= 14 && n <= 17, n == 22, n >= 27 && n <= 36, n >= 50 && n <= 58:
		return true
	}

	return false
}

// isDateFormatCode reports whether a custom number format has day or year
// tokens outside quoted literals, escapes and bracketed sections.
func isDateFormatCode(code string) bool {
	var quoted, bracket, escaped bool

	for _, r := range code {
		switch {
		case escaped:
			escaped = false
		case quoted:
			quoted = r != '"'
		case bracket:
			bracket = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = true
		case r == '[':
			bracket = true
		case r == 'd', r == 'D', r == 'y', r == 'Y':
			return true
		}
	}

	return false
}
