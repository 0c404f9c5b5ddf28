package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cdm-mapper/internal/table"
)

// Format identifies an input file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
	FormatXLS   Format = "xls"
	FormatJSON  Format = "json"
	formatUnset Format = ""
)

// IsSpreadsheet reports whether the format holds sheets.
func (f Format) IsSpreadsheet() bool {
	return f == FormatXLSX || f == FormatXLS
}

// DetectFormat maps a file name to its format by extension.
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".json":
		return FormatJSON, nil
	default:
		return formatUnset, fmt.Errorf("%w: %q (supported: csv, xlsx, xls, json)", ErrUnsupportedFormat, fileName)
	}
}

// Ingest parses r as the format implied by fileName. sheet selects a
// spreadsheet sheet by name or zero-based index and is ignored for other
// formats.
func Ingest(r io.ReadSeeker, fileName, sheet string) (*table.Table, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	var t *table.Table

	err = rewinding(r, func() error {
		var perr error

		switch format {
		case FormatCSV:
			t, perr = parseCSV(r)
		case FormatXLSX:
			t, perr = parseXLSX(r, sheet)
		case FormatXLS:
			t, perr = parseXLS(r, sheet)
		case FormatJSON:
			t, perr = parseJSON(r)
		}

		return perr
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

// ListSheets returns the sheet names of a spreadsheet without consuming r.
// Non-spreadsheet formats have no sheets and return nil.
func ListSheets(r io.ReadSeeker, fileName string) ([]string, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	if !format.IsSpreadsheet() {
		return nil, nil
	}

	var sheets []string

	err = rewinding(r, func() error {
		var lerr error
		if format == FormatXLSX {
			sheets, lerr = xlsxSheets(r)
		} else {
			sheets, lerr = xlsSheets(r)
		}

		return lerr
	})

	return sheets, err
}

// ReadFile opens path and ingests it.
func ReadFile(path, sheet string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file %s: %w", path, err)
	}
	defer f.Close()

	return Ingest(f, filepath.Base(path), sheet)
}

// rewinding runs fn and moves r back to the offset it had on entry.
func rewinding(r io.ReadSeeker, fn func() error) (err error) {
	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("ingest: stream is not seekable: %w", err)
	}

	defer func() {
		if _, serr := r.Seek(start, io.SeekStart); serr != nil && err == nil {
			err = fmt.Errorf("ingest: restoring stream position: %w", serr)
		}
	}()

	return fn()
}
