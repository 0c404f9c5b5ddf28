package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file extensions with no parser.
	ErrUnsupportedFormat = errors.New("ingest: unsupported file format")
	// ErrParse is returned when the input cannot be parsed into a table.
	ErrParse = errors.New("ingest: parse error")
	// ErrNoSheets is returned for spreadsheets without any readable sheet.
	ErrNoSheets = errors.New("ingest: no sheets detected")
	// ErrSheetRequired is returned when a workbook has several sheets and
	// no sheet was selected.
	ErrSheetRequired = errors.New("ingest: sheet selection required")
)

// SheetSelectionError reports a multi-sheet workbook parsed without a sheet
// selector. It matches both ErrSheetRequired and ErrParse.
type SheetSelectionError struct {
	Sheets []string
}

func (e *SheetSelectionError) Error() string {
	return fmt.Sprintf("ingest: workbook has %d sheets (%s); select one by name or index",
		len(e.Sheets), strings.Join(e.Sheets, ", "))
}

// Is makes errors.Is match ErrSheetRequired and ErrParse.
func (e *SheetSelectionError) Is(target error) bool {
	return target == ErrSheetRequired || target == ErrParse
}

func parseErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}
