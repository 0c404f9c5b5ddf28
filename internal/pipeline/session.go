package pipeline

import (
	"fmt"
	"path/filepath"

	"cdm-mapper/internal/ingest"
	"cdm-mapper/internal/table"
)

// Session holds the table currently loaded for mapping.
type Session struct {
	table  *table.Table
	source string
	sheet  string
}

// Load reads path and replaces the session's table. On error the previous
// table stays loaded.
func (s *Session) Load(path, sheet string) error {
	t, err := ingest.ReadFile(path, sheet)
	if err != nil {
		return err
	}

	s.Replace(t, filepath.Base(path), sheet)

	return nil
}

// Replace swaps in an already parsed table.
func (s *Session) Replace(t *table.Table, source, sheet string) {
	s.table = t
	s.source = source
	s.sheet = sheet
}

// Loaded reports whether a table is loaded.
func (s *Session) Loaded() bool {
	return s.table != nil
}

// Table returns the loaded table, or nil.
func (s *Session) Table() *table.Table {
	return s.table
}

// Source returns the base name of the loaded file.
func (s *Session) Source() string {
	return s.source
}

// Sheet returns the sheet the table was read from, if any.
func (s *Session) Sheet() string {
	return s.sheet
}

// String describes the loaded data.
func (s *Session) String() string {
	if s.table == nil {
		return "no data loaded"
	}

	name := s.source
	if s.sheet != "" {
		name += "[" + s.sheet + "]"
	}

	return fmt.Sprintf("%s: %d rows, %d columns", name, s.table.Len(), s.table.Width())
}
