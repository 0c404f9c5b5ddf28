package table

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrRagged is returned when columns of one table differ in length.
	ErrRagged = errors.New("table: columns differ in length")
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("table: duplicate column name")
)

// Column is a named sequence of cells.
type Column struct {
	Name   string
	Values []any
}

// NewColumn builds a column from cells.
func NewColumn(name string, values ...any) Column {
	return Column{Name: name, Values: values}
}

// MissingColumn returns a column of n missing cells.
func MissingColumn(name string, n int) Column {
	return Column{Name: name, Values: make([]any, n)}
}

// Len returns the number of cells in the column.
func (c Column) Len() int {
	return len(c.Values)
}

// Kind infers the column's primitive type from its non-missing cells.
func (c Column) Kind() Kind {
	kind := KindNull
	for _, v := range c.Values {
		if v == nil {
			continue
		}

		kind = widen(kind, KindOf(v))
		if kind == KindMixed {
			return kind
		}
	}

	return kind
}

// Missing counts the missing cells in the column.
func (c Column) Missing() int {
	n := 0
	for _, v := range c.Values {
		if v == nil {
			n++
		}
	}

	return n
}

// Table is an immutable, rectangular set of named columns.
type Table struct {
	cols  []Column
	index map[string]int
	rows  int
}

// New builds a table from columns. Column cell slices are copied.
func New(cols ...Column) (*Table, error) {
	t := &Table{
		cols:  make([]Column, 0, len(cols)),
		index: make(map[string]int, len(cols)),
	}

	for i, c := range cols {
		if i == 0 {
			t.rows = len(c.Values)
		} else if len(c.Values) != t.rows {
			return nil, fmt.Errorf("%w: column %q has %d cells, expected %d", ErrRagged, c.Name, len(c.Values), t.rows)
		}

		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}

		t.index[c.Name] = i
		t.cols = append(t.cols, Column{Name: c.Name, Values: slices.Clone(c.Values)})
	}

	return t, nil
}

// MustNew is like New but panics on error. Intended for fixtures.
func MustNew(cols ...Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}

	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.cols)
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}

	return names
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}

	return t.ColumnAt(i), true
}

// ColumnAt returns a copy of the column at position i.
func (t *Table) ColumnAt(i int) Column {
	c := t.cols[i]
	return Column{Name: c.Name, Values: slices.Clone(c.Values)}
}

// Value returns the cell at row i of the named column.
func (t *Table) Value(i int, name string) (any, bool) {
	ci, ok := t.index[name]
	if !ok || i < 0 || i >= t.rows {
		return nil, false
	}

	return t.cols[ci].Values[i], true
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.cols))
	for j, c := range t.cols {
		row[j] = c.Values[i]
	}

	return row
}

// Distinct returns the distinct non-missing values of the named column in
// first-seen order. Values are compared by their canonical string form.
func (t *Table) Distinct(name string) []any {
	i, ok := t.index[name]
	if !ok {
		return nil
	}

	var out []any

	seen := make(map[string]struct{})

	for _, v := range t.cols[i].Values {
		if v == nil {
			continue
		}

		key := Format(v)
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, v)
	}

	return out
}
