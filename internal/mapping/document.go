package mapping

import (
	"iter"
	"maps"
	"slices"
)

// Entry describes how one source column feeds the CDM.
type Entry struct {
	// CDMField is the name of the target CDM field.
	CDMField string `yaml:"cdm_field"`
	// Transformation holds value substitutions; nil when none apply.
	Transformation *Transformation `yaml:"transformation,omitempty"`
}

// Transformation holds per-value substitutions applied to a column.
type Transformation struct {
	// ValueMapping maps an observed source value to an allowed CDM value.
	ValueMapping map[string]string `yaml:"value_mapping"`
}

// ValueMapping returns the entry's substitution table, or nil.
func (e Entry) ValueMapping() map[string]string {
	if e.Transformation == nil {
		return nil
	}

	return e.Transformation.ValueMapping
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	if e.Transformation != nil {
		e.Transformation = &Transformation{ValueMapping: maps.Clone(e.Transformation.ValueMapping)}
	}

	return e
}

// Equal reports whether two entries carry the same target and substitutions.
// A nil and an empty value mapping are equal.
func (e Entry) Equal(o Entry) bool {
	if e.CDMField != o.CDMField {
		return false
	}

	if (e.Transformation == nil) != (o.Transformation == nil) {
		return false
	}

	return maps.Equal(e.ValueMapping(), o.ValueMapping())
}

// Document is an ordered mapping from source column name to Entry.
// The zero value and a nil *Document are empty documents.
type Document struct {
	columns []string
	entries map[string]Entry
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{entries: map[string]Entry{}}
}

// Set stores the entry for column. Setting an existing column replaces its
// entry and keeps its position.
func (d *Document) Set(column string, e Entry) {
	if d.entries == nil {
		d.entries = map[string]Entry{}
	}

	if _, ok := d.entries[column]; !ok {
		d.columns = append(d.columns, column)
	}

	d.entries[column] = e.Clone()
}

// Get returns a copy of the entry stored for column.
func (d *Document) Get(column string) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}

	e, ok := d.entries[column]
	if !ok {
		return Entry{}, false
	}

	return e.Clone(), true
}

// Delete removes column and reports whether it was present.
func (d *Document) Delete(column string) bool {
	if d == nil {
		return false
	}

	if _, ok := d.entries[column]; !ok {
		return false
	}

	delete(d.entries, column)
	d.columns = slices.DeleteFunc(d.columns, func(c string) bool { return c == column })

	return true
}

// Len returns the number of entries.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}

	return len(d.columns)
}

// Columns returns the source column names in document order.
func (d *Document) Columns() []string {
	if d == nil {
		return nil
	}

	return slices.Clone(d.columns)
}

// All iterates over the entries in document order.
func (d *Document) All() iter.Seq2[string, Entry] {
	return func(yield func(string, Entry) bool) {
		if d == nil {
			return
		}

		for _, c := range d.columns {
			if !yield(c, d.entries[c].Clone()) {
				return
			}
		}
	}
}

// SourceFor returns the source column feeding cdmField. With several
// candidates the first in document order wins.
func (d *Document) SourceFor(cdmField string) (string, bool) {
	if d == nil {
		return "", false
	}

	for _, c := range d.columns {
		if d.entries[c].CDMField == cdmField {
			return c, true
		}
	}

	return "", false
}

// TargetIndex builds the reverse index CDM field -> source column, keeping
// the first entry in document order for each field.
func (d *Document) TargetIndex() map[string]string {
	idx := make(map[string]string, d.Len())
	if d == nil {
		return idx
	}

	for _, c := range d.columns {
		field := d.entries[c].CDMField
		if _, taken := idx[field]; !taken {
			idx[field] = c
		}
	}

	return idx
}

// DuplicateTargets returns, for every CDM field fed by more than one source
// column, those columns in document order. The first one is the winner.
func (d *Document) DuplicateTargets() map[string][]string {
	byField := map[string][]string{}

	for c, e := range d.All() {
		byField[e.CDMField] = append(byField[e.CDMField], c)
	}

	maps.DeleteFunc(byField, func(_ string, cols []string) bool { return len(cols) < 2 })

	return byField
}

// Equal reports whether both documents hold equal entries in the same order.
func (d *Document) Equal(o *Document) bool {
	if d.Len() != o.Len() {
		return false
	}

	if !slices.Equal(d.Columns(), o.Columns()) {
		return false
	}

	for c, e := range d.All() {
		oe, _ := o.Get(c)
		if !e.Equal(oe) {
			return false
		}
	}

	return true
}
