package transform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"

	"cdm-mapper/internal/diagnostic"
	"cdm-mapper/internal/mapping"
	"cdm-mapper/internal/schema"
	"cdm-mapper/internal/table"
)

// DateLayout is the output layout of date fields (dd/mm/yyyy).
const DateLayout = "02/01/2006"

// ErrDateParse marks a cell that could not be read as a date.
var ErrDateParse = errors.New("transform: unparseable date")

// Numeric dates with dash or dot separators. dateparse rejects dashed
// day-month-year and reads dotted dates month first regardless of the
// preferred order. Go's one-digit day and month elements also accept two
// digits.
var (
	dayFirstLayouts   = []string{"2-1-2006", "2.1.2006", "2-1-06", "2.1.06"}
	monthFirstLayouts = []string{"1-2-2006", "1.2.2006", "1-2-06", "1.2.06"}
)

// CellFailure records a cell that was set to missing during the transform.
type CellFailure struct {
	Field  string
	Column string
	Row    int
	Value  any
	Err    error
}

func (f CellFailure) Error() string {
	return fmt.Sprintf("%s (column %q, row %d, value %q): %v", f.Field, f.Column, f.Row, table.Format(f.Value), f.Err)
}

// Unwrap returns the underlying cause.
func (f CellFailure) Unwrap() error {
	return f.Err
}

// Result is the outcome of one transform run.
type Result struct {
	// Table is the CDM table.
	Table *table.Table
	// Failures lists the cells set to missing, in field then row order.
	Failures []CellFailure
	// Diagnostics reports how the mapping was applied.
	Diagnostics diagnostic.Diagnostics
}

// FailuresFor returns the failures recorded for one CDM field.
func (r *Result) FailuresFor(field string) []CellFailure {
	var out []CellFailure

	for _, f := range r.Failures {
		if f.Field == field {
			out = append(out, f)
		}
	}

	return out
}

// Engine applies mapping documents to tables.
type Engine struct {
	fields   []schema.FieldDefinition
	dayFirst bool
	log      zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-column warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithDayFirst makes ambiguous dates such as 03/04/2024 read as 3 April.
func WithDayFirst(dayFirst bool) Option {
	return func(e *Engine) {
		e.dayFirst = dayFirst
	}
}

// WithFields replaces the CDM field list. Intended for tests.
func WithFields(fields []schema.FieldDefinition) Option {
	return func(e *Engine) {
		e.fields = fields
	}
}

// New creates an Engine over the CDM registry.
func New(opts ...Option) *Engine {
	e := &Engine{
		fields: schema.Fields(),
		log:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Apply runs the default engine.
func Apply(source *table.Table, doc *mapping.Document) *Result {
	return New().Apply(source, doc)
}

// Apply builds the CDM table for source under doc. Neither argument is
// modified.
func (e *Engine) Apply(source *table.Table, doc *mapping.Document) *Result {
	res := &Result{}
	rows := source.Len()
	index := doc.TargetIndex()

	e.reportDuplicates(doc, &res.Diagnostics)

	cols := make([]table.Column, 0, len(e.fields))

	for _, f := range e.fields {
		column, ok := index[f.Name]
		if !ok {
			cols = append(cols, table.MissingColumn(f.Name, rows))
			continue
		}

		src, ok := source.Column(column)
		if !ok {
			res.Diagnostics.AddWarning("column_not_found",
				"source column is not in the data; field left empty", f.Name, column)
			e.log.Warn().Str("field", f.Name).Str("column", column).Msg("mapped column not found in source")

			cols = append(cols, table.MissingColumn(f.Name, rows))

			continue
		}

		values := src.Values

		if f.DataType == schema.DataTypeDate {
			values = e.convertDates(f, column, values, res)
		}

		entry, _ := doc.Get(column)
		if entry.Transformation != nil {
			values = substitute(values, entry.ValueMapping())
		}

		cols = append(cols, table.NewColumn(f.Name, values...))
	}

	res.Table = table.MustNew(cols...)

	return res
}

func (e *Engine) reportDuplicates(doc *mapping.Document, diags *diagnostic.Diagnostics) {
	dups := doc.DuplicateTargets()

	for _, f := range e.fields {
		cols, ok := dups[f.Name]
		if !ok {
			continue
		}

		diags.AddWarning("duplicate_target",
			fmt.Sprintf("%d source columns map to this field; using the first, %q", len(cols), cols[0]),
			f.Name, cols[0])
		e.log.Warn().Str("field", f.Name).Strs("columns", cols).Msg("several columns map to one field; first wins")
	}
}

// convertDates reformats every present cell as dd/mm/yyyy. Unreadable cells
// become missing and are recorded; the column is logged once.
func (e *Engine) convertDates(f schema.FieldDefinition, column string, values []any, res *Result) []any {
	out := make([]any, len(values))
	failed := 0

	for i, v := range values {
		if isBlank(v) {
			continue
		}

		t, err := e.parseDate(v)
		if err != nil {
			res.Failures = append(res.Failures, CellFailure{
				Field: f.Name, Column: column, Row: i, Value: v,
				Err: fmt.Errorf("%w: %v", ErrDateParse, err),
			})
			failed++

			continue
		}

		out[i] = t.Format(DateLayout)
	}

	if failed > 0 {
		res.Diagnostics.AddWarning("date_parse_failed",
			fmt.Sprintf("%d of %d values could not be read as dates and were set to missing", failed, len(values)),
			f.Name, column)
		e.log.Warn().
			Str("field", f.Name).
			Str("column", column).
			Int("failed", failed).
			Int("rows", len(values)).
			Msg("unparseable dates set to missing")
	}

	return out
}

func (e *Engine) parseDate(v any) (time.Time, error) {
	var s string

	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s = strings.TrimSpace(x)
	case int64:
		s = strconv.FormatInt(x, 10)
	default:
		s = table.Format(x)
	}

	if t, ok := e.parseNumericDate(s); ok {
		return t, nil
	}

	return dateparse.ParseAny(s,
		dateparse.PreferMonthFirst(!e.dayFirst),
		dateparse.RetryAmbiguousDateWithSwap(true),
	)
}

// parseNumericDate reads d-m-y and m-d-y dates in the preferred order
// first, then in the other order.
func (e *Engine) parseNumericDate(s string) (time.Time, bool) {
	first, second := monthFirstLayouts, dayFirstLayouts
	if e.dayFirst {
		first, second = second, first
	}

	for _, layouts := range [][]string{first, second} {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

// substitute replaces cells found in vm, keyed by their canonical string
// form. Other cells, missing ones included, are kept as they are.
func substitute(values []any, vm map[string]string) []any {
	out := make([]any, len(values))

	for i, v := range values {
		out[i] = v
		if v == nil {
			continue
		}

		if mapped, ok := vm[table.Format(v)]; ok {
			out[i] = mapped
		}
	}

	return out
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}

	s, ok := v.(string)

	return ok && strings.TrimSpace(s) == ""
}
