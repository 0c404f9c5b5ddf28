package builder

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"cdm-mapper/internal/common"
	"cdm-mapper/internal/mapping"
	"cdm-mapper/internal/plan"
	"cdm-mapper/internal/schema"
	"cdm-mapper/internal/table"
)

// NotAvailable is the option that leaves a field or value unmapped.
const NotAvailable = "Not available"

// ErrNoSheets is returned by ChooseSheet for an empty sheet list.
var ErrNoSheets = errors.New("no sheets to choose from")

// Builder walks the user through the CDM fields.
type Builder struct {
	prompt   Prompter
	fields   []schema.FieldDefinition
	defaults *plan.Plan
	log      zerolog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithFields replaces the CDM field list.
func WithFields(fields []schema.FieldDefinition) Option {
	return func(b *Builder) {
		b.fields = fields
	}
}

// WithDefaults preselects the columns and values suggested by p.
func WithDefaults(p *plan.Plan) Option {
	return func(b *Builder) {
		b.defaults = p
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Builder) {
		b.log = log
	}
}

// New returns a Builder asking its questions through p.
func New(p Prompter, opts ...Option) *Builder {
	b := &Builder{
		prompt: p,
		fields: schema.Fields(),
		log:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build asks, for every CDM field in order, which column feeds it and, for
// categorical fields, how each observed value translates. Mapping one column
// to two fields keeps only the later choice.
func (b *Builder) Build(ctx context.Context, t *table.Table) (*mapping.Document, error) {
	doc := mapping.NewDocument()
	columns := common.Prepend(NotAvailable, t.Columns())

	for _, f := range b.fields {
		column, err := b.prompt.Select(ctx, Question{
			Message: fmt.Sprintf("%s (%s)", f.Name, f.ID),
			Help:    f.Description,
			Options: columns,
			Default: b.defaultColumn(f.Name, t),
		})
		if err != nil {
			return nil, err
		}

		if column == NotAvailable {
			continue
		}

		entry := mapping.Entry{CDMField: f.Name}

		if f.IsCategorical() {
			values, err := b.mapValues(ctx, t, column, f)
			if err != nil {
				return nil, err
			}

			entry.Transformation = &mapping.Transformation{ValueMapping: values}
		}

		if prev, ok := doc.Get(column); ok {
			b.log.Warn().
				Str("column", column).
				Str("replaced", prev.CDMField).
				Str("field", f.Name).
				Msg("column mapped twice, keeping the later field")
		}

		doc.Set(column, entry)
	}

	return doc, nil
}

func (b *Builder) mapValues(ctx context.Context, t *table.Table, column string, f schema.FieldDefinition) (map[string]string, error) {
	b.prompt.Info(fmt.Sprintf("Map values for '%s'", f.Name))

	options := append(slices.Clone(f.AllowedValues), NotAvailable)
	values := make(map[string]string)

	for _, v := range t.Distinct(column) {
		observed := table.Format(v)

		def := NotAvailable
		if allowed, ok := b.defaults.ValueFor(f.Name, observed); ok {
			def = allowed
		}

		choice, err := b.prompt.Select(ctx, Question{
			Message: fmt.Sprintf("Map '%s' to CDM value for '%s'", observed, f.Name),
			Options: options,
			Default: def,
		})
		if err != nil {
			return nil, err
		}

		if choice != NotAvailable {
			values[observed] = choice
		}
	}

	return values, nil
}

func (b *Builder) defaultColumn(field string, t *table.Table) string {
	if column, ok := b.defaults.ColumnFor(field); ok && t.Has(column) {
		return column
	}

	return NotAvailable
}

// ChooseSheet asks which worksheet to load. A single sheet is returned
// without asking.
func ChooseSheet(ctx context.Context, p Prompter, sheets []string) (string, error) {
	switch len(sheets) {
	case 0:
		return "", ErrNoSheets
	case 1:
		return sheets[0], nil
	}

	return p.Select(ctx, Question{
		Message: "Select Sheet:",
		Options: sheets,
		Default: sheets[0],
	})
}
