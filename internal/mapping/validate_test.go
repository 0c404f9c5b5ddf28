package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cdm-mapper/internal/diagnostic"
	"cdm-mapper/internal/schema"
	"cdm-mapper/internal/table"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		doc          func() *Document
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name: "valid",
			doc: func() *Document {
				d := NewDocument()
				d.Set("id", Entry{CDMField: "Patient ID"})
				d.Set("side", sideEntry())

				return d
			},
		},
		{
			name:         "empty document",
			doc:          NewDocument,
			wantWarnings: []string{"empty_mapping"},
		},
		{
			name: "unknown and missing targets",
			doc: func() *Document {
				d := NewDocument()
				d.Set("x", Entry{CDMField: "Patient Identifier"})
				d.Set("y", Entry{})

				return d
			},
			wantErrors: []string{"unknown_cdm_field", "missing_cdm_field"},
		},
		{
			name: "duplicate target",
			doc: func() *Document {
				d := NewDocument()
				d.Set("a", Entry{CDMField: "Result"})
				d.Set("b", Entry{CDMField: "Result"})

				return d
			},
			wantWarnings: []string{"duplicate_target"},
		},
		{
			name: "value outside allowed list",
			doc: func() *Document {
				d := NewDocument()
				d.Set("side", Entry{
					CDMField:       "Operation Side",
					Transformation: &Transformation{ValueMapping: map[string]string{"L": "links"}},
				})

				return d
			},
			wantWarnings: []string{"value_not_allowed"},
		},
		{
			name: "value mapping on free field",
			doc: func() *Document {
				d := NewDocument()
				d.Set("date", Entry{
					CDMField:       "Date of Surgery",
					Transformation: &Transformation{ValueMapping: map[string]string{"today": "01/01/2024"}},
				})

				return d
			},
			wantWarnings: []string{"value_mapping_unused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.doc(), schema.Fields())

			assert.Equal(t, tt.wantErrors, codes(res.Errors))
			assert.Equal(t, tt.wantWarnings, codes(res.Warnings))
		})
	}
}

func TestValidate_UnknownFieldSuggestions(t *testing.T) {
	doc := NewDocument()
	doc.Set("x", Entry{CDMField: "Patient"})

	res := Validate(doc, schema.Fields())
	require.Len(t, res.Errors, 1)
	assert.Equal(t, []string{"Patient ID"}, res.Errors[0].Suggestions)
}

func TestValidate_DuplicateNamesWinner(t *testing.T) {
	doc := NewDocument()
	doc.Set("first", Entry{CDMField: "Result"})
	doc.Set("second", Entry{CDMField: "Result"})

	res := Validate(doc, schema.Fields())
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "first", res.Warnings[0].Column)
	assert.Contains(t, res.Warnings[0].Message, `"second" ignored`)
}

func TestCheckAgainstTable(t *testing.T) {
	tbl := table.MustNew(
		table.NewColumn("side", "L", "R", "B", nil, "L"),
		table.NewColumn("id", "a", "b", "c", "d", "e"),
	)

	doc := NewDocument()
	doc.Set("side", Entry{
		CDMField:       "Operation Side",
		Transformation: &Transformation{ValueMapping: map[string]string{"L": "left", "R": "right"}},
	})
	doc.Set("id", Entry{CDMField: "Patient ID"})
	doc.Set("gone", Entry{CDMField: "Result"})

	res := CheckAgainstTable(doc, tbl)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "column_not_found", res.Warnings[0].Code)
	assert.Equal(t, "gone", res.Warnings[0].Column)

	require.Len(t, res.Infos, 1)
	assert.Equal(t, "unmapped_values", res.Infos[0].Code)
	assert.Contains(t, res.Infos[0].Message, `"B"`)
	assert.NotContains(t, res.Infos[0].Message, `"L"`)
}

func TestCheckAgainstTable_SkipsShadowedEntries(t *testing.T) {
	tbl := table.MustNew(
		table.NewColumn("side", "L", "R"),
		table.NewColumn("side_old", "links", "rechts"),
	)

	doc := NewDocument()
	doc.Set("side", Entry{
		CDMField:       "Operation Side",
		Transformation: &Transformation{ValueMapping: map[string]string{"L": "left", "R": "right"}},
	})
	doc.Set("side_old", Entry{
		CDMField:       "Operation Side",
		Transformation: &Transformation{ValueMapping: map[string]string{}},
	})

	res := CheckAgainstTable(doc, tbl)

	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Infos)
}

func codes(ds []diagnostic.Diagnostic) []string {
	var out []string
	for _, d := range ds {
		out = append(out, d.Code)
	}

	return out
}
