package mapping

import (
	"fmt"
	"slices"
	"strings"

	"cdm-mapper/internal/diagnostic"
	"cdm-mapper/internal/schema"
	"cdm-mapper/internal/table"
)

// Validate checks a document against the CDM field definitions.
// Unknown or empty targets are errors; everything the transform engine
// tolerates (duplicate targets, values outside the allowed list) is a warning.
func Validate(doc *Document, fields []schema.FieldDefinition) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if doc.Len() == 0 {
		res.AddWarning("empty_mapping", "mapping document has no entries", "", "")
		return res
	}

	byName := make(map[string]schema.FieldDefinition, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	for column, entry := range doc.All() {
		if entry.CDMField == "" {
			res.AddError("missing_cdm_field", "entry has no cdm_field", "", column)
			continue
		}

		def, ok := byName[entry.CDMField]
		if !ok {
			res.Errors = append(res.Errors, diagnostic.Diagnostic{
				Severity:    diagnostic.SeverityError,
				Code:        "unknown_cdm_field",
				Message:     fmt.Sprintf("cdm_field %q is not a CDM field", entry.CDMField),
				Field:       entry.CDMField,
				Column:      column,
				Suggestions: closeFieldNames(entry.CDMField, fields),
			})

			continue
		}

		validateValueMapping(res, column, entry, def)
	}

	dups := doc.DuplicateTargets()

	for _, f := range fields {
		cols, dup := dups[f.Name]
		if !dup {
			continue
		}

		res.AddWarning("duplicate_target",
			fmt.Sprintf("%d source columns map to this field; %q is used, %s ignored",
				len(cols), cols[0], quoteAll(cols[1:])),
			f.Name, cols[0])
	}

	return res
}

func validateValueMapping(res *diagnostic.Diagnostics, column string, entry Entry, def schema.FieldDefinition) {
	vm := entry.ValueMapping()
	if len(vm) == 0 {
		return
	}

	if len(def.AllowedValues) == 0 {
		res.AddWarning("value_mapping_unused",
			fmt.Sprintf("field has no allowed values; %d substitutions are applied as-is", len(vm)),
			def.Name, column)

		return
	}

	keys := make([]string, 0, len(vm))
	for k := range vm {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	for _, k := range keys {
		if !def.Allows(vm[k]) {
			res.AddWarning("value_not_allowed",
				fmt.Sprintf("%q maps to %q, which is not one of %s", k, vm[k], quoteAll(def.AllowedValues)),
				def.Name, column)
		}
	}
}

// CheckAgainstTable reports how a document fits a concrete source table:
// entries whose source column is absent (the field will be empty) and
// observed categorical values without a substitution (they pass through).
// Values are only checked for the entry that feeds its field.
func CheckAgainstTable(doc *Document, t *table.Table) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}

	for column, entry := range doc.All() {
		if !t.Has(column) {
			res.AddWarning("column_not_found",
				"source column is not in the data; the CDM field will be empty",
				entry.CDMField, column)

			continue
		}

		if entry.Transformation == nil {
			continue
		}

		if src, _ := doc.SourceFor(entry.CDMField); src != column {
			continue
		}

		vm := entry.ValueMapping()

		var unmapped []string

		for _, v := range t.Distinct(column) {
			s := table.Format(v)
			if _, ok := vm[s]; !ok {
				unmapped = append(unmapped, s)
			}
		}

		if len(unmapped) > 0 {
			res.AddInfo("unmapped_values",
				fmt.Sprintf("values without substitution pass through unchanged: %s", quoteAll(unmapped)),
				entry.CDMField, column)
		}
	}

	return res
}

func closeFieldNames(name string, fields []schema.FieldDefinition) []string {
	want := strings.ToLower(name)

	var out []string

	for _, f := range fields {
		have := strings.ToLower(f.Name)
		if strings.Contains(have, want) || strings.Contains(want, have) {
			out = append(out, f.Name)
		}
	}

	return out
}

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = fmt.Sprintf("%q", s)
	}

	return strings.Join(q, ", ")
}
