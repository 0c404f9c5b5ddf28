package plan

import (
	"fmt"
	"slices"

	"cdm-mapper/internal/common"
	"cdm-mapper/internal/diagnostic"
	"cdm-mapper/internal/mapping"
	"cdm-mapper/internal/match"
	"cdm-mapper/internal/schema"
	"cdm-mapper/internal/table"
)

// ResolutionConfig holds configuration for the suggestion run.
type ResolutionConfig struct {
	// MinConfidence is the minimum score for auto-accepting a match.
	MinConfidence float64
	// MinGap is the minimum score gap between top candidates for auto-accept.
	MinGap float64
	// AmbiguityThreshold marks pairs as ambiguous if within this difference.
	AmbiguityThreshold float64
	// MaxCandidates is the maximum number of candidates to include in suggestions.
	MaxCandidates int
	// SuggestValues enables value substitution proposals.
	SuggestValues bool
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() ResolutionConfig {
	return ResolutionConfig{
		MinConfidence:      match.DefaultMinScore,
		MinGap:             match.DefaultMinGap,
		AmbiguityThreshold: match.DefaultAmbiguityThreshold,
		MaxCandidates:      3,
		SuggestValues:      true,
	}
}

// Resolver performs the suggestion pipeline.
type Resolver struct {
	fields []schema.FieldDefinition
	pinned *mapping.Document
	config ResolutionConfig
}

// NewResolver creates a new Resolver. pinned may be nil.
func NewResolver(fields []schema.FieldDefinition, pinned *mapping.Document, config ResolutionConfig) *Resolver {
	return &Resolver{
		fields: fields,
		pinned: pinned,
		config: config,
	}
}

// Suggest runs the pipeline for t against the CDM registry.
func Suggest(t *table.Table, config ResolutionConfig) *Plan {
	return NewResolver(schema.Fields(), nil, config).Resolve(t)
}

// Resolve runs the full suggestion pipeline against t.
func (r *Resolver) Resolve(t *table.Table) *Plan {
	p := &Plan{}
	sources := match.SourcesOf(t)

	assigned := make(map[string]Suggestion, len(r.fields))
	takenCols := map[string]struct{}{}

	r.applyPinned(t, assigned, takenCols, &p.Diagnostics)

	ranked := make(map[string]match.CandidateList, len(r.fields))

	for _, f := range r.fields {
		if _, done := assigned[f.Name]; !done {
			ranked[f.Name] = match.RankCandidates(f, sources)
		}
	}

	r.autoMatch(ranked, assigned, takenCols)

	for _, f := range r.fields {
		s, ok := assigned[f.Name]
		if !ok {
			p.Unmapped = append(p.Unmapped, r.unmapped(f, ranked[f.Name].Without(takenCols), &p.Diagnostics))
			continue
		}

		s.Categorical = f.IsCategorical()
		if r.config.SuggestValues && len(f.AllowedValues) > 0 {
			s.Values = suggestValues(t, s.Column, f, s.Values)
		}

		p.Suggestions = append(p.Suggestions, s)
	}

	return p
}

// applyPinned keeps assignments from an existing document whose column is
// present in t. Duplicate targets keep the first entry in document order.
func (r *Resolver) applyPinned(
	t *table.Table,
	assigned map[string]Suggestion,
	takenCols map[string]struct{},
	diags *diagnostic.Diagnostics,
) {
	known := make(map[string]struct{}, len(r.fields))
	for _, f := range r.fields {
		known[f.Name] = struct{}{}
	}

	for column, entry := range r.pinned.All() {
		if _, ok := known[entry.CDMField]; !ok {
			diags.AddWarning("pinned_unknown_field",
				fmt.Sprintf("pinned entry targets unknown field %q", entry.CDMField), entry.CDMField, column)

			continue
		}

		if !t.Has(column) {
			diags.AddWarning("pinned_column_missing",
				"pinned column is not in the data; field left for auto-matching", entry.CDMField, column)

			continue
		}

		if _, dup := assigned[entry.CDMField]; dup {
			continue
		}

		var values []match.ValueMatch

		vm := entry.ValueMapping()
		for _, observed := range sortedKeys(vm) {
			values = append(values, match.ValueMatch{
				Observed: observed, Allowed: vm[observed], Score: 1, Reason: "pinned",
			})
		}

		assigned[entry.CDMField] = Suggestion{
			Field:       entry.CDMField,
			Column:      column,
			Source:      MappingSourcePinned,
			Values:      values,
			Confidence:  1,
			Explanation: "pinned by existing mapping",
		}
		takenCols[column] = struct{}{}
	}
}

// autoMatch accepts high-confidence candidates greedily: in every round the
// field whose best free column scores highest wins that column.
func (r *Resolver) autoMatch(
	ranked map[string]match.CandidateList,
	assigned map[string]Suggestion,
	takenCols map[string]struct{},
) {
	for {
		var (
			bestField string
			best      *match.Candidate
		)

		for _, f := range r.fields {
			if _, done := assigned[f.Name]; done {
				continue
			}

			free := ranked[f.Name].Without(takenCols)

			c := free.HighConfidence(r.config.MinConfidence, r.config.MinGap)
			if c == nil {
				continue
			}

			if best == nil || c.CombinedScore > best.CombinedScore {
				bestField, best = f.Name, c
			}
		}

		if best == nil {
			return
		}

		assigned[bestField] = Suggestion{
			Field:      bestField,
			Column:     best.Column,
			Source:     MappingSourceAutoMatched,
			Confidence: best.CombinedScore,
			Explanation: fmt.Sprintf("auto-matched: %s -> %s (score: %.2f, %s)",
				best.Column, bestField, best.CombinedScore, best.KindCompat.Compatibility),
		}
		takenCols[best.Column] = struct{}{}
	}
}

func (r *Resolver) unmapped(
	f schema.FieldDefinition,
	candidates match.CandidateList,
	diags *diagnostic.Diagnostics,
) UnmappedField {
	var reason string

	switch {
	case common.IsEmpty(candidates):
		reason = "no free source columns"
	case candidates.IsAmbiguous(r.config.AmbiguityThreshold) &&
		candidates[0].CombinedScore >= r.config.MinConfidence:
		reason = fmt.Sprintf("ambiguous: top candidates %q (%.2f) and %q (%.2f) are too close",
			candidates[0].Column, candidates[0].CombinedScore,
			candidates[1].Column, candidates[1].CombinedScore)
	case candidates[0].CombinedScore < r.config.MinConfidence:
		reason = fmt.Sprintf("best match %q (%.2f) below threshold %.2f",
			candidates[0].Column, candidates[0].CombinedScore, r.config.MinConfidence)
	default:
		reason = "no high-confidence match"
	}

	top := candidates.Top(r.config.MaxCandidates)

	d := diagnostic.Diagnostic{
		Code:        "unmapped_field",
		Message:     reason,
		Field:       f.Name,
		Suggestions: top.Columns(),
	}

	if best, ok := common.First(candidates); ok && best.CombinedScore >= r.config.MinConfidence {
		d.Severity = diagnostic.SeverityWarning
		diags.Warnings = append(diags.Warnings, d)
	} else {
		d.Severity = diagnostic.SeverityInfo
		diags.Infos = append(diags.Infos, d)
	}

	return UnmappedField{Field: f.Name, Candidates: top, Reason: reason}
}

// suggestValues proposes substitutions for the observed values of column,
// keeping the pinned ones and adding matches for values not yet covered.
func suggestValues(t *table.Table, column string, f schema.FieldDefinition, pinned []match.ValueMatch) []match.ValueMatch {
	out := slices.Clone(pinned)

	covered := make(map[string]struct{}, len(pinned))
	for _, v := range pinned {
		covered[v.Observed] = struct{}{}
	}

	for _, v := range t.Distinct(column) {
		observed := table.Format(v)
		if _, ok := covered[observed]; ok {
			continue
		}

		if m, ok := match.MatchValue(observed, f.AllowedValues); ok {
			out = append(out, m)
		}
	}

	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
