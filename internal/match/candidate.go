package match

import (
	"sort"

	"cdm-mapper/internal/schema"
	"cdm-mapper/internal/table"
)

// Source describes a source column offered for matching.
type Source struct {
	Name string
	Kind table.Kind
}

// SourcesOf lists the columns of t as match sources.
func SourcesOf(t *table.Table) []Source {
	out := make([]Source, 0, t.Width())
	for i := range t.Width() {
		c := t.ColumnAt(i)
		out = append(out, Source{Name: c.Name, Kind: c.Kind()})
	}

	return out
}

// Candidate represents a potential mapping from a source column to a CDM field.
type Candidate struct {
	Column string
	Field  string

	// Scoring components
	NameScore  float64                 // Name similarity (0-1)
	KindCompat KindCompatibilityResult // Kind compatibility result

	// Combined score for ranking (higher is better)
	CombinedScore float64

	// Metadata for debugging/explanation
	NormalizedColumnName string
	NormalizedFieldName  string
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores every source column against one CDM field.
// Returns candidates sorted by combined score (descending).
func RankCandidates(field schema.FieldDefinition, sources []Source) CandidateList {
	candidates := make(CandidateList, 0, len(sources))
	fieldNorm := NormalizeIdent(field.Name)

	for _, src := range sources {
		nameScore := NameScore(src.Name, field.Name)
		compat := ScoreKindCompatibility(src.Kind, field.DataType)

		candidates = append(candidates, Candidate{
			Column:               src.Name,
			Field:                field.Name,
			NameScore:            nameScore,
			KindCompat:           compat,
			CombinedScore:        calculateCombinedScore(nameScore, compat.Compatibility),
			NormalizedColumnName: NormalizeIdent(src.Name),
			NormalizedFieldName:  fieldNorm,
		})
	}

	sort.Sort(candidates)

	return candidates
}

// calculateCombinedScore computes a combined score from name similarity and kind compatibility.
// Weights:
//   - Name similarity: 75% (0.0-0.75)
//   - Kind compatibility: 25% (0.0-0.25)
func calculateCombinedScore(nameScore float64, compat KindCompatibility) float64 {
	const (
		nameWeight = 0.75
		kindWeight = 0.25
	)

	var kindScore float64

	switch compat {
	case KindIdentical:
		kindScore = 1.0
	case KindConvertible:
		kindScore = 0.8
	case KindNeedsReview:
		kindScore = 0.4
	case KindIncompatible:
		kindScore = 0.0
	}

	return nameScore*nameWeight + kindScore*kindWeight
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by combined score descending, then by column name for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].CombinedScore != c[j].CombinedScore {
		return c[i].CombinedScore > c[j].CombinedScore
	}

	return c[i].Column < c[j].Column
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// Columns returns the candidate column names in rank order.
func (c CandidateList) Columns() []string {
	out := make([]string, len(c))
	for i := range c {
		out[i] = c[i].Column
	}

	return out
}

// IsAmbiguous returns true if the top two candidates are within the threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].CombinedScore-c[1].CombinedScore < threshold
}

// AboveThreshold returns candidates with combined score above the threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.CombinedScore >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// Without returns the candidates whose column is not in taken.
func (c CandidateList) Without(taken map[string]struct{}) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if _, ok := taken[cand.Column]; !ok {
			result = append(result, cand)
		}
	}

	return result
}

// HighConfidence returns the best candidate if it's significantly better than alternatives.
// Returns nil if no clear winner exists.
func (c CandidateList) HighConfidence(minScore, minGap float64) *Candidate {
	if len(c) == 0 {
		return nil
	}

	best := &c[0]

	if best.CombinedScore < minScore {
		return nil
	}

	if best.KindCompat.Compatibility < KindNeedsReview {
		return nil
	}

	if len(c) > 1 && c[0].CombinedScore-c[1].CombinedScore < minGap {
		return nil
	}

	return best
}

// Confidence thresholds for auto-accepting matches.
const (
	// DefaultMinScore is the minimum combined score for auto-acceptance.
	DefaultMinScore = 0.7
	// DefaultMinGap is the minimum score gap between top candidates.
	DefaultMinGap = 0.1
	// DefaultAmbiguityThreshold is the score difference that marks ambiguity.
	DefaultAmbiguityThreshold = 0.05
)
