package plan

import (
	"cdm-mapper/internal/common"
	"cdm-mapper/internal/diagnostic"
	"cdm-mapper/internal/match"
)

// Plan is the outcome of a suggestion run.
type Plan struct {
	// Suggestions are the accepted column assignments in registry order.
	Suggestions []Suggestion
	// Unmapped are CDM fields left without a column.
	Unmapped []UnmappedField
	// Diagnostics contains all warnings and infos from the run.
	Diagnostics diagnostic.Diagnostics
}

// Suggestion assigns one source column to one CDM field.
type Suggestion struct {
	Field  string
	Column string
	// Source specifies where the assignment came from.
	Source MappingSource
	// Categorical is set for fields whose entries carry a value mapping.
	Categorical bool
	// Values are substitutions for observed values, in first-seen order.
	Values []match.ValueMatch
	// Confidence score for auto-matched assignments (0-1).
	Confidence float64
	// Explanation describes why this assignment was chosen.
	Explanation string
}

// UnmappedField is a CDM field the planner could not assign.
type UnmappedField struct {
	Field      string
	Candidates match.CandidateList
	Reason     string
}

// MappingSource indicates where an assignment originated.
type MappingSource int

const (
	// MappingSourcePinned - kept from an existing mapping document.
	MappingSourcePinned MappingSource = iota
	// MappingSourceAutoMatched - auto-matched by best-effort algorithm.
	MappingSourceAutoMatched
)

// String returns a human-readable source name.
func (s MappingSource) String() string {
	switch s {
	case MappingSourcePinned:
		return "pinned"
	case MappingSourceAutoMatched:
		return "auto"
	default:
		return common.UnknownStr
	}
}

// ColumnFor returns the suggested column for a CDM field.
func (p *Plan) ColumnFor(field string) (string, bool) {
	if p == nil {
		return "", false
	}

	for _, s := range p.Suggestions {
		if s.Field == field {
			return s.Column, true
		}
	}

	return "", false
}

// ValueFor returns the suggested substitution for an observed value of field.
func (p *Plan) ValueFor(field, observed string) (string, bool) {
	if p == nil {
		return "", false
	}

	for _, s := range p.Suggestions {
		if s.Field != field {
			continue
		}

		for _, v := range s.Values {
			if v.Observed == observed {
				return v.Allowed, true
			}
		}
	}

	return "", false
}
