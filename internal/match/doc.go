// Package match provides name normalization, Levenshtein distance calculation,
// kind compatibility scoring, and candidate ranking for column matching.
//
// Key functions:
//   - NormalizeIdent: normalizes column and field names for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - ScoreKindCompatibility: scores a column kind against a CDM data type
//   - RankCandidates: ranks source columns for one CDM field
//   - MatchValue: proposes an allowed value for an observed categorical value
package match
