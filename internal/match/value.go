package match

import "strings"

// MinValueSimilarity is the edit similarity above which an observed value is
// taken for a misspelling of an allowed value.
const MinValueSimilarity = 0.8

// ValueMatch is a proposed substitution for one observed categorical value.
type ValueMatch struct {
	Observed string
	Allowed  string
	Score    float64
	Reason   string
}

// valueSynonyms lists common spellings of allowed values, keyed by the
// normalized allowed value.
var valueSynonyms = map[string][]string{
	"yes":      {"y", "j", "ja", "true", "1"},
	"no":       {"n", "nee", "false", "0"},
	"left":     {"l", "links", "li"},
	"right":    {"r", "rechts", "re"},
	"positive": {"pos", "+"},
	"negative": {"neg", "-"},
}

// MatchValue proposes the allowed value an observed value most likely means.
// It reports false when nothing is close enough or when two allowed values
// are equally close.
func MatchValue(observed string, allowed []string) (ValueMatch, bool) {
	norm := normalizeValue(observed)
	if norm == "" {
		return ValueMatch{}, false
	}

	var (
		best      ValueMatch
		ambiguous bool
	)

	for _, a := range allowed {
		score, reason := scoreValue(norm, normalizeValue(a))
		if score == 0 {
			continue
		}

		switch {
		case score > best.Score:
			best = ValueMatch{Observed: observed, Allowed: a, Score: score, Reason: reason}
			ambiguous = false
		case score == best.Score:
			ambiguous = true
		}
	}

	if best.Score == 0 || ambiguous {
		return ValueMatch{}, false
	}

	return best, true
}

func scoreValue(observed, allowed string) (float64, string) {
	if observed == allowed {
		return 1.0, "same value"
	}

	for _, syn := range valueSynonyms[allowed] {
		if observed == syn {
			return 0.95, "common spelling"
		}
	}

	if strings.HasPrefix(allowed, observed) {
		return 0.9, "abbreviation"
	}

	if strings.HasPrefix(observed, allowed) {
		return 0.85, "value with qualifier"
	}

	if s := LevenshteinNormalized(observed, allowed); s >= MinValueSimilarity {
		return s * 0.8, "similar spelling"
	}

	return 0, ""
}

// normalizeValue lowercases and drops separators, keeping the lone symbols
// that carry meaning in value lists ("+", "-").
func normalizeValue(s string) string {
	s = strings.TrimSpace(s)
	if s == "+" || s == "-" {
		return s
	}

	return NormalizeIdent(s)
}
