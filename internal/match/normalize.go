package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent normalizes a column or field name for fuzzy matching.
// The normalization pipeline:
// 1. Tokenize on separators and CamelCase boundaries.
// 2. Case-fold to lower.
// 3. Join the tokens without separators.
func NormalizeIdent(s string) string {
	return strings.Join(TokenizeIdent(s), "")
}

// NormalizeIdentWithSuffixStrip normalizes and strips one trailing token that
// carries little meaning in clinical exports, such as "nr", "id" or "code".
// The name is left unstripped when nothing else would remain.
func NormalizeIdentWithSuffixStrip(s string) string {
	tokens := TokenizeIdent(s)
	if len(tokens) > 1 {
		if _, ok := noiseSuffixes[tokens[len(tokens)-1]]; ok {
			tokens = tokens[:len(tokens)-1]
		}
	}

	return strings.Join(tokens, "")
}

var noiseSuffixes = map[string]struct{}{
	"id":     {},
	"ids":    {},
	"nr":     {},
	"no":     {},
	"num":    {},
	"number": {},
	"code":   {},
	"cd":     {},
	"value":  {},
}

// stopWords are dropped before token overlap scoring.
var stopWords = map[string]struct{}{
	"of":  {},
	"the": {},
	"a":   {},
	"in":  {},
	"at":  {},
}

// tokenizeCamelCase splits a CamelCase or camelCase string into tokens.
// Examples:
//   - "PatientID" -> ["Patient", "ID"]
//   - "dateOfSurgery" -> ["date", "Of", "Surgery"]
//   - "ASAScore" -> ["ASA", "Score"]
//   - "Date of Surgery (dd/mm)" -> ["Date", "of", "Surgery", "dd", "mm"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && shouldStartNewToken(runes, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isSeparator reports whether r separates words in a column name.
func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prev := runes[i-1]

	if unicode.IsDigit(r) != unicode.IsDigit(prev) && !isSeparator(prev) {
		return true
	}

	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prev)

	// "orderID" splits before 'I'
	if isUpper && !isPrevUpper && !isSeparator(prev) {
		return true
	}

	// "ASAScore" splits before 'S'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

	return isUpper && isPrevUpper && hasNextLower
}

// TokenizeIdent splits a name into normalized lowercase tokens.
func TokenizeIdent(s string) []string {
	tokens := tokenizeCamelCase(s)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return tokens
}

// TokenOverlap scores the shared words of two names, ignoring order and stop
// words, as |A∩B| / |A∪B|.
func TokenOverlap(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	shared := 0

	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}

	return float64(shared) / float64(len(ta)+len(tb)-shared)
}

func tokenSet(s string) map[string]struct{} {
	set := map[string]struct{}{}

	for _, t := range TokenizeIdent(s) {
		if _, stop := stopWords[t]; !stop {
			set[t] = struct{}{}
		}
	}

	return set
}
