package table

import (
	"strconv"
	"strings"
)

// missingTokens are the textual cells read as missing, on top of the empty string.
var missingTokens = map[string]struct{}{
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"NULL": {},
	"null": {},
	"#N/A": {},
	"<NA>": {},
}

// IsMissingText reports whether a raw text cell denotes a missing value.
func IsMissingText(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}

	_, ok := missingTokens[s]

	return ok
}

// InferColumn converts raw text cells into typed cells. The whole column
// takes one kind: int64 when every present cell is an integer, float64 when
// every present cell is a number, bool when every present cell is true/false,
// otherwise the cells stay strings. Missing cells become nil.
func InferColumn(raw []string) []any {
	kind := inferKind(raw)
	out := make([]any, len(raw))

	for i, s := range raw {
		if IsMissingText(s) {
			continue
		}

		out[i] = convert(s, kind)
	}

	return out
}

func inferKind(raw []string) Kind {
	ints, floats, bools, present := true, true, true, false

	for _, s := range raw {
		if IsMissingText(s) {
			continue
		}

		present = true
		s = strings.TrimSpace(s)

		if ints {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				ints = false
			}
		}

		if floats {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				floats = false
			}
		}

		if bools {
			if _, ok := parseBool(s); !ok {
				bools = false
			}
		}

		if !ints && !floats && !bools {
			return KindString
		}
	}

	switch {
	case !present:
		return KindNull
	case ints:
		return KindInt
	case floats:
		return KindFloat
	case bools:
		return KindBool
	default:
		return KindString
	}
}

func convert(s string, kind Kind) any {
	t := strings.TrimSpace(s)

	switch kind {
	case KindInt:
		v, _ := strconv.ParseInt(t, 10, 64)
		return v
	case KindFloat:
		v, _ := strconv.ParseFloat(t, 64)
		return v
	case KindBool:
		v, _ := parseBool(t)
		return v
	default:
		return s
	}
}

// parseBool accepts only spelled-out booleans; "1"/"0" stay numbers.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
