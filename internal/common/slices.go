package common

// UnknownStr is the String() fallback for out-of-range enum values.
const UnknownStr = "unknown"

// IsEmpty returns true if the slice is empty.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// First returns the first element of the slice and true, or the zero value and false if empty.
func First[S ~[]E, E any](s S) (E, bool) {
	if len(s) == 0 {
		var zero E
		return zero, false
	}

	return s[0], true
}

// IndexOf returns the index of v in s, or -1.
func IndexOf[S ~[]E, E comparable](s S, v E) int {
	for i := range s {
		if s[i] == v {
			return i
		}
	}

	return -1
}

// Prepend returns a new slice with v in front of s.
func Prepend[S ~[]E, E any](v E, s S) S {
	out := make(S, 0, len(s)+1)
	out = append(out, v)

	return append(out, s...)
}
