package table

import "time"

//go:generate go tool stringer -type=Kind -linecomment -output=kind_string.go

// Kind is the runtime primitive type of a cell or column. Its String form is
// the name used in column listings and metadata schemas.
type Kind int

const (
	KindNull   Kind = iota // null
	KindString             // string
	KindInt                // int64
	KindFloat              // float64
	KindBool               // bool
	KindTime               // datetime
	KindMixed              // mixed
)

// IsNumber reports whether the kind holds numeric values.
func (k Kind) IsNumber() bool {
	return k == KindInt || k == KindFloat
}

// KindOf returns the kind of a single cell value.
// Values of types outside the cell model are reported as strings,
// matching how Format renders them.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case string:
		return KindString
	case int64, int, int32:
		return KindInt
	case float64, float32:
		return KindFloat
	case bool:
		return KindBool
	case time.Time:
		return KindTime
	default:
		return KindString
	}
}

// widen merges the kind seen so far with the kind of the next non-missing cell.
func widen(acc, next Kind) Kind {
	switch {
	case acc == KindNull:
		return next
	case acc == next:
		return acc
	case acc.IsNumber() && next.IsNumber():
		return KindFloat
	default:
		return KindMixed
	}
}
