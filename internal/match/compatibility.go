package match

import (
	"cdm-mapper/internal/common"
	"cdm-mapper/internal/schema"
	"cdm-mapper/internal/table"
)

// KindCompatibility represents how well a column kind fits a CDM data type.
type KindCompatibility int

const (
	// KindIncompatible means the column cannot feed the field.
	KindIncompatible KindCompatibility = iota
	// KindNeedsReview means the column could feed the field but the values
	// are unlikely to come out right without inspection.
	KindNeedsReview
	// KindConvertible means the transform engine or a value mapping can
	// bring the values into shape.
	KindConvertible
	// KindIdentical means the column already holds the field's type.
	KindIdentical
)

const (
	VerdictIdentical    = "identical"
	VerdictConvertible  = "convertible"
	VerdictNeedsReview  = "needs_review"
	VerdictIncompatible = "incompatible"
)

// String returns a human-readable name for the compatibility level.
func (c KindCompatibility) String() string {
	switch c {
	case KindIdentical:
		return VerdictIdentical
	case KindConvertible:
		return VerdictConvertible
	case KindNeedsReview:
		return VerdictNeedsReview
	case KindIncompatible:
		return VerdictIncompatible
	default:
		return common.UnknownStr
	}
}

// KindCompatibilityResult contains detailed information about kind compatibility.
type KindCompatibilityResult struct {
	Compatibility KindCompatibility
	Reason        string // Human-readable explanation
	SourceKind    table.Kind
	TargetType    schema.DataType
}

type compatRule struct {
	level  KindCompatibility
	reason string
}

var compatRules = map[schema.DataType]map[table.Kind]compatRule{
	schema.DataTypeUUID: {
		table.KindString: {KindIdentical, "identifiers are text"},
		table.KindInt:    {KindConvertible, "numeric identifiers are written as text"},
		table.KindFloat:  {KindNeedsReview, "fractional identifiers are unusual"},
	},
	schema.DataTypeCategorical: {
		table.KindString: {KindIdentical, "categories are text"},
		table.KindInt:    {KindConvertible, "coded categories need a value mapping"},
		table.KindBool:   {KindConvertible, "flags need a value mapping"},
		table.KindFloat:  {KindNeedsReview, "fractional codes are unusual"},
	},
	schema.DataTypeDate: {
		table.KindTime:   {KindIdentical, "column holds dates"},
		table.KindString: {KindConvertible, "text dates are parsed"},
		table.KindInt:    {KindNeedsReview, "integers may be compact dates or serial numbers"},
	},
	schema.DataTypeBool: {
		table.KindBool:   {KindIdentical, "column holds booleans"},
		table.KindString: {KindConvertible, "text flags need a value mapping"},
		table.KindInt:    {KindConvertible, "0/1 flags need a value mapping"},
	},
	schema.DataTypeNumber: {
		table.KindInt:    {KindIdentical, "column holds numbers"},
		table.KindFloat:  {KindIdentical, "column holds numbers"},
		table.KindString: {KindNeedsReview, "text in a numeric field"},
	},
}

// ScoreKindCompatibility determines how a column of the given kind fits a
// CDM data type.
func ScoreKindCompatibility(kind table.Kind, dt schema.DataType) KindCompatibilityResult {
	res := KindCompatibilityResult{SourceKind: kind, TargetType: dt}

	switch kind {
	case table.KindNull:
		res.Compatibility = KindNeedsReview
		res.Reason = "column has no values"

		return res
	case table.KindMixed:
		res.Compatibility = KindNeedsReview
		res.Reason = "column mixes value kinds"

		return res
	}

	rule, ok := compatRules[dt][kind]
	if !ok {
		res.Compatibility = KindIncompatible
		res.Reason = kind.String() + " column cannot feed a " + string(dt) + " field"

		return res
	}

	res.Compatibility = rule.level
	res.Reason = rule.reason

	return res
}
