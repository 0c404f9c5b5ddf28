package table

// ColumnSummary describes a column for display before mapping.
type ColumnSummary struct {
	Name    string
	Kind    Kind
	Samples []any
	Missing int
}

// Summaries describes every column with up to n leading sample cells.
func (t *Table) Summaries(n int) []ColumnSummary {
	out := make([]ColumnSummary, len(t.cols))

	for i, c := range t.cols {
		k := min(n, len(c.Values))
		out[i] = ColumnSummary{
			Name:    c.Name,
			Kind:    c.Kind(),
			Samples: append([]any(nil), c.Values[:k]...),
			Missing: c.Missing(),
		}
	}

	return out
}

// MissingCount is the number of missing cells in one column.
type MissingCount struct {
	Column  string
	Missing int
}

// MissingCounts returns the missing cell count of every column in order.
func (t *Table) MissingCounts() []MissingCount {
	out := make([]MissingCount, len(t.cols))
	for i, c := range t.cols {
		out[i] = MissingCount{Column: c.Name, Missing: c.Missing()}
	}

	return out
}
