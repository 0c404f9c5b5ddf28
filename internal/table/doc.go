// Package table provides the in-memory tabular model shared by ingestion,
// the transform engine and export.
//
// A Table is an ordered set of uniquely named columns of equal length.
// Cells are plain Go values: string, int64, float64, bool or time.Time.
// A nil cell is the missing marker.
package table
