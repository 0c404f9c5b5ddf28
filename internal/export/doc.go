// Package export writes the artifacts of a transformation: the CDM table as
// CSV or Parquet and the metadata record as JSON.
package export
