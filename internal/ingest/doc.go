// Package ingest parses uploaded tabular files into a table.Table.
//
// The format is chosen by file extension:
//   - .csv  delimited text with a header row
//   - .xlsx spreadsheet (one sheet per parse, chosen by name or index)
//   - .xls  legacy spreadsheet, same sheet rules as .xlsx
//   - .json array of records (or an object of equal-length columns)
//
// Ingestion is all-or-nothing: on error no table is returned. Readers are
// left at the offset they had on entry, so callers can list sheets and then
// parse the same stream.
package ingest
