// Package schema holds the Common Data Model (CDM) registry: the fixed,
// ordered list of field definitions every output table conforms to.
//
// The registry is compiled in and read-only. Output column order of the
// transform engine follows the order of Fields exactly.
package schema
