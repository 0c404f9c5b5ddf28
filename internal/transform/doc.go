// Package transform applies a Mapping Document to a source table and
// produces the CDM table.
//
// The output always has one column per CDM field, in registry order, and
// exactly as many rows as the source. Fields without a usable mapping entry
// are filled with missing cells. Date fields are reformatted to dd/mm/yyyy;
// cells that cannot be read as dates become missing and are reported as
// CellFailure values, never as an error of the whole run. Value mappings
// substitute known values and let every other value through unchanged.
package transform
