// Package mapping provides the Mapping Document model, its YAML
// serialization, and validation against the CDM field registry.
//
// A Mapping Document maps source column names to entries naming the CDM
// field they feed and, for categorical fields, a substitution table from
// observed source values to allowed CDM values.
//
// # File format
//
// The document is stored under a single top-level key:
//
//	mappings:
//	  patient_nr:
//	    cdm_field: Patient ID
//	  side:
//	    cdm_field: Operation Side
//	    transformation:
//	      value_mapping:
//	        L: left
//	        R: right
//
// Entry order in the file is kept on load and save. A file without the
// mappings key, or an empty file, loads as an empty document.
//
// # Duplicate targets
//
// Nothing stops two source columns from naming the same CDM field. Lookups
// by CDM field resolve to the first entry in document order, and Validate
// reports the shadowed entries as warnings.
package mapping
