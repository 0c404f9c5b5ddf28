// Package plan suggests a Mapping Document for a source table.
//
// Suggestion pipeline:
//  1. Keep entries pinned by an existing document when their column exists
//  2. For the remaining CDM fields, rank source columns with the fuzzy matcher
//  3. Accept matches greedily, best score first, each column at most once,
//     and only on high confidence; everything else is left for review
//  4. For fields with allowed values, propose substitutions for observed
//     values that closely match an allowed value
//  5. Emit diagnostics (unmapped fields, ambiguity lists)
package plan
