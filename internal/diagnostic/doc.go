// Package diagnostic provides structured errors, warnings and infos
// collected while validating mapping documents and applying them.
//
// Key capabilities:
//   - Unknown or duplicate CDM targets in a mapping
//   - Source columns missing from the input table
//   - Categorical values left without a substitution
//   - Per-column date parse failures
package diagnostic
