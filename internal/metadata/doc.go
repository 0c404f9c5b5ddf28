// Package metadata describes a transformed CDM table as a FAIR-style record:
// who produced it, from which files, with which tool and when, plus the
// column schema of the output.
//
// The clock and the identifier source are injected so records can be
// reproduced in tests.
package metadata
