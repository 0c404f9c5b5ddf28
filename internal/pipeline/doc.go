// Package pipeline wires ingestion, mapping, transformation, metadata and
// export into the runs the command line offers.
package pipeline
