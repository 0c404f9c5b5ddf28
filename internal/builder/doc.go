// Package builder assembles a mapping document interactively.
//
// For each CDM field the user picks a source column or "Not available". A
// categorical field then asks, for every distinct observed value, which
// allowed CDM value it stands for. Answers come from a Prompter; the
// terminal implementation uses survey, tests script the answers.
package builder
