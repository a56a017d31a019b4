// Package pipeline wires sources, cleaning, statistics and outputs into one
// operations.Manager per command.
//
// A Variant carries everything that differs between the commands (source,
// value column, windows, output names, chart styling); the steps are shared:
//
//	fetch -> normalize -> statistics -> export -> chart -> report -> publish
//
// The analyze variant replaces fetch and normalize with a load of the CSV
// written by another command, and a missing CSV names that command.
//
// Inputs and output directories are checked in each step's Validate hook, so
// a missing workbook or an unwritable charts directory fails before the step
// does any work.
package pipeline
