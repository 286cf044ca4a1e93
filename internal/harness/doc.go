// Package harness runs conformance scenarios against a command table.
//
// A scenario is a YAML file naming a CUE table and a script of lines to
// send, each with the exact reply it must produce. The harness compiles
// and validates the table, builds a simulated device, and drives a real
// engine over an in-memory transport, optionally splitting the input into
// chunks separated by "no data" gaps.
//
// Besides per-line replies a scenario may assert on the exchange trace
// (counts by reason, command order) and on the final variable values.
//
// RunWithGolden additionally compares the full transcript, encoded as
// canonical JSON, against testdata/golden/<name>.golden:
//
//	go test ./internal/harness -update
package harness
