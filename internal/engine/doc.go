// Package engine implements the AT command interpreter.
//
// The engine consumes one input byte at a time from a Transport, matches
// command names against a fixed table, dispatches to the execute, read or
// write form of the resolved command, and writes textual acknowledgements.
//
// ARCHITECTURE:
//
// Cooperative Single-Step Scheduling:
// Step performs one bounded unit of work and returns. A call either
// consumes one byte (when the transport has one), or advances the matcher
// by one table slot, or advances the resolver by one table slot, or
// dispatches a resolved command. No call iterates over the whole table and
// no call waits for input, so the engine can share a superloop with other
// work. The only place the engine spins is the acknowledgement writer,
// which retries PutByte until each byte is accepted.
//
// Exchange Flow:
//
//	PREFIX -> NAME -> MATCH <-> NAME -> RESOLVE -> {FOUND | NOT_FOUND}
//	       -> {execute | READ reply | WRITE args} -> reset
//
// ERROR is reachable from every parsing state. It discards input up to the
// next newline, writes "\nERROR\n" and returns to PREFIX.
//
// Memory:
// The engine never allocates after New. The caller-owned scratch buffer is
// used first as a bit-packed match-state table (2 bits per command) and
// then, once a command is resolved, as argument or reply storage. The two
// uses never overlap in time; see arena.go.
//
// Thread-safety:
// An Engine is owned by a single goroutine. Separate instances with their
// own buffers may run concurrently.
package engine
