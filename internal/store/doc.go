// Package store is the SQLite journal of served sessions and their
// exchanges.
//
// The journal is diagnostic output of a host. Engines never read it and
// keep no persistent state of their own.
//
// Records are append-only and every query orders by seq, the logical
// clock assigned by the host, so a trace reads back in the order the
// exchanges completed regardless of wall time.
//
// # Database Configuration
//
//   - WAL mode: trace can read while serve writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: exchanges must reference a session
package store
