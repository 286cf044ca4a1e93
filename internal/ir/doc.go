// Package ir holds the declarative model of an AT command table.
//
// Tables are authored in CUE, compiled by internal/compiler into a
// TableSpec, and turned into live engine commands by internal/device.
// ir imports nothing internal so every other package can depend on it.
//
// Constraints:
//   - No float types; numeric values are int64 or rendered strings
//   - JSON tags use snake_case
//   - Command order is significant and preserved everywhere
package ir
