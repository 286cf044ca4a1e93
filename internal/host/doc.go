// Package host runs command engines against real transports.
//
// Serve is a superloop: it steps the engine while it makes progress,
// flushes the reply bytes, hands finished exchanges to the journal, then
// blocks until the transport has more input. Blocking only ever happens
// here, between steps, never inside the engine.
package host
