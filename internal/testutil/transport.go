package testutil

import "bytes"

// ScriptTransport is an in-memory byte transport with scripted input.
//
// It satisfies engine.Transport without importing it. Input can be
// delivered in chunks separated by "no data" gaps, and writes can be
// rejected periodically to exercise retry paths.
//
// Not safe for concurrent use.
type ScriptTransport struct {
	in  []byte
	pos int

	// Chunk, when > 0, makes GetByte report "no data" once after every
	// Chunk delivered bytes.
	Chunk    int
	sinceGap int

	// RejectEvery, when > 0, makes every RejectEvery-th PutByte call fail.
	RejectEvery int
	attempts    int
	Rejected    int

	out bytes.Buffer
}

// NewScriptTransport creates a transport that will deliver input.
func NewScriptTransport(input string) *ScriptTransport {
	return &ScriptTransport{in: []byte(input)}
}

// Feed appends more input.
func (s *ScriptTransport) Feed(input string) {
	s.in = append(s.in, input...)
}

// Pending returns the number of input bytes not yet delivered.
func (s *ScriptTransport) Pending() int {
	return len(s.in) - s.pos
}

// GetByte delivers the next scripted byte.
func (s *ScriptTransport) GetByte() (byte, bool) {
	if s.pos >= len(s.in) {
		return 0, false
	}
	if s.Chunk > 0 && s.sinceGap >= s.Chunk {
		s.sinceGap = 0
		return 0, false
	}
	b := s.in[s.pos]
	s.pos++
	s.sinceGap++
	return b, true
}

// PutByte records b unless this attempt is scripted to be rejected.
func (s *ScriptTransport) PutByte(b byte) bool {
	s.attempts++
	if s.RejectEvery > 0 && s.attempts%s.RejectEvery == 0 {
		s.Rejected++
		return false
	}
	s.out.WriteByte(b)
	return true
}

// Output returns everything written so far.
func (s *ScriptTransport) Output() string {
	return s.out.String()
}

// TakeOutput returns everything written so far and clears it.
func (s *ScriptTransport) TakeOutput() string {
	out := s.out.String()
	s.out.Reset()
	return out
}

// Stepper is the subset of the engine API Drive needs.
type Stepper interface {
	Step() bool
}

// Drive steps e until all scripted input is consumed and the engine stops
// making progress. It gives up after limit calls and returns the number of
// calls made, including no-progress ones.
func Drive(e Stepper, s *ScriptTransport, limit int) int {
	calls := 0
	for calls < limit {
		calls++
		if !e.Step() && s.Pending() == 0 {
			break
		}
	}
	return calls
}
