package engine

// matchState is the 2-bit matching status of one command slot.
type matchState uint8

const (
	matchNone    matchState = 0
	matchPartial matchState = 1
	matchFull    matchState = 2
)

// partialFill sets every 2-bit slot of a byte to matchPartial.
const partialFill = 0x55

type phase uint8

const (
	phaseIdle phase = iota
	phaseMatch
	phasePayload
)

// arena is the caller's scratch buffer viewed through a phase tag.
//
// During name matching the buffer holds 4 match states per byte. Once a
// command is resolved the same bytes hold argument or reply payloads.
// beginMatch is only called when the prefix completes and beginPayload
// only when a resolved command needs the buffer; reset returns to idle.
// Using a view outside its phase is a programming error and panics.
type arena struct {
	buf   []byte
	phase phase
}

// beginMatch marks every command as a partial match and returns the
// match-state view.
func (a *arena) beginMatch() matchStates {
	for i := range a.buf {
		a.buf[i] = partialFill
	}
	a.phase = phaseMatch
	return matchStates{a: a}
}

// matches returns the match-state view of an arena already in the match
// phase.
func (a *arena) matches() matchStates {
	if a.phase != phaseMatch {
		panic("engine: match states used outside match phase")
	}
	return matchStates{a: a}
}

// beginPayload hands the buffer over to payload storage. Match states are
// invalid from here on.
func (a *arena) beginPayload() []byte {
	a.phase = phasePayload
	return a.buf
}

// payload returns the buffer of an arena already in the payload phase.
func (a *arena) payload() []byte {
	if a.phase != phasePayload {
		panic("engine: payload used outside payload phase")
	}
	return a.buf
}

func (a *arena) reset() {
	a.phase = phaseIdle
}

// matchStates packs one matchState per command, 4 per byte, lowest bits
// first.
type matchStates struct {
	a *arena
}

func (m matchStates) get(i int) matchState {
	s := m.a.buf[i>>2]
	s >>= uint(i&3) << 1
	return matchState(s & 0x03)
}

func (m matchStates) set(i int, st matchState) {
	n := i >> 2
	k := uint(i&3) << 1
	s := m.a.buf[n]
	s &^= 0x03 << k
	s |= byte(st&0x03) << k
	m.a.buf[n] = s
}
