package transport

import "bytes"

// Memory is a synchronous in-process transport. Input is queued with Feed
// and replies are collected until Take. It is meant for a host that owns
// both ends, such as an interactive console; it is not safe for
// concurrent use.
type Memory struct {
	in  []byte
	pos int
	out bytes.Buffer
}

// Feed queues input bytes.
func (m *Memory) Feed(p []byte) {
	if m.pos == len(m.in) {
		m.in = m.in[:0]
		m.pos = 0
	}
	m.in = append(m.in, p...)
}

// Pending returns the number of queued input bytes.
func (m *Memory) Pending() int {
	return len(m.in) - m.pos
}

func (m *Memory) GetByte() (byte, bool) {
	if m.pos >= len(m.in) {
		return 0, false
	}
	b := m.in[m.pos]
	m.pos++
	return b, true
}

func (m *Memory) PutByte(b byte) bool {
	m.out.WriteByte(b)
	return true
}

// Take returns the reply bytes written since the last call.
func (m *Memory) Take() []byte {
	out := bytes.Clone(m.out.Bytes())
	m.out.Reset()
	return out
}
