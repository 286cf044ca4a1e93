package engine

// writeString sends s, retrying each byte until the transport accepts it.
// This is the one place the engine spins instead of yielding; responses
// are short and fire-and-forget.
func (e *Engine) writeString(s string) {
	for i := 0; i < len(s); i++ {
		for !e.io.PutByte(s[i]) {
		}
	}
}

func (e *Engine) writeBytes(b []byte) {
	for _, c := range b {
		for !e.io.PutByte(c) {
		}
	}
}
