package engine

// Transport is the byte-level link the engine reads requests from and
// writes responses to.
//
// GetByte must not block: it reports false when no byte is available yet.
// PutByte reports false when the byte was not accepted; the engine retries
// the same byte until it is.
type Transport interface {
	GetByte() (byte, bool)
	PutByte(b byte) bool
}
