package transport

import "io"

// stdio joins a reader and a writer; closing it leaves both open.
type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error { return nil }

// Stdio wraps a reader/writer pair, typically os.Stdin and os.Stdout.
// The reader goroutine ends when in reaches EOF.
func Stdio(in io.Reader, out io.Writer, opts ...Option) *Stream {
	opts = append([]Option{WithName("stdio")}, opts...)
	return NewStream(stdio{Reader: in, Writer: out}, opts...)
}
