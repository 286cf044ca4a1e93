// Package transport adapts byte-oriented connections to engine.Transport.
//
// The engine polls for one byte at a time and must never block, while
// serial ports, sockets and pipes deliver data through blocking reads.
// Stream bridges the two: a reader goroutine moves incoming bytes into a
// bounded queue that GetByte drains without blocking, and PutByte buffers
// output until the host flushes it.
package transport

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
)

// DefaultQueueSize bounds the bytes buffered between the connection and
// the engine.
const DefaultQueueSize = 4096

// Option configures a Stream.
type Option func(*Stream)

// WithLogger sets the logger used for connection errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Stream) { s.log = l }
}

// WithQueueSize overrides DefaultQueueSize.
func WithQueueSize(n int) Option {
	return func(s *Stream) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithName labels the stream in log output.
func WithName(name string) Option {
	return func(s *Stream) { s.name = name }
}

// Stream is an engine.Transport over an io.ReadWriteCloser.
//
// GetByte and PutByte must be called from a single goroutine, the one
// stepping the engine. Ready, Done and Err are safe from any goroutine.
type Stream struct {
	rwc       io.ReadWriteCloser
	log       *slog.Logger
	name      string
	queueSize int

	in   *byteQueue
	w    *bufio.Writer
	werr error // sticky; output is dropped after the first failure

	done      chan struct{}
	closeOnce sync.Once

	mu   sync.Mutex
	rerr error
}

// NewStream starts reading from rwc.
func NewStream(rwc io.ReadWriteCloser, opts ...Option) *Stream {
	s := &Stream{
		rwc:       rwc,
		log:       slog.Default(),
		queueSize: DefaultQueueSize,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.in = newByteQueue(s.queueSize)
	s.w = bufio.NewWriter(rwc)

	go s.readLoop()
	return s
}

func (s *Stream) readLoop() {
	defer close(s.done)
	// Wake a host blocked on Ready so it notices Done.
	defer notify(s.in.signal)

	buf := make([]byte, 256)
	for {
		n, err := s.rwc.Read(buf)
		if n > 0 && !s.in.Enqueue(buf[:n]) {
			return
		}
		if err != nil {
			if !closedErr(err) {
				s.mu.Lock()
				s.rerr = err
				s.mu.Unlock()
				s.log.Debug("stream read ended", "stream", s.name, "error", err)
			}
			return
		}
	}
}

// GetByte returns the next received byte, or false if none is queued.
func (s *Stream) GetByte() (byte, bool) {
	return s.in.TryDequeue()
}

// PutByte buffers b for the next Flush. It never asks the engine to retry:
// once the connection fails, further output is discarded and the failure
// is reported by Err.
func (s *Stream) PutByte(b byte) bool {
	if s.werr != nil {
		return true
	}
	if err := s.w.WriteByte(b); err != nil {
		s.setWriteErr(err)
	}
	return true
}

// Flush sends buffered output.
func (s *Stream) Flush() error {
	if s.werr != nil {
		return s.werr
	}
	if err := s.w.Flush(); err != nil {
		s.setWriteErr(err)
	}
	return s.werr
}

func (s *Stream) setWriteErr(err error) {
	s.mu.Lock()
	s.werr = err
	s.mu.Unlock()
	s.log.Error("stream write failed", "stream", s.name, "error", err)
}

// Ready signals that input may be available or the stream has ended.
func (s *Stream) Ready() <-chan struct{} {
	return s.in.Wait()
}

// Done is closed once the connection stops delivering input. Bytes queued
// before that remain readable through GetByte.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Name identifies the stream in logs and journal sessions.
func (s *Stream) Name() string { return s.name }

// Buffered returns the number of received bytes not yet consumed.
func (s *Stream) Buffered() int {
	return s.in.Len()
}

// Err reports the first read or write failure. A clean end of input is
// not an error.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rerr != nil {
		return s.rerr
	}
	return s.werr
}

// Close stops the reader and closes the connection.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.in.Close()
		err = s.rwc.Close()
	})
	return err
}

// closedErr reports errors that mean the peer or Close ended the stream.
func closedErr(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, os.ErrClosed)
}
