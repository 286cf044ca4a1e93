package transport

import "sync"

// byteQueue is a bounded FIFO of received bytes shared by the reader
// goroutine and the goroutine stepping the engine.
//
// The consumer never blocks: TryDequeue returns immediately, and Wait
// gives a channel to select on together with a context. The producer
// blocks in Enqueue while the queue is full, so a slow engine pushes back
// on the underlying connection instead of growing memory.
type byteQueue struct {
	mu     sync.Mutex
	ring   []byte
	head   int
	n      int
	closed bool
	signal chan struct{} // data available (buffered, size 1)
	space  chan struct{} // room available (buffered, size 1)
}

func newByteQueue(limit int) *byteQueue {
	return &byteQueue{
		ring:   make([]byte, limit),
		signal: make(chan struct{}, 1),
		space:  make(chan struct{}, 1),
	}
}

// Enqueue appends p, waiting for room as needed. It returns false if the
// queue was closed before all of p fit.
func (q *byteQueue) Enqueue(p []byte) bool {
	for len(p) > 0 {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return false
		}
		n := min(len(q.ring)-q.n, len(p))
		for i := 0; i < n; i++ {
			q.ring[(q.head+q.n+i)%len(q.ring)] = p[i]
		}
		q.n += n
		p = p[n:]
		q.mu.Unlock()

		if n > 0 {
			notify(q.signal)
		}
		if len(p) > 0 {
			<-q.space
		}
	}
	return true
}

// TryDequeue removes the oldest byte without blocking.
func (q *byteQueue) TryDequeue() (byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.n == 0 {
		return 0, false
	}
	b := q.ring[q.head]
	q.head = (q.head + 1) % len(q.ring)
	q.n--

	if q.n == len(q.ring)-1 {
		notify(q.space)
	}
	return b, true
}

// Wait returns a channel that signals when bytes may be available.
func (q *byteQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of queued bytes.
func (q *byteQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// Close wakes a producer blocked on a full queue. Bytes already queued
// remain readable.
func (q *byteQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	notify(q.space)
}

// notify performs a non-blocking send; the size-1 buffer coalesces
// repeated signals.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
