package host

import "sync/atomic"

// Clock is the logical clock that orders journal records.
//
// Sessions and exchanges are stamped with strictly increasing values, so a
// trace reads back in completion order without relying on wall time. One
// Clock is shared by every session a host serves; it is safe for
// concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at start. A host reopening an
// existing journal resumes after its last recorded seq.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
