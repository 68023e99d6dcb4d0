package race

import (
	"sync/atomic"
	"time"
)

// Clock supplies wall time for elapsed-time bookkeeping. Event timestamps
// are measured from the instant Initialize ran, not from the tick count, so
// they stay meaningful when tick rates vary.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// SeqClock is a monotonic logical counter used to order events.
//
// Thread-safety: SeqClock is safe for concurrent use, though the engine only
// advances it from inside Tick.
type SeqClock struct {
	seq atomic.Int64
}

// NewSeqClock creates a counter starting at 0.
func NewSeqClock() *SeqClock {
	return &SeqClock{}
}

// Next increments the counter and returns the new value.
func (c *SeqClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the counter without incrementing it.
func (c *SeqClock) Current() int64 {
	return c.seq.Load()
}
