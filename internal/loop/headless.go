package loop

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roach88/laneracer/internal/race"
)

// DefaultMaxTicks bounds headless runs that set no limit.
const DefaultMaxTicks = 100_000

// VirtualClock is a race.Clock that moves only when a headless run ticks.
type VirtualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewVirtualClock returns a clock reading start.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{now: start}
}

// Now returns the virtual time.
func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *VirtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Headless ticks an engine back to back with no frame pacing.
type Headless struct {
	Engine Engine

	// Clock, when set, is advanced by Delta before every tick. Pass the same
	// clock given to the engine with race.WithClock.
	Clock *VirtualClock

	// Delta is the simulated time per tick. Zero uses race.DefaultTickInterval.
	Delta time.Duration

	// MaxTicks stops a race that never finishes. Zero uses DefaultMaxTicks.
	MaxTicks uint64

	// Sinks receive the initial snapshot and one snapshot per tick.
	Sinks []Sink
}

// Run ticks until the race finishes and returns the final snapshot. It
// returns ErrTickLimit, together with the last snapshot, when MaxTicks is
// reached first.
func (h *Headless) Run(ctx context.Context) (*race.Snapshot, error) {
	delta := h.Delta
	if delta <= 0 {
		delta = race.DefaultTickInterval
	}
	limit := h.MaxTicks
	if limit == 0 {
		limit = DefaultMaxTicks
	}

	snap := h.Engine.Snapshot()
	render(h.Sinks, snap)

	for n := uint64(0); !h.Engine.Finished(); n++ {
		if n >= limit {
			return snap, fmt.Errorf("%w (%d ticks)", ErrTickLimit, n)
		}
		if err := ctx.Err(); err != nil {
			return snap, err
		}
		if h.Clock != nil {
			h.Clock.Advance(delta)
		}
		if err := h.Engine.Tick(ctx, delta); err != nil {
			return snap, fmt.Errorf("tick %d: %w", n+1, err)
		}
		snap = h.Engine.Snapshot()
		render(h.Sinks, snap)
	}
	return snap, nil
}
