package loop

import "time"

// DefaultMaxCatchUp bounds the ticks a single frame may run.
const DefaultMaxCatchUp = 5

// Accumulator converts irregular frame deltas into whole fixed steps.
type Accumulator struct {
	step       time.Duration
	pending    time.Duration
	maxCatchUp int
	skipped    uint64
}

// NewAccumulator returns an accumulator for step-sized ticks. maxCatchUp <= 0
// selects DefaultMaxCatchUp.
func NewAccumulator(step time.Duration, maxCatchUp int) *Accumulator {
	if maxCatchUp <= 0 {
		maxCatchUp = DefaultMaxCatchUp
	}
	return &Accumulator{step: step, maxCatchUp: maxCatchUp}
}

// Add accumulates elapsed and returns how many steps are due. Time beyond
// maxCatchUp steps is discarded, keeping only the sub-step remainder.
func (a *Accumulator) Add(elapsed time.Duration) int {
	if elapsed > 0 {
		a.pending += elapsed
	}
	if a.step <= 0 {
		return 0
	}
	due := int(a.pending / a.step)
	if due > a.maxCatchUp {
		a.skipped += uint64(due - a.maxCatchUp)
		a.pending %= a.step
		return a.maxCatchUp
	}
	a.pending -= time.Duration(due) * a.step
	return due
}

// Step returns the fixed step size.
func (a *Accumulator) Step() time.Duration { return a.step }

// Pending returns the carried remainder, always less than one step after Add.
func (a *Accumulator) Pending() time.Duration { return a.pending }

// Skipped returns how many steps were dropped by the catch-up cap.
func (a *Accumulator) Skipped() uint64 { return a.skipped }

// Alpha returns how far the remainder is into the next step, in [0, 1).
// Renderers may use it to interpolate between snapshots.
func (a *Accumulator) Alpha() float64 {
	if a.step <= 0 {
		return 0
	}
	return float64(a.pending) / float64(a.step)
}
