package loop

import (
	"context"
	"errors"
	"time"

	"github.com/roach88/laneracer/internal/race"
)

// ErrTickLimit is returned when a run stops at its tick limit before the race
// finished.
var ErrTickLimit = errors.New("tick limit reached before race finished")

// Engine is the part of *race.Engine the loops drive.
type Engine interface {
	Tick(ctx context.Context, dt time.Duration) error
	Snapshot() *race.Snapshot
	Finished() bool
}

// Sink receives every rendered snapshot. Render is called from the loop
// goroutine and must not block for long; the snapshot is the sink's own copy.
type Sink interface {
	Render(snap *race.Snapshot)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(snap *race.Snapshot)

// Render calls f.
func (f SinkFunc) Render(snap *race.Snapshot) { f(snap) }

func render(sinks []Sink, snap *race.Snapshot) {
	for _, s := range sinks {
		s.Render(snap.Clone())
	}
}
