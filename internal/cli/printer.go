package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/roach88/laneracer/internal/race"
)

// eventPrinter is a loop.Sink that prints each event once as it appears.
type eventPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	lastSeq int64
}

func newEventPrinter(w io.Writer) *eventPrinter {
	return &eventPrinter{w: w}
}

func (p *eventPrinter) Render(snap *race.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ev := range snap.Events {
		if ev.Seq <= p.lastSeq {
			continue
		}
		p.lastSeq = ev.Seq
		fmt.Fprintf(p.w, "[tick %3d] %-11s %s\n", ev.Tick, ev.Kind, ev.Message)
	}
}

// describeOutcome renders an outcome for text output.
func describeOutcome(o race.Outcome, ticks uint64) string {
	switch {
	case o.HasWinner():
		return fmt.Sprintf("car %d wins after %d ticks", o.Winner, ticks)
	case o.Finished():
		return fmt.Sprintf("all cars crashed after %d ticks, no winner", ticks)
	default:
		return fmt.Sprintf("still running after %d ticks", ticks)
	}
}

// winnerOf returns the winner ID, or nil when there is none.
func winnerOf(o race.Outcome) *int {
	if !o.HasWinner() {
		return nil
	}
	w := int(o.Winner)
	return &w
}
