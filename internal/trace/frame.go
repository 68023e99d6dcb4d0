package trace

import "github.com/roach88/laneracer/internal/race"

// Frame is the reproducible part of one snapshot.
type Frame struct {
	Tick          uint64               `json:"tick"`
	Outcome       race.Outcome         `json:"outcome"`
	Cars          []race.CarState      `json:"cars"`
	Obstacles     []race.ObstacleState `json:"obstacles"`
	Counts        race.Counts          `json:"counts"`
	Events        []FrameEvent         `json:"events"`
	EventsDropped uint64               `json:"events_dropped"`
}

// FrameEvent is an event without its wall-clock timestamp.
type FrameEvent struct {
	Seq     int64          `json:"seq"`
	Tick    uint64         `json:"tick"`
	Kind    race.EventKind `json:"kind"`
	Message string         `json:"message"`
}

// FrameOf projects snap, keeping only events with a sequence number greater
// than afterSeq.
func FrameOf(snap *race.Snapshot, afterSeq int64) Frame {
	f := Frame{
		Tick:          snap.Tick,
		Outcome:       snap.Outcome,
		Cars:          snap.Cars,
		Obstacles:     snap.Obstacles,
		Counts:        snap.Counts,
		Events:        []FrameEvent{},
		EventsDropped: snap.EventsDropped,
	}
	if f.Cars == nil {
		f.Cars = []race.CarState{}
	}
	if f.Obstacles == nil {
		f.Obstacles = []race.ObstacleState{}
	}
	for _, ev := range snap.Events {
		if ev.Seq <= afterSeq {
			continue
		}
		f.Events = append(f.Events, FrameEvent{
			Seq:     ev.Seq,
			Tick:    ev.Tick,
			Kind:    ev.Kind,
			Message: ev.Message,
		})
	}
	return f
}

// LastSeq returns the highest event sequence number in the frame, or prev
// when the frame carries no events.
func (f Frame) LastSeq(prev int64) int64 {
	for _, ev := range f.Events {
		prev = max(prev, ev.Seq)
	}
	return prev
}
