package race

// EventKind classifies a log entry.
type EventKind string

const (
	EventStart      EventKind = "start"
	EventLaneChange EventKind = "lane_change"
	EventCollision  EventKind = "collision"
	EventFinish     EventKind = "finish"
	EventEnd        EventKind = "end"
	EventDegraded   EventKind = "degraded"
)

// Hint tells a renderer how to present an event. It has no behavioural
// meaning.
type Hint string

const (
	HintInfo    Hint = "info"
	HintSuccess Hint = "success"
	HintWarning Hint = "warning"
	HintDanger  Hint = "danger"
)

// Event is an immutable log record.
type Event struct {
	Seq     int64     `json:"seq"`
	At      float64   `json:"at"`
	Tick    uint64    `json:"tick"`
	Kind    EventKind `json:"kind"`
	Message string    `json:"message"`
	Hint    Hint      `json:"hint"`
}

// EventLog is a bounded append-only ring. When full, the oldest entry is
// evicted before a new one is stored.
//
// EventLog is not safe for concurrent use; the engine appends from Tick and
// readers receive copies through snapshots.
type EventLog struct {
	buf     []Event
	start   int
	size    int
	dropped uint64
}

// NewEventLog creates a log holding at most capacity events.
// Capacity below 1 is treated as 1.
func NewEventLog(capacity int) *EventLog {
	if capacity < 1 {
		capacity = 1
	}
	return &EventLog{buf: make([]Event, capacity)}
}

// Append stores ev, evicting the oldest entry if the log is full.
func (l *EventLog) Append(ev Event) {
	if l.size == len(l.buf) {
		l.buf[l.start] = ev
		l.start = (l.start + 1) % len(l.buf)
		l.dropped++
		return
	}
	l.buf[(l.start+l.size)%len(l.buf)] = ev
	l.size++
}

// Events returns a copy of the retained events, oldest first.
func (l *EventLog) Events() []Event {
	out := make([]Event, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = l.buf[(l.start+i)%len(l.buf)]
	}
	return out
}

// Len returns the number of retained events.
func (l *EventLog) Len() int { return l.size }

// Cap returns the maximum number of retained events.
func (l *EventLog) Cap() int { return len(l.buf) }

// Dropped returns how many events have been evicted.
func (l *EventLog) Dropped() uint64 { return l.dropped }
