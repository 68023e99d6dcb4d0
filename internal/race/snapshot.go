package race

import (
	"slices"
	"time"
)

// CarState is the read-only projection of a car.
type CarState struct {
	ID       CarID   `json:"id"`
	Lane     int     `json:"lane"`
	Position float64 `json:"position"`
	Speed    float64 `json:"speed"`
	Status   Status  `json:"status"`
	Symbol   string  `json:"symbol"`
}

// ObstacleState is the read-only projection of an obstacle.
type ObstacleState struct {
	ID       ObstacleID   `json:"id"`
	Lane     int          `json:"lane"`
	Position float64      `json:"position"`
	Kind     ObstacleKind `json:"kind"`
	Speed    float64      `json:"speed"`
	Symbol   string       `json:"symbol"`
}

// Counts tallies cars by status.
type Counts struct {
	Active   int `json:"active"`
	Crashed  int `json:"crashed"`
	Finished int `json:"finished"`
}

// Snapshot is a fully formed view of the simulation at a tick boundary.
// A published Snapshot is never modified; Engine.Snapshot hands out copies.
type Snapshot struct {
	Tick          uint64          `json:"tick"`
	Track         Track           `json:"track"`
	Outcome       Outcome         `json:"outcome"`
	Cars          []CarState      `json:"cars"`
	Obstacles     []ObstacleState `json:"obstacles"`
	Counts        Counts          `json:"counts"`
	Progress      float64         `json:"progress"`
	Elapsed       time.Duration   `json:"elapsed"`
	Events        []Event         `json:"events"`
	EventsDropped uint64          `json:"events_dropped"`
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Cars = slices.Clone(s.Cars)
	c.Obstacles = slices.Clone(s.Obstacles)
	c.Events = slices.Clone(s.Events)
	return &c
}

// Car returns the state of car id.
func (s *Snapshot) Car(id CarID) (CarState, bool) {
	for _, c := range s.Cars {
		if c.ID == id {
			return c, true
		}
	}
	return CarState{}, false
}

// OccupiedLanes returns lanes holding at least one active car.
func (s *Snapshot) OccupiedLanes() []int {
	return s.occupancy().Members()
}

// AvailableLanes returns lanes without any active car.
func (s *Snapshot) AvailableLanes() []int {
	return s.occupancy().Complement()
}

func (s *Snapshot) occupancy() LaneSet {
	set := NewLaneSet(s.Track.Lanes)
	for _, c := range s.Cars {
		if c.Status == StatusActive {
			set.Add(c.Lane)
		}
	}
	return set
}

// EventCount returns how many retained events have kind.
func (s *Snapshot) EventCount(kind EventKind) int {
	n := 0
	for _, ev := range s.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func countStatuses(cars []CarState) Counts {
	var c Counts
	for _, car := range cars {
		switch car.Status {
		case StatusActive:
			c.Active++
		case StatusCrashed:
			c.Crashed++
		case StatusFinished:
			c.Finished++
		}
	}
	return c
}

func progress(cars []CarState, track Track) float64 {
	best := 0.0
	for _, car := range cars {
		if car.Position > best {
			best = car.Position
		}
	}
	return best / track.Length
}
