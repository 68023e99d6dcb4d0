package race

import (
	"fmt"
	"sync/atomic"
)

// CarID identifies a car. IDs start at 1 and are never reused; 0 means none.
type CarID int

// Status is the car state machine: Active -> Crashed | Finished.
type Status uint8

const (
	StatusActive Status = iota
	StatusCrashed
	StatusFinished
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCrashed:
		return "crashed"
	case StatusFinished:
		return "finished"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	st, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseStatus converts a status name back to a Status.
func ParseStatus(name string) (Status, error) {
	switch name {
	case "active":
		return StatusActive, nil
	case "crashed":
		return StatusCrashed, nil
	case "finished":
		return StatusFinished, nil
	default:
		return 0, fmt.Errorf("unknown car status %q", name)
	}
}

var carSymbols = []string{"🚗", "🚙", "🚕", "🚓"}

// Car is a lane-bound racer. Only the engine mutates it, and only while it
// is Active; once Crashed or Finished its lane, position and speed are frozen.
type Car struct {
	id       CarID
	lane     int
	position float64
	speed    float64
	status   Status
	symbol   string
	strategy Strategy

	// deciding is set while a Decide call on strategy has not returned.
	deciding atomic.Bool
}

func newCar(id CarID, lane int, speed float64, strategy Strategy) *Car {
	return &Car{
		id:       id,
		lane:     lane,
		speed:    speed,
		status:   StatusActive,
		symbol:   carSymbols[int(id-1)%len(carSymbols)],
		strategy: strategy,
	}
}

// ID returns the car's identifier.
func (c *Car) ID() CarID { return c.id }

// Lane returns the current lane, 0-based.
func (c *Car) Lane() int { return c.lane }

// Position returns the distance travelled along the track.
func (c *Car) Position() float64 { return c.position }

// Speed returns distance per second.
func (c *Car) Speed() float64 { return c.speed }

// Status returns the car's state.
func (c *Car) Status() Status { return c.status }

// Active reports whether the car can still move.
func (c *Car) Active() bool { return c.status == StatusActive }

// Symbol returns the cosmetic glyph for the car.
func (c *Car) Symbol() string { return c.symbol }

// Strategy returns the strategy owned by the car.
func (c *Car) Strategy() Strategy { return c.strategy }

// View returns the strategy-facing projection of the car.
func (c *Car) View() CarView {
	return CarView{
		ID:       c.id,
		Lane:     c.lane,
		Position: c.position,
		Speed:    c.speed,
		Status:   c.status,
	}
}

// State returns the snapshot projection of the car.
func (c *Car) State() CarState {
	return CarState{
		ID:       c.id,
		Lane:     c.lane,
		Position: c.position,
		Speed:    c.speed,
		Status:   c.status,
		Symbol:   c.symbol,
	}
}

func (c *Car) mustBeActive(op string) {
	if c.status != StatusActive {
		violate(InvariantFrozenCar, c.id, "%s on %s car", op, c.status)
	}
}

// applyAction performs a lane change clamped to the track. It reports whether
// the lane actually changed.
func (c *Car) applyAction(a Action, track Track) bool {
	c.mustBeActive("apply action")
	if a.Kind != ActionChangeLane {
		return false
	}
	target := track.ClampLane(a.TargetLane)
	if target == c.lane {
		return false
	}
	c.lane = target
	return true
}

// advance moves the car forward and reports whether it crossed the finish.
func (c *Car) advance(seconds float64, track Track) bool {
	c.mustBeActive("advance")
	c.position += c.speed * seconds
	if c.position >= track.Length {
		c.position = track.Length
		c.status = StatusFinished
		return true
	}
	return false
}

// crash freezes the car. Speed is halved even though a crashed car never
// moves again, so observers see the reduced value.
func (c *Car) crash() {
	c.mustBeActive("crash")
	c.status = StatusCrashed
	c.speed *= 0.5
}
