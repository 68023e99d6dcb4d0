package scenario

import (
	"fmt"
	"strings"

	"github.com/roach88/laneracer/internal/race"
)

// Assertion checks one property of the final snapshot.
type Assertion struct {
	// Type selects the check: outcome, car_status, event_count,
	// obstacle_count or ticks.
	Type string `yaml:"type"`

	// State is the expected outcome state (outcome).
	State string `yaml:"state,omitempty"`

	// Winner is the expected winner (outcome). Zero means no winner.
	Winner int `yaml:"winner,omitempty"`

	// Car is the car ID (car_status).
	Car int `yaml:"car,omitempty"`

	// Status is the expected car status (car_status).
	Status string `yaml:"status,omitempty"`

	// Lane optionally checks the car's final lane (car_status).
	Lane *int `yaml:"lane,omitempty"`

	// Kind is the event kind to count (event_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number (event_count, obstacle_count, ticks).
	Count int `yaml:"count"`
}

// Assertion type constants.
const (
	AssertOutcome       = "outcome"
	AssertCarStatus     = "car_status"
	AssertEventCount    = "event_count"
	AssertObstacleCount = "obstacle_count"
	AssertTicks         = "ticks"
)

var eventKinds = []race.EventKind{
	race.EventStart, race.EventLaneChange, race.EventCollision,
	race.EventFinish, race.EventEnd, race.EventDegraded,
}

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Events   []race.Event
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Events) > 0 {
		fmt.Fprintf(&buf, "\nEvent log:\n")
		for _, ev := range e.Events {
			fmt.Fprintf(&buf, "  [%d] tick %d %s: %s\n", ev.Seq, ev.Tick, ev.Kind, ev.Message)
		}
	}
	return buf.String()
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertOutcome:
		if a.State != "running" && a.State != "finished" {
			return fmt.Errorf("assertions[%d]: state must be running or finished for outcome", index)
		}
	case AssertCarStatus:
		if a.Car < 1 {
			return fmt.Errorf("assertions[%d]: car is required for car_status", index)
		}
		if _, err := race.ParseStatus(a.Status); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	case AssertEventCount:
		known := false
		for _, k := range eventKinds {
			known = known || string(k) == a.Kind
		}
		if !known {
			return fmt.Errorf("assertions[%d]: unknown event kind %q", index, a.Kind)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertObstacleCount, AssertTicks:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// Evaluate checks every assertion against snap and returns the failure
// messages.
func Evaluate(snap *race.Snapshot, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(snap, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d: %s", i, err))
		}
	}
	return failures
}

func evaluate(snap *race.Snapshot, a Assertion) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Events: snap.Events}
	}

	switch a.Type {
	case AssertOutcome:
		want := race.Outcome{State: race.OutcomeRunning}
		if a.State == "finished" {
			want = race.Outcome{State: race.OutcomeFinished, Winner: race.CarID(a.Winner)}
		}
		if snap.Outcome != want {
			return fail(want.String(), snap.Outcome.String())
		}

	case AssertCarStatus:
		car, ok := snap.Car(race.CarID(a.Car))
		if !ok {
			return fail(fmt.Sprintf("car %d exists", a.Car), "no such car")
		}
		if car.Status.String() != a.Status {
			return fail(fmt.Sprintf("car %d %s", a.Car, a.Status), fmt.Sprintf("car %d %s", a.Car, car.Status))
		}
		if a.Lane != nil && car.Lane != *a.Lane {
			return fail(fmt.Sprintf("car %d in lane %d", a.Car, *a.Lane), fmt.Sprintf("lane %d", car.Lane))
		}

	case AssertEventCount:
		if got := snap.EventCount(race.EventKind(a.Kind)); got != a.Count {
			return fail(fmt.Sprintf("%d %s events", a.Count, a.Kind), fmt.Sprintf("%d", got))
		}

	case AssertObstacleCount:
		if got := len(snap.Obstacles); got != a.Count {
			return fail(fmt.Sprintf("%d obstacles", a.Count), fmt.Sprintf("%d", got))
		}

	case AssertTicks:
		if snap.Tick != uint64(a.Count) {
			return fail(fmt.Sprintf("%d ticks", a.Count), fmt.Sprintf("%d", snap.Tick))
		}
	}
	return nil
}
