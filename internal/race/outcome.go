package race

import (
	"encoding/json"
	"fmt"
)

// OutcomeState is the race-wide state machine: Running -> Finished.
type OutcomeState uint8

const (
	OutcomeRunning OutcomeState = iota
	OutcomeFinished
)

// String returns the lowercase state name.
func (s OutcomeState) String() string {
	switch s {
	case OutcomeRunning:
		return "running"
	case OutcomeFinished:
		return "finished"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(s))
	}
}

// Outcome is the race result. Winner is 0 when the race ended without one.
type Outcome struct {
	State  OutcomeState
	Winner CarID
}

// Finished reports whether the outcome is terminal.
func (o Outcome) Finished() bool {
	return o.State == OutcomeFinished
}

// HasWinner reports whether a winner was recorded.
func (o Outcome) HasWinner() bool {
	return o.State == OutcomeFinished && o.Winner != 0
}

// String renders the outcome for logs and CLI output.
func (o Outcome) String() string {
	switch {
	case o.HasWinner():
		return fmt.Sprintf("finished(winner=%d)", o.Winner)
	case o.Finished():
		return "finished(no winner)"
	default:
		return "running"
	}
}

type outcomeJSON struct {
	State  string `json:"state"`
	Winner *CarID `json:"winner"`
}

// MarshalJSON encodes the winner as null when there is none.
func (o Outcome) MarshalJSON() ([]byte, error) {
	out := outcomeJSON{State: o.State.String()}
	if o.HasWinner() {
		w := o.Winner
		out.Winner = &w
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (o *Outcome) UnmarshalJSON(b []byte) error {
	var in outcomeJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	switch in.State {
	case "running":
		o.State = OutcomeRunning
	case "finished":
		o.State = OutcomeFinished
	default:
		return fmt.Errorf("unknown outcome state %q", in.State)
	}
	o.Winner = 0
	if in.Winner != nil {
		o.Winner = *in.Winner
	}
	return nil
}

// EvaluateOutcome returns the outcome after a tick.
//
// A Finished outcome is returned unchanged. Otherwise the race finishes with
// the lowest-ID finished car as winner as soon as any car has finished; ties
// inside a single tick are broken by ascending car ID. If no car finished and
// every car is crashed, the race finishes without a winner.
func EvaluateOutcome(current Outcome, cars []CarState) Outcome {
	if current.Finished() {
		return current
	}

	var winner CarID
	crashed := 0
	for _, car := range cars {
		switch car.Status {
		case StatusFinished:
			if winner == 0 || car.ID < winner {
				winner = car.ID
			}
		case StatusCrashed:
			crashed++
		}
	}

	if winner != 0 {
		return Outcome{State: OutcomeFinished, Winner: winner}
	}
	if len(cars) > 0 && crashed == len(cars) {
		return Outcome{State: OutcomeFinished}
	}
	return current
}
