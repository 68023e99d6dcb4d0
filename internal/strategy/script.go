package strategy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/roach88/laneracer/internal/race"
)

// ErrScriptedFailure is returned by the "fail" step.
var ErrScriptedFailure = errors.New("scripted failure")

// StepKind is one scripted instruction.
type StepKind uint8

const (
	StepStay StepKind = iota
	StepLeft
	StepRight
	StepLane
	StepFail
)

// Step is a parsed script instruction. Lane is only used by StepLane.
type Step struct {
	Kind StepKind
	Lane int
}

// String returns the textual form accepted by ParseStep.
func (s Step) String() string {
	switch s.Kind {
	case StepLeft:
		return "left"
	case StepRight:
		return "right"
	case StepLane:
		return "lane:" + strconv.Itoa(s.Lane)
	case StepFail:
		return "fail"
	default:
		return "stay"
	}
}

// ParseStep parses "stay", "left", "right", "lane:N" or "fail".
func ParseStep(text string) (Step, error) {
	switch text {
	case "stay":
		return Step{Kind: StepStay}, nil
	case "left":
		return Step{Kind: StepLeft}, nil
	case "right":
		return Step{Kind: StepRight}, nil
	case "fail":
		return Step{Kind: StepFail}, nil
	}
	if rest, ok := strings.CutPrefix(text, "lane:"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil {
			return Step{}, fmt.Errorf("invalid lane in step %q: %w", text, err)
		}
		return Step{Kind: StepLane, Lane: n}, nil
	}
	return Step{}, fmt.Errorf("unknown step %q", text)
}

// ParseSteps parses every entry, reporting the first bad one by index.
func ParseSteps(texts []string) ([]Step, error) {
	steps := make([]Step, len(texts))
	for i, text := range texts {
		step, err := ParseStep(text)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		steps[i] = step
	}
	return steps, nil
}

// Script plays back a fixed list of steps, one per Decide call. After the
// last step it keeps repeating it; an empty script always stays.
type Script struct {
	mu    sync.Mutex
	steps []Step
	next  int
}

// NewScript returns a script over steps.
func NewScript(steps ...Step) *Script {
	return &Script{steps: steps}
}

// Decide returns the action for the current step and moves on.
func (s *Script) Decide(_ context.Context, car race.CarView, _ *race.Snapshot) (race.Action, error) {
	step := s.advance()
	switch step.Kind {
	case StepLeft:
		return race.ChangeLane(car.Lane - 1), nil
	case StepRight:
		return race.ChangeLane(car.Lane + 1), nil
	case StepLane:
		return race.ChangeLane(step.Lane), nil
	case StepFail:
		return race.Stay(), ErrScriptedFailure
	default:
		return race.Stay(), nil
	}
}

func (s *Script) advance() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.steps) == 0 {
		return Step{Kind: StepStay}
	}
	step := s.steps[min(s.next, len(s.steps)-1)]
	if s.next < len(s.steps) {
		s.next++
	}
	return step
}
