package race

import (
	"context"
	"fmt"
)

// ActionKind selects what a car does laterally this tick.
type ActionKind uint8

const (
	// ActionStay keeps the current lane.
	ActionStay ActionKind = iota
	// ActionChangeLane moves to Action.TargetLane (clamped to the track).
	ActionChangeLane
)

// String returns the wire name of the kind.
func (k ActionKind) String() string {
	switch k {
	case ActionStay:
		return "stay"
	case ActionChangeLane:
		return "change_lane"
	default:
		return fmt.Sprintf("action(%d)", uint8(k))
	}
}

// Action is a decision result for exactly one car and one tick.
type Action struct {
	Kind       ActionKind
	TargetLane int
}

// Stay returns the no-op action.
func Stay() Action {
	return Action{Kind: ActionStay}
}

// ChangeLane returns an action targeting lane.
func ChangeLane(lane int) Action {
	return Action{Kind: ActionChangeLane, TargetLane: lane}
}

// String renders the action for logs.
func (a Action) String() string {
	if a.Kind == ActionChangeLane {
		return fmt.Sprintf("change_lane(%d)", a.TargetLane)
	}
	return a.Kind.String()
}

// CarView is the calling car's public state as seen by its strategy.
type CarView struct {
	ID       CarID
	Lane     int
	Position float64
	Speed    float64
	Status   Status
}

// Strategy chooses a car's lateral movement once per tick.
//
// Decide is always called on its own goroutine at the decision barrier, even
// for strategies that answer immediately, so variants that block on I/O need
// no engine changes. ctx carries the decision deadline; slow strategies
// should honour it. Calls on one instance never overlap: a call abandoned
// at its deadline keeps the car at Stay, with a degraded event, on every
// later tick until it returns.
//
// Implementations must treat car and world as read-only and must not touch
// engine state. Retries, if any, belong inside the strategy.
type Strategy interface {
	Decide(ctx context.Context, car CarView, world *Snapshot) (Action, error)
}

// StrategyFunc adapts an ordinary function to Strategy.
type StrategyFunc func(ctx context.Context, car CarView, world *Snapshot) (Action, error)

// Decide calls f.
func (f StrategyFunc) Decide(ctx context.Context, car CarView, world *Snapshot) (Action, error) {
	return f(ctx, car, world)
}

// StayStrategy always keeps its lane.
type StayStrategy struct{}

// Decide returns Stay.
func (StayStrategy) Decide(context.Context, CarView, *Snapshot) (Action, error) {
	return Stay(), nil
}

// StrategyFactory builds the strategy instance exclusively owned by one car.
// It is called once per car during Initialize, in ascending ID order.
type StrategyFactory func(id CarID, lane int) Strategy
