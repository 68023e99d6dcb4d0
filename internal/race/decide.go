package race

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// decision is one car's settled answer from the barrier.
type decision struct {
	car    *Car
	action Action
	err    error
}

type decisionResult struct {
	action Action
	err    error
}

// gatherDecisions asks every active car's strategy for an action and waits
// until all of them settle. Failures never escape: they come back as Stay
// with err set so the tick can record a degraded event.
//
// Each strategy receives its own copy of world so a misbehaving strategy
// cannot leak writes to its neighbours. Once the barrier has started it is
// bounded by the decision timeout alone; cancelling ctx does not turn the
// answers of an in-flight tick into failures. With no timeout configured,
// ctx cancellation is the only bound and is passed through.
func (e *Engine) gatherDecisions(ctx context.Context, world *Snapshot) []decision {
	out := make([]decision, 0, len(e.cars))
	for _, car := range e.cars {
		if car.Active() {
			out = append(out, decision{car: car})
		}
	}

	if e.cfg.DecisionTimeout > 0 {
		ctx = context.WithoutCancel(ctx)
	}

	var g errgroup.Group
	if e.maxParallel > 0 {
		g.SetLimit(e.maxParallel)
	}
	for i := range out {
		car := out[i].car
		view := car.View()
		w := world.Clone()
		g.Go(func() error {
			action, err := e.decide(ctx, car, view, w)
			out[i].action = action
			if err != nil {
				out[i].err = &DecisionError{CarID: view.ID, Err: err}
			}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// decide runs one Decide call under the configured timeout, converting
// panics, deadline expiry and malformed actions into errors. A car whose
// previous call outlived its deadline is not asked again until that call
// returns, so a strategy never sees overlapping Decide calls.
func (e *Engine) decide(ctx context.Context, car *Car, view CarView, world *Snapshot) (Action, error) {
	if !car.deciding.CompareAndSwap(false, true) {
		return Stay(), ErrDecisionPending
	}

	if e.cfg.DecisionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.DecisionTimeout)
		defer cancel()
	}

	done := make(chan decisionResult, 1)
	go func() {
		res := callDecide(ctx, car.strategy, view, world)
		// Cleared before the send: once the barrier has an answer, the car
		// is free for the next tick.
		car.deciding.Store(false)
		done <- res
	}()

	var res decisionResult
	select {
	case res = <-done:
	case <-ctx.Done():
		// Prefer an answer that raced the deadline.
		select {
		case res = <-done:
		default:
			return Stay(), fmt.Errorf("no decision: %w", ctx.Err())
		}
	}

	if res.err != nil {
		return Stay(), res.err
	}
	switch res.action.Kind {
	case ActionStay, ActionChangeLane:
		return res.action, nil
	default:
		return Stay(), fmt.Errorf("unknown action kind %s", res.action.Kind)
	}
}

func callDecide(ctx context.Context, s Strategy, view CarView, world *Snapshot) (res decisionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = decisionResult{err: fmt.Errorf("strategy panicked: %v", r)}
		}
	}()
	action, err := s.Decide(ctx, view, world)
	return decisionResult{action: action, err: err}
}
