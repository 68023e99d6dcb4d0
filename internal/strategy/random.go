// Package strategy provides the decision strategies that ship with laneracer.
//
// Every strategy here satisfies race.Strategy. Stateful strategies are built
// once per car by a race.StrategyFactory and are never shared.
package strategy

import (
	"context"

	"github.com/roach88/laneracer/internal/race"
)

// Random changes to an adjacent lane with a fixed probability per tick.
//
// Each Random owns its source; build it with race.CarRand so that the same
// seed replays the same decisions no matter how the barrier schedules cars.
type Random struct {
	chance float64
	rng    race.Rand
}

// NewRandom returns a strategy that switches lanes with probability chance.
func NewRandom(chance float64, rng race.Rand) *Random {
	return &Random{chance: chance, rng: rng}
}

// Decide rolls once for a lane change and once for the direction. A target
// off the track means stay.
func (r *Random) Decide(_ context.Context, car race.CarView, world *race.Snapshot) (race.Action, error) {
	if r.rng.Float64() >= r.chance {
		return race.Stay(), nil
	}
	target := car.Lane - 1
	if r.rng.IntN(2) == 1 {
		target = car.Lane + 1
	}
	if world == nil || !world.Track.HasLane(target) {
		return race.Stay(), nil
	}
	return race.ChangeLane(target), nil
}
