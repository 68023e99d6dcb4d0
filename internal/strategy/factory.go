package strategy

import (
	"errors"
	"fmt"

	"github.com/roach88/laneracer/internal/race"
)

// Strategy kinds selectable from configuration.
const (
	KindRandom = "random"
	KindStay   = "stay"
)

// ErrUnknownKind is returned for a strategy kind Factory does not know.
var ErrUnknownKind = errors.New("unknown strategy kind")

// Kinds lists the selectable strategy kinds.
func Kinds() []string {
	return []string{KindRandom, KindStay}
}

// Factory returns a race.StrategyFactory for kind. Random strategies draw
// from race.CarRand(seed, id) and switch lanes with probability chance.
// An empty kind selects random.
func Factory(kind string, chance float64, seed int64) (race.StrategyFactory, error) {
	switch kind {
	case KindRandom, "":
		return func(id race.CarID, _ int) race.Strategy {
			return NewRandom(chance, race.CarRand(seed, id))
		}, nil
	case KindStay:
		return func(race.CarID, int) race.Strategy {
			return race.StayStrategy{}
		}, nil
	default:
		return nil, fmt.Errorf("%w %q (want one of %v)", ErrUnknownKind, kind, Kinds())
	}
}

// Scripted builds scripts per car from parsed steps. Cars without an entry
// fall back to fallback, or to stay when fallback is nil.
func Scripted(steps map[race.CarID][]Step, fallback race.StrategyFactory) race.StrategyFactory {
	return func(id race.CarID, lane int) race.Strategy {
		if s, ok := steps[id]; ok {
			return NewScript(s...)
		}
		if fallback != nil {
			return fallback(id, lane)
		}
		return race.StayStrategy{}
	}
}
