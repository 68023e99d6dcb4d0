package race

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/laneracer/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEngine builds and initializes an engine with a manual clock and a
// silent logger.
func newTestEngine(t *testing.T, cfg Config, opts ...Option) (*Engine, *testutil.ManualClock) {
	t.Helper()
	clock := testutil.NewManualClock()
	base := []Option{WithClock(clock), WithLogger(discardLogger()), WithSeed(1)}
	e := New(append(base, opts...)...)
	require.NoError(t, e.Initialize(cfg))
	return e, clock
}

// tick advances the manual clock and the engine by dt.
func tick(t *testing.T, e *Engine, clock *testutil.ManualClock, dt time.Duration) {
	t.Helper()
	clock.Advance(dt)
	require.NoError(t, e.Tick(context.Background(), dt))
}

// quietConfig is a small track with no random spawns.
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.ObstacleSpawnRate = 0
	cfg.LaneChangeChance = 0
	return cfg
}

// allCars hands every car the same strategy.
func allCars(s Strategy) Option {
	return WithStrategyFactory(func(CarID, int) Strategy { return s })
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

// fixedRand returns the same draws forever.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) IntN(int) int     { return r.n }
