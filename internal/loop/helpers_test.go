package loop

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/laneracer/internal/race"
	"github.com/roach88/laneracer/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// collector records every rendered snapshot.
type collector struct {
	mu    sync.Mutex
	snaps []*race.Snapshot
}

func (c *collector) Render(snap *race.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps = append(c.snaps, snap)
}

func (c *collector) ticks() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]uint64, len(c.snaps))
	for i, s := range c.snaps {
		out[i] = s.Tick
	}
	return out
}

// slowRace is one car that needs ten one-second ticks to finish.
func slowRace() race.Config {
	cfg := race.DefaultConfig()
	cfg.ObstacleSpawnRate = 0
	cfg.TrackLength = 10
	cfg.TickInterval = time.Second
	cfg.Cars = []race.CarSpec{{Lane: 0, Speed: 1}}
	return cfg
}

func newEngine(t *testing.T, cfg race.Config, clock race.Clock) *race.Engine {
	t.Helper()
	if clock == nil {
		clock = testutil.NewManualClock()
	}
	e := race.New(race.WithClock(clock), race.WithLogger(discardLogger()), race.WithSeed(1))
	require.NoError(t, e.Initialize(cfg))
	return e
}
