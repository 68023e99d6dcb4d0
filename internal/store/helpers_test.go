package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/laneracer/internal/race"
	"github.com/roach88/laneracer/internal/testutil"
)

// createTestStore creates a ledger in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord returns a finished race with a winner and two events.
func createTestRecord(id string, seed int64) Record {
	cfg := race.DefaultConfig()
	cfg.Cars = []race.CarSpec{{Lane: 0, Speed: 1.5}, {Lane: 2}}
	return Record{
		ID:         id,
		Seed:       seed,
		Strategy:   "random",
		Config:     cfg,
		Ticks:      21,
		Outcome:    race.Outcome{State: race.OutcomeFinished, Winner: 1},
		Digest:     "d1g35t",
		RecordedAt: testutil.Epoch.Add(time.Duration(seed) * time.Second),
		Events: []race.Event{
			{Seq: 1, Kind: race.EventStart, Message: "Race started", Hint: race.HintInfo},
			{Seq: 2, Tick: 21, At: 10.5, Kind: race.EventFinish, Message: "Car 1 wins", Hint: race.HintSuccess},
		},
	}
}
