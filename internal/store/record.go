package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/laneracer/internal/race"
	"github.com/roach88/laneracer/internal/trace"
)

// Record is one finished race in the ledger.
type Record struct {
	ID         string       `json:"id"`
	Seq        int64        `json:"seq"`
	Seed       int64        `json:"seed"`
	Strategy   string       `json:"strategy"`
	Config     race.Config  `json:"config"`
	Ticks      uint64       `json:"ticks"`
	Outcome    race.Outcome `json:"outcome"`
	Digest     string       `json:"digest"`
	RecordedAt time.Time    `json:"recorded_at"`
	Events     []race.Event `json:"events,omitempty"`
}

// NewRecord builds a record from the final snapshot of a race.
func NewRecord(id string, seed int64, strategy string, cfg race.Config, final *race.Snapshot, digest string, at time.Time) Record {
	return Record{
		ID:         id,
		Seed:       seed,
		Strategy:   strategy,
		Config:     cfg,
		Ticks:      final.Tick,
		Outcome:    final.Outcome,
		Digest:     digest,
		RecordedAt: at.UTC(),
		Events:     final.Events,
	}
}

// marshalConfig stores the configuration as canonical JSON so identical
// configurations are byte-identical in the ledger.
func marshalConfig(cfg race.Config) (string, error) {
	data, err := trace.MarshalCanonical(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

func unmarshalConfig(data string) (race.Config, error) {
	var cfg race.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return race.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func parseOutcome(state string, winner *int64) (race.Outcome, error) {
	var o race.Outcome
	switch state {
	case "running":
		o.State = race.OutcomeRunning
	case "finished":
		o.State = race.OutcomeFinished
	default:
		return o, fmt.Errorf("unknown outcome %q", state)
	}
	if winner != nil {
		o.Winner = race.CarID(*winner)
	}
	return o, nil
}
