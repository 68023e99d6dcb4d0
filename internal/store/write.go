package store

import (
	"context"
	"fmt"
	"time"
)

// WriteRace inserts rec and its events in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing the same race ID
// twice keeps the first record.
func (s *Store) WriteRace(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("write race: empty id")
	}
	configJSON, err := marshalConfig(rec.Config)
	if err != nil {
		return fmt.Errorf("write race: %w", err)
	}

	var winner any
	if rec.Outcome.HasWinner() {
		winner = int64(rec.Outcome.Winner)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write race: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO races
		(id, seed, strategy, config, ticks, outcome, winner, digest, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Seed,
		rec.Strategy,
		configJSON,
		int64(rec.Ticks),
		rec.Outcome.State.String(),
		winner,
		rec.Digest,
		rec.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write race: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tx.Commit()
	}

	for _, ev := range rec.Events {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO race_events (race_id, event_seq, tick, at, kind, message, hint)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			rec.ID,
			ev.Seq,
			int64(ev.Tick),
			ev.At,
			string(ev.Kind),
			ev.Message,
			string(ev.Hint),
		)
		if err != nil {
			return fmt.Errorf("write race event %d: %w", ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write race: commit: %w", err)
	}
	return nil
}
