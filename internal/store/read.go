package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/laneracer/internal/race"
)

const raceColumns = `seq, id, seed, strategy, config, ticks, outcome, winner, digest, recorded_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec        Record
		configJSON string
		ticks      int64
		outcome    string
		winner     sql.NullInt64
		recordedAt string
	)
	if err := row.Scan(&rec.Seq, &rec.ID, &rec.Seed, &rec.Strategy, &configJSON, &ticks, &outcome, &winner, &rec.Digest, &recordedAt); err != nil {
		return Record{}, err
	}

	cfg, err := unmarshalConfig(configJSON)
	if err != nil {
		return Record{}, fmt.Errorf("race %s: %w", rec.ID, err)
	}
	rec.Config = cfg
	rec.Ticks = uint64(ticks)

	var w *int64
	if winner.Valid {
		w = &winner.Int64
	}
	if rec.Outcome, err = parseOutcome(outcome, w); err != nil {
		return Record{}, fmt.Errorf("race %s: %w", rec.ID, err)
	}
	if rec.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt); err != nil {
		return Record{}, fmt.Errorf("race %s: recorded_at: %w", rec.ID, err)
	}
	return rec, nil
}

// ReadRace returns the race with id, including its events.
// Returns ErrNotFound if the ledger has no such race.
func (s *Store) ReadRace(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+raceColumns+` FROM races WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("read race: %w", err)
	}

	if rec.Events, err = s.readEvents(ctx, id); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// LatestRace returns the most recently written race, with events.
// Returns ErrNotFound on an empty ledger.
func (s *Store) LatestRace(ctx context.Context) (Record, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM races ORDER BY seq DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: ledger is empty", ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("latest race: %w", err)
	}
	return s.ReadRace(ctx, id)
}

// ListRaces returns up to limit races in ledger order, without events.
// A limit <= 0 returns every race. Returns an empty slice, not nil, when the
// ledger is empty.
func (s *Store) ListRaces(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT ` + raceColumns + ` FROM races ORDER BY seq ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query races: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan race: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate races: %w", err)
	}
	return records, nil
}

func (s *Store) readEvents(ctx context.Context, id string) ([]race.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_seq, tick, at, kind, message, hint
		FROM race_events
		WHERE race_id = ?
		ORDER BY event_seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query race events: %w", err)
	}
	defer rows.Close()

	events := []race.Event{}
	for rows.Next() {
		var (
			ev         race.Event
			tick       int64
			kind, hint string
		)
		if err := rows.Scan(&ev.Seq, &tick, &ev.At, &kind, &ev.Message, &hint); err != nil {
			return nil, fmt.Errorf("scan race event: %w", err)
		}
		ev.Tick = uint64(tick)
		ev.Kind = race.EventKind(kind)
		ev.Hint = race.Hint(hint)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate race events: %w", err)
	}
	return events, nil
}
