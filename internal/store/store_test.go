package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/laneracer/internal/race"
	"github.com/roach88/laneracer/internal/testutil"
)

func TestOpen_AppliesPragmas(t *testing.T) {
	s := createTestStore(t)

	require.NoError(t, s.verifyPragma("journal_mode", "wal"))
	require.NoError(t, s.verifyPragma("foreign_keys", "1"))
	require.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.WriteRace(context.Background(), createTestRecord("race-1", 1)))
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	rec, err := s2.ReadRace(context.Background(), "race-1")
	require.NoError(t, err)
	assert.Equal(t, "race-1", rec.ID)
}

func TestWriteReadRace_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	want := createTestRecord("race-1", 7)

	require.NoError(t, s.WriteRace(ctx, want))

	got, err := s.ReadRace(ctx, "race-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.Seq)
	want.Seq = got.Seq
	assert.True(t, want.RecordedAt.Equal(got.RecordedAt))
	want.RecordedAt = got.RecordedAt
	assert.Equal(t, want, got)
}

func TestWriteRace_NoWinner(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rec := createTestRecord("race-1", 1)
	rec.Outcome = race.Outcome{State: race.OutcomeFinished}
	rec.Events = nil

	require.NoError(t, s.WriteRace(ctx, rec))

	got, err := s.ReadRace(ctx, "race-1")
	require.NoError(t, err)
	assert.False(t, got.Outcome.HasWinner())
	assert.True(t, got.Outcome.Finished())
	assert.Empty(t, got.Events)
}

func TestWriteRace_DuplicateKeepsFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := createTestRecord("race-1", 1)
	second := createTestRecord("race-1", 2)
	second.Digest = "other"

	require.NoError(t, s.WriteRace(ctx, first))
	require.NoError(t, s.WriteRace(ctx, second))

	got, err := s.ReadRace(ctx, "race-1")
	require.NoError(t, err)
	assert.Equal(t, "d1g35t", got.Digest)
	assert.Len(t, got.Events, 2)
}

func TestWriteRace_EmptyID(t *testing.T) {
	s := createTestStore(t)
	err := s.WriteRace(context.Background(), createTestRecord("", 1))
	assert.Error(t, err)
}

func TestReadRace_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRace(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.LatestRace(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRaces_Ordered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	gen := testutil.NewFixedIDGenerator("race")

	var ids []string
	for seed := int64(1); seed <= 3; seed++ {
		id := gen.Generate()
		ids = append(ids, id)
		require.NoError(t, s.WriteRace(ctx, createTestRecord(id, seed)))
	}

	all, err := s.ListRaces(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, rec := range all {
		assert.Equal(t, ids[i], rec.ID)
		assert.Equal(t, int64(i+1), rec.Seed)
		assert.Nil(t, rec.Events, "listing does not load events")
	}

	two, err := s.ListRaces(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	latest, err := s.LatestRace(ctx)
	require.NoError(t, err)
	assert.Equal(t, "race-3", latest.ID)
	assert.Len(t, latest.Events, 2)
}

func TestListRaces_EmptyLedger(t *testing.T) {
	s := createTestStore(t)
	all, err := s.ListRaces(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestUUIDv7Generator(t *testing.T) {
	id := UUIDv7Generator{}.Generate()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, UUIDv7Generator{}.Generate())
}

func TestNewRecord(t *testing.T) {
	snap := &race.Snapshot{
		Tick:    9,
		Outcome: race.Outcome{State: race.OutcomeFinished, Winner: 2},
		Events:  []race.Event{{Seq: 1, Kind: race.EventStart}},
	}
	rec := NewRecord("r", 5, "stay", race.DefaultConfig(), snap, "abc", testutil.Epoch)

	assert.Equal(t, uint64(9), rec.Ticks)
	assert.Equal(t, race.CarID(2), rec.Outcome.Winner)
	assert.Equal(t, "abc", rec.Digest)
	assert.Len(t, rec.Events, 1)
}
