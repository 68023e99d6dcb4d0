package telemetry

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/laneracer/internal/race"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHub(opts ...HubOption) *Hub {
	return NewHub(append([]HubOption{WithHubLogger(discardLogger())}, opts...)...)
}

func testSnapshot(tick uint64) *race.Snapshot {
	return &race.Snapshot{
		Tick:    tick,
		Track:   race.Track{Length: 10, Lanes: 2},
		Outcome: race.Outcome{State: race.OutcomeRunning},
		Cars: []race.CarState{
			{ID: 1, Lane: 0, Position: float64(tick), Speed: 1, Status: race.StatusActive, Symbol: "A"},
			{ID: 2, Lane: 1, Position: 0.5, Speed: 0.25, Status: race.StatusCrashed, Symbol: "B"},
		},
		Counts: race.Counts{Active: 1, Crashed: 1},
		Events: []race.Event{
			{Seq: 1, Tick: 0, Kind: race.EventStart, Message: "start", Hint: race.HintInfo},
			{Seq: 2, Tick: 1, Kind: race.EventCollision, Message: "car 2 crashed", Hint: race.HintDanger},
			{Seq: 3, Tick: 1, Kind: race.EventLaneChange, Message: "car 1 moved", Hint: race.HintInfo},
		},
		EventsDropped: 4,
	}
}

var testClient = &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}

// getJSON fetches url, decodes the body into out and returns the status.
func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := testClient.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}
