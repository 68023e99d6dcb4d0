package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/laneracer/internal/testutil"
)

// execute runs cmd with args and returns stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// runCmd returns a run command that issues race-1, race-2, ... as IDs.
func runCmd(format string) *cobra.Command {
	return newRunCommand(&RunOptions{
		RootOptions: &RootOptions{Format: format},
		IDs:         testutil.NewFixedIDGenerator("race"),
	})
}

// decodeData unmarshals the data field of a JSON CLI response.
func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// sprintRace finishes on tick 1: car 1 has speed 5 on a track of length 5.
const sprintRace = `
strategy: stay
race:
  track_length: 5
  lane_count: 2
  obstacle_spawn_rate: 0
  tick_interval: 1ms
  render_fps: 500
  cars:
    - {lane: 0, speed: 5}
    - {lane: 1, speed: 1}
`

// busyRace runs long enough to exercise random strategies and spawning.
const busyRace = `
strategy: random
race:
  track_length: 30
  lane_count: 4
  obstacle_spawn_rate: 0.4
  lane_change_chance: 0.3
  moving_obstacle_chance: 0.5
  tick_interval: 1ms
  render_fps: 1000
  cars:
    - {lane: 0, speed: 0.6}
    - {lane: 1, speed: 0.8}
    - {lane: 2, speed: 0.7}
    - {lane: 3, speed: 0.9}
`
