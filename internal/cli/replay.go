package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/laneracer/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RaceID   string // optional - defaults to the latest race
}

// ReplayResult compares a stored race with its re-run.
type ReplayResult struct {
	RaceID        string `json:"race_id"`
	Seed          int64  `json:"seed"`
	Ticks         uint64 `json:"ticks"`
	ReplayTicks   uint64 `json:"replay_ticks"`
	Outcome       string `json:"outcome"`
	ReplayOutcome string `json:"replay_outcome"`
	Digest        string `json:"digest"`
	ReplayDigest  string `json:"replay_digest"`
	Deterministic bool   `json:"deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run a recorded race and verify determinism",
		Long: `Re-run a recorded race headless from its stored seed, strategy and
configuration, and compare the trace digest with the recorded one.

Exit codes:
  0 - Digests match
  1 - Digests differ (the race is not reproducible)
  2 - Command error (database not found, unknown race, etc.)

Examples:
  laneracer replay --db ./races.db
  laneracer replay --db ./races.db --race 01890a5d-ac96-774b-bcce-b302099a8057
  laneracer replay --db ./races.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RaceID, "race", "", "race ID to replay (default: latest)")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	out := formatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, out.Diag())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var rec store.Record
	if opts.RaceID != "" {
		rec, err = st.ReadRace(ctx, opts.RaceID)
	} else {
		rec, err = st.LatestRace(ctx)
	}
	if errors.Is(err, store.ErrNotFound) {
		return WrapExitError(ExitCommandError, "race not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read race", err)
	}

	// A tick limit equal to the recorded tick count reproduces unfinished
	// races frame for frame; finished races stop on their own.
	spec := raceSpec{
		Config:   rec.Config,
		Seed:     rec.Seed,
		Strategy: rec.Strategy,
		MaxTicks: max(rec.Ticks, 1),
	}
	logger.Debug("replaying race", "race_id", rec.ID, "seed", rec.Seed, "ticks", rec.Ticks)

	run, err := simulateHeadless(ctx, spec, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	result := ReplayResult{
		RaceID:        rec.ID,
		Seed:          rec.Seed,
		Ticks:         rec.Ticks,
		ReplayTicks:   run.Final.Tick,
		Outcome:       rec.Outcome.String(),
		ReplayOutcome: run.Final.Outcome.String(),
		Digest:        rec.Digest,
		ReplayDigest:  run.Digest,
		Deterministic: run.Digest == rec.Digest,
	}

	if err := out.Emit(result, func(w io.Writer) { printReplayResult(w, result) }); err != nil {
		return err
	}
	if !result.Deterministic {
		return NewExitError(ExitFailure, fmt.Sprintf("race %s is not reproducible: digest mismatch", rec.ID))
	}
	return nil
}

func printReplayResult(w io.Writer, r ReplayResult) {
	mark := "✓"
	if !r.Deterministic {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s (seed %d)\n", mark, r.RaceID, r.Seed)
	fmt.Fprintf(w, "  Recorded: %s after %d ticks, digest %s\n", r.Outcome, r.Ticks, r.Digest)
	fmt.Fprintf(w, "  Replayed: %s after %d ticks, digest %s\n", r.ReplayOutcome, r.ReplayTicks, r.ReplayDigest)
}
