package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/laneracer/internal/config"
	"github.com/roach88/laneracer/internal/loop"
	"github.com/roach88/laneracer/internal/race"
	"github.com/roach88/laneracer/internal/store"
	"github.com/roach88/laneracer/internal/telemetry"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath string
	Seed       int64
	Headless   bool
	Database   string
	Listen     string
	MaxTicks   uint64

	// IDs overrides the race ID generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	IDs store.IDGenerator
}

// RunResult is the summary printed after a race.
type RunResult struct {
	RaceID      string      `json:"race_id,omitempty"`
	Seed        int64       `json:"seed"`
	Strategy    string      `json:"strategy"`
	Ticks       uint64      `json:"ticks"`
	State       string      `json:"state"`
	Winner      *int        `json:"winner"`
	Counts      race.Counts `json:"counts"`
	Digest      string      `json:"digest"`
	TickLimit   bool        `json:"tick_limit,omitempty"`
	Interrupted bool        `json:"interrupted,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a race",
		Long: `Run a race until a car wins, every car crashes, or the tick limit is hit.

By default the race runs in real time: one tick every tick_interval, with
events printed as they happen. --headless runs ticks back to back on a
virtual clock. Both modes produce the same trace digest for the same seed
and configuration.

With --db the finished race is written to the SQLite ledger. With --listen
snapshots are served over HTTP and websocket while the race runs.

Examples:
  laneracer run
  laneracer run --config race.yaml --seed 42
  laneracer run --headless --seed 7 --db ./races.db --format json
  laneracer run --listen 127.0.0.1:8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRace(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "race configuration file (.yaml, .yml or .cue)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (default: from config, else time-based)")
	cmd.Flags().BoolVar(&opts.Headless, "headless", false, "run ticks back to back without pacing")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the race in this SQLite ledger")
	cmd.Flags().StringVar(&opts.Listen, "listen", "", "serve telemetry on this address")
	cmd.Flags().Uint64Var(&opts.MaxTicks, "max-ticks", 0, "stop after this many ticks (default: from config, else unlimited)")

	return cmd
}

func runRace(opts *RunOptions, cmd *cobra.Command) error {
	out := formatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, out.Diag())

	file := config.DefaultFile()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return configExitError(err)
		}
		file = *loaded
	}

	spec := raceSpec{
		Config:   file.RaceConfig(),
		Strategy: file.Strategy,
		MaxTicks: file.MaxTicks,
	}
	switch {
	case cmd.Flags().Changed("seed"):
		spec.Seed = opts.Seed
	case file.Seed != nil:
		spec.Seed = *file.Seed
	default:
		spec.Seed = time.Now().UnixNano()
	}
	if cmd.Flags().Changed("max-ticks") {
		spec.MaxTicks = opts.MaxTicks
	}
	if opts.Headless && spec.MaxTicks == 0 {
		spec.MaxTicks = loop.DefaultMaxTicks
	}

	// Open the ledger up front so a bad path fails before the race.
	var ledger *store.Store
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		ledger = st
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sinks []loop.Sink
	if !out.JSON() {
		sinks = append(sinks, newEventPrinter(out.Writer))
	}

	var (
		run    *raceRun
		server *telemetry.Server
	)
	if opts.Listen != "" {
		hub := telemetry.NewHub(telemetry.WithHubLogger(logger))
		srv, err := telemetry.Listen(opts.Listen, hub, logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start telemetry", err)
		}
		server = srv
		sinks = append(sinks, hub)
	}

	logger.Info("race starting",
		"seed", spec.Seed,
		"strategy", spec.Strategy,
		"headless", opts.Headless,
		"max_ticks", spec.MaxTicks,
	)

	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServe := context.WithCancel(gctx)
	defer stopServe()
	if server != nil {
		g.Go(func() error {
			return server.Serve(serveCtx)
		})
	}
	g.Go(func() error {
		defer stopServe()
		var err error
		if opts.Headless {
			run, err = simulateHeadless(gctx, spec, logger, sinks...)
		} else {
			run, err = simulateRealtime(gctx, spec, logger, sinks...)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		if race.IsConfigError(err) {
			return WrapExitError(ExitFailure, "invalid configuration", err)
		}
		return WrapExitError(ExitCommandError, "race failed", err)
	}

	result := RunResult{
		Seed:        spec.Seed,
		Strategy:    spec.Strategy,
		Ticks:       run.Final.Tick,
		State:       run.Final.Outcome.State.String(),
		Winner:      winnerOf(run.Final.Outcome),
		Counts:      run.Final.Counts,
		Digest:      run.Digest,
		TickLimit:   run.TickLimit,
		Interrupted: run.Interrupted,
	}

	if ledger != nil {
		ids := opts.IDs
		if ids == nil {
			ids = store.UUIDv7Generator{}
		}
		result.RaceID = ids.Generate()
		rec := store.NewRecord(result.RaceID, spec.Seed, spec.Strategy, spec.Config, run.Final, run.Digest, time.Now())
		if err := ledger.WriteRace(context.WithoutCancel(ctx), rec); err != nil {
			return WrapExitError(ExitCommandError, "failed to record race", err)
		}
		logger.Info("race recorded", "race_id", result.RaceID, "db", opts.Database)
	}

	return out.Emit(result, func(w io.Writer) {
		printRunResult(w, result, run.Final.Outcome)
	})
}

func printRunResult(w io.Writer, r RunResult, outcome race.Outcome) {
	fmt.Fprintln(w)
	switch {
	case r.Interrupted:
		fmt.Fprintf(w, "Race interrupted: %s\n", describeOutcome(outcome, r.Ticks))
	case r.TickLimit:
		fmt.Fprintf(w, "Tick limit reached: %s\n", describeOutcome(outcome, r.Ticks))
	default:
		fmt.Fprintf(w, "Race over: %s\n", describeOutcome(outcome, r.Ticks))
	}
	fmt.Fprintf(w, "  Cars:     %d finished, %d crashed, %d active\n", r.Counts.Finished, r.Counts.Crashed, r.Counts.Active)
	fmt.Fprintf(w, "  Seed:     %d (%s)\n", r.Seed, r.Strategy)
	fmt.Fprintf(w, "  Digest:   %s\n", r.Digest)
	if r.RaceID != "" {
		fmt.Fprintf(w, "  Recorded: %s\n", r.RaceID)
	}
}

// configExitError maps a config loading error to an exit code. Unreadable
// files are command errors and invalid contents are failures.
func configExitError(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return WrapExitError(ExitCommandError, "failed to read config", err)
	}
	return WrapExitError(ExitFailure, "invalid configuration", err)
}
