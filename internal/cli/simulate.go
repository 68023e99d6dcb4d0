package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/laneracer/internal/loop"
	"github.com/roach88/laneracer/internal/race"
	"github.com/roach88/laneracer/internal/strategy"
	"github.com/roach88/laneracer/internal/trace"
)

// raceSpec is everything that determines a race.
type raceSpec struct {
	Config   race.Config
	Seed     int64
	Strategy string
	MaxTicks uint64
}

// raceRun is the result of driving one race.
type raceRun struct {
	Final       *race.Snapshot
	Digest      string
	TickLimit   bool
	Interrupted bool
}

// newRaceEngine builds and initializes an engine for spec.
func newRaceEngine(spec raceSpec, clock race.Clock, logger *slog.Logger) (*race.Engine, error) {
	factory, err := strategy.Factory(spec.Strategy, spec.Config.LaneChangeChance, spec.Seed)
	if err != nil {
		return nil, err
	}
	engine := race.New(
		race.WithClock(clock),
		race.WithLogger(logger),
		race.WithSeed(spec.Seed),
		race.WithStrategyFactory(factory),
	)
	if err := engine.Initialize(spec.Config); err != nil {
		return nil, err
	}
	return engine, nil
}

// simulateHeadless runs spec back to back on a virtual clock. Extra sinks
// see the same frames as the digest recorder.
func simulateHeadless(ctx context.Context, spec raceSpec, logger *slog.Logger, sinks ...loop.Sink) (*raceRun, error) {
	clock := loop.NewVirtualClock(time.Now())
	engine, err := newRaceEngine(spec, clock, logger)
	if err != nil {
		return nil, err
	}

	recorder := trace.NewRecorder(false)
	h := &loop.Headless{
		Engine:   engine,
		Clock:    clock,
		Delta:    spec.Config.TickInterval,
		MaxTicks: spec.MaxTicks,
		Sinks:    append([]loop.Sink{recorder}, sinks...),
	}

	final, err := h.Run(ctx)
	return finishRun(final, recorder, err)
}

// simulateRealtime runs spec at wall-clock pace. sinks receive rendered
// frames; the digest is taken per tick so it matches a headless run.
func simulateRealtime(ctx context.Context, spec raceSpec, logger *slog.Logger, sinks ...loop.Sink) (*raceRun, error) {
	engine, err := newRaceEngine(spec, race.SystemClock{}, logger)
	if err != nil {
		return nil, err
	}

	recorder := trace.NewRecorder(false)
	runner := loop.NewRunner(engine, spec.Config,
		loop.WithSinks(sinks...),
		loop.WithTickSinks(recorder),
		loop.WithMaxTicks(spec.MaxTicks),
		loop.WithRunnerLogger(logger),
	)

	err = runner.Run(ctx)
	return finishRun(engine.Snapshot(), recorder, err)
}

func finishRun(final *race.Snapshot, recorder *trace.Recorder, err error) (*raceRun, error) {
	run := &raceRun{Final: final}
	switch {
	case err == nil:
	case errors.Is(err, loop.ErrTickLimit):
		run.TickLimit = true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		run.Interrupted = true
	default:
		return nil, err
	}

	digest, err := recorder.Digest()
	if err != nil {
		return nil, fmt.Errorf("trace digest: %w", err)
	}
	run.Digest = digest
	return run, nil
}
