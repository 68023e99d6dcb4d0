package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/laneracer/internal/loop"
	"github.com/roach88/laneracer/internal/race"
	"github.com/roach88/laneracer/internal/trace"
)

// epoch is the virtual start time of every scenario run.
var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Errors lists failed assertions.
	Errors []string `json:"errors,omitempty"`

	// Final is the last published snapshot.
	Final *race.Snapshot `json:"final"`

	// Digest is the trace digest of the run.
	Digest string `json:"digest"`

	// Trace holds the canonical frames, one JSON object per line.
	Trace []byte `json:"-"`

	// TickLimit is true when the run stopped at max_ticks unfinished.
	TickLimit bool `json:"tick_limit,omitempty"`
}

// RunOption configures Run.
type RunOption func(*runOptions)

type runOptions struct {
	logger *slog.Logger
}

// WithLogger routes engine logs to l. Default: discarded.
func WithLogger(l *slog.Logger) RunOption {
	return func(o *runOptions) {
		o.logger = l
	}
}

// Run executes the scenario headless and evaluates its assertions.
// Hitting max_ticks is not an error; assertions decide whether it passes.
func Run(ctx context.Context, sc *Scenario, opts ...RunOption) (*Result, error) {
	o := runOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}

	factory, err := sc.factory()
	if err != nil {
		return nil, err
	}

	clock := loop.NewVirtualClock(epoch)
	engine := race.New(
		race.WithClock(clock),
		race.WithLogger(o.logger.With("scenario", sc.Name)),
		race.WithSeed(sc.Seed),
		race.WithStrategyFactory(factory),
	)
	if err := engine.Initialize(sc.Config()); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	recorder := trace.NewRecorder(true)
	h := &loop.Headless{
		Engine:   engine,
		Clock:    clock,
		Delta:    time.Duration(sc.Delta),
		MaxTicks: sc.MaxTicks,
		Sinks:    []loop.Sink{recorder},
	}

	final, err := h.Run(ctx)
	result := &Result{Pass: true, Final: final}
	if errors.Is(err, loop.ErrTickLimit) {
		result.TickLimit = true
	} else if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	if result.Digest, err = recorder.Digest(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	result.Trace = recorder.Trace()

	result.Errors = Evaluate(final, sc.Assertions)
	result.Pass = len(result.Errors) == 0
	return result, nil
}
