package loop

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/laneracer/internal/race"
)

// Runner drives an engine in real time: logic at a fixed tick interval,
// rendering at a fixed frame rate.
type Runner struct {
	engine   Engine
	clock    race.Clock
	logger   *slog.Logger
	sinks    []Sink
	perTick  []Sink
	acc      *Accumulator
	frame    time.Duration
	maxTicks uint64

	ticks  uint64
	frames uint64
	last   time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSinks adds render targets.
func WithSinks(sinks ...Sink) RunnerOption {
	return func(r *Runner) {
		r.sinks = append(r.sinks, sinks...)
	}
}

// WithTickSinks adds targets that receive the initial snapshot and one
// snapshot after every tick, the same cadence Headless renders at. A
// trace.Recorder attached here yields the same digest in both modes.
func WithTickSinks(sinks ...Sink) RunnerOption {
	return func(r *Runner) {
		r.perTick = append(r.perTick, sinks...)
	}
}

// WithRunnerClock sets the wall clock. Default: race.SystemClock.
func WithRunnerClock(c race.Clock) RunnerOption {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithRunnerLogger sets the logger. Default: slog.Default().
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithMaxTicks stops the run after n ticks. Zero means unlimited.
func WithMaxTicks(n uint64) RunnerOption {
	return func(r *Runner) {
		r.maxTicks = n
	}
}

// WithMaxCatchUp bounds the ticks one frame may run.
func WithMaxCatchUp(n int) RunnerOption {
	return func(r *Runner) {
		r.acc = NewAccumulator(r.acc.Step(), n)
	}
}

// NewRunner returns a runner for engine using cfg.TickInterval and
// cfg.RenderFPS.
func NewRunner(engine Engine, cfg race.Config, opts ...RunnerOption) *Runner {
	fps := cfg.RenderFPS
	if fps <= 0 {
		fps = race.DefaultRenderFPS
	}
	r := &Runner{
		engine: engine,
		clock:  race.SystemClock{},
		logger: slog.Default(),
		acc:    NewAccumulator(cfg.TickInterval, DefaultMaxCatchUp),
		frame:  time.Second / time.Duration(fps),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Step advances wall time by elapsed: it runs every tick now due, then
// renders one frame. It returns the number of ticks run. Once ctx is done
// no further tick starts and no frame is rendered.
func (r *Runner) Step(ctx context.Context, elapsed time.Duration) (int, error) {
	due := r.acc.Add(elapsed)
	ran := 0
	for ; ran < due; ran++ {
		if err := ctx.Err(); err != nil {
			return ran, err
		}
		if r.engine.Finished() || r.limitReached() {
			break
		}
		if err := r.engine.Tick(ctx, r.acc.Step()); err != nil {
			return ran, fmt.Errorf("tick %d: %w", r.ticks+1, err)
		}
		r.ticks++
		if len(r.perTick) > 0 {
			render(r.perTick, r.engine.Snapshot())
		}
	}
	r.frames++
	render(r.sinks, r.engine.Snapshot())
	return ran, nil
}

// Run drives the engine until the race finishes, the tick limit is reached
// or ctx is done. A finished race returns nil.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("runner starting",
		"tick_interval", r.acc.Step(),
		"frame", r.frame,
	)

	ticker := time.NewTicker(r.frame)
	defer ticker.Stop()

	r.last = r.clock.Now()
	initial := r.engine.Snapshot()
	render(r.sinks, initial)
	render(r.perTick, initial)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runner stopping: context cancelled", "ticks", r.ticks)
			return ctx.Err()

		case <-ticker.C:
			now := r.clock.Now()
			elapsed := now.Sub(r.last)
			r.last = now

			if _, err := r.Step(ctx, elapsed); err != nil {
				return err
			}
			if r.engine.Finished() {
				r.logger.Info("runner stopping: race finished",
					"ticks", r.ticks,
					"frames", r.frames,
					"skipped", r.acc.Skipped(),
				)
				return nil
			}
			if r.limitReached() {
				return fmt.Errorf("%w (%d ticks)", ErrTickLimit, r.ticks)
			}
		}
	}
}

func (r *Runner) limitReached() bool {
	return r.maxTicks > 0 && r.ticks >= r.maxTicks
}

// Ticks returns the number of ticks this runner has run.
func (r *Runner) Ticks() uint64 { return r.ticks }

// Frames returns the number of frames rendered by Step.
func (r *Runner) Frames() uint64 { return r.frames }
