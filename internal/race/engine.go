package race

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Engine is the tick driver and the single owner of simulation state.
//
// Thread-safety model:
//   - Initialize and Tick serialize on an internal mutex; a Tick that finds
//     another Tick in flight returns ErrTickInProgress instead of waiting
//   - Snapshot, Finished and TickCount are safe from any goroutine and never
//     observe a partially applied tick
//   - Strategies run concurrently with each other, never with state mutation
type Engine struct {
	clock       Clock
	logger      *slog.Logger
	seed        int64
	factory     StrategyFactory
	rng         Rand
	maxParallel int

	mu          sync.Mutex
	initialized bool
	cfg         Config
	track       Track
	cars        []*Car
	obstacles   []*Obstacle
	spawner     *obstacleSource
	log         *EventLog
	seq         *SeqClock
	outcome     Outcome
	tick        uint64
	started     time.Time

	published atomic.Pointer[Snapshot]
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the wall clock used for elapsed time. Default: SystemClock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithSeed sets the seed for the engine's own random source (speeds and
// obstacle spawns). Default: 0.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithRand replaces the engine's random source entirely. It takes priority
// over WithSeed for engine draws.
func WithRand(r Rand) Option {
	return func(e *Engine) {
		e.rng = r
	}
}

// WithStrategyFactory sets how each car's strategy is built.
// Default: every car gets StayStrategy.
func WithStrategyFactory(f StrategyFactory) Option {
	return func(e *Engine) {
		e.factory = f
	}
}

// WithMaxParallelDecisions bounds how many Decide calls run at once.
// Zero (the default) means one goroutine per active car.
func WithMaxParallelDecisions(n int) Option {
	return func(e *Engine) {
		e.maxParallel = n
	}
}

// New creates an uninitialized engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:  SystemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.factory == nil {
		e.factory = func(CarID, int) Strategy { return StayStrategy{} }
	}
	return e
}

// Initialize validates cfg and builds the track, cars, preset obstacles and
// event log, then publishes the first snapshot. It succeeds at most once.
func (e *Engine) Initialize(cfg Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return ErrAlreadyInitialized
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if e.rng == nil {
		e.rng = NewRand(e.seed, streamEngine)
	}

	e.cfg = cfg
	e.track = cfg.Track()
	e.seq = NewSeqClock()
	e.log = NewEventLog(cfg.EventLogCapacity)
	e.spawner = &obstacleSource{rng: e.rng, cfg: cfg}

	specs := cfg.Cars
	if len(specs) == 0 {
		specs = make([]CarSpec, cfg.LaneCount)
		for lane := range specs {
			specs[lane] = CarSpec{Lane: lane}
		}
	}

	e.cars = make([]*Car, 0, len(specs))
	for i, spec := range specs {
		id := CarID(i + 1)
		speed := spec.Speed
		if speed == 0 {
			speed = MinCarSpeed + e.rng.Float64()*(MaxCarSpeed-MinCarSpeed)
		}
		strategy := e.factory(id, spec.Lane)
		if strategy == nil {
			strategy = StayStrategy{}
		}
		e.cars = append(e.cars, newCar(id, spec.Lane, speed, strategy))
	}

	e.obstacles = make([]*Obstacle, 0, len(cfg.Obstacles))
	for _, spec := range cfg.Obstacles {
		e.obstacles = append(e.obstacles, e.spawner.place(spec.Lane, spec.Position))
	}

	e.started = e.clock.Now()
	e.initialized = true

	e.appendEvent(0, 0, EventStart, HintInfo,
		fmt.Sprintf("Race started: %d cars, %d lanes, track length %g", len(e.cars), e.track.Lanes, e.track.Length))
	e.publish(0)

	e.logger.Info("race initialized",
		"cars", len(e.cars),
		"lanes", e.track.Lanes,
		"track_length", e.track.Length,
		"seed", e.seed,
	)

	return nil
}

// Tick advances the simulation by dt. It is a no-op once the outcome is
// Finished. A tick is never cancelled halfway: if ctx ends during the
// decision barrier, the affected cars simply stay.
func (e *Engine) Tick(ctx context.Context, dt time.Duration) error {
	if dt <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidDelta, dt)
	}
	if !e.mu.TryLock() {
		return ErrTickInProgress
	}
	defer e.mu.Unlock()

	if !e.initialized {
		return ErrNotInitialized
	}
	if e.outcome.Finished() {
		return nil
	}
	// A tick either runs to completion or never starts.
	if err := ctx.Err(); err != nil {
		return err
	}

	current := e.tick + 1
	seconds := dt.Seconds()

	// Decision barrier. Every strategy sees the snapshot published at the
	// end of the previous tick.
	decisions := e.gatherDecisions(ctx, e.published.Load())

	now := e.clock.Now()
	at := now.Sub(e.started).Seconds()

	for _, d := range decisions {
		if !d.car.Active() {
			violate(InvariantDecisionForInactive, d.car.id, "decision gathered for %s car", d.car.status)
		}
		if d.err != nil {
			e.logger.Warn("strategy degraded, car stays in lane",
				"car", d.car.id,
				"tick", current,
				"error", d.err,
			)
			e.appendEvent(current, at, EventDegraded, HintWarning,
				fmt.Sprintf("Car %d strategy failed, staying in lane %d: %v", d.car.id, d.car.lane, d.err))
			continue
		}
		from := d.car.lane
		if d.car.applyAction(d.action, e.track) {
			e.appendEvent(current, at, EventLaneChange, HintInfo,
				fmt.Sprintf("Car %d changed lane %d -> %d", d.car.id, from, d.car.lane))
		}
	}

	for _, d := range decisions {
		if d.car.advance(seconds, e.track) {
			e.logger.Debug("car finished", "car", d.car.id, "tick", current)
		}
	}

	e.updateObstacles(seconds)

	for _, id := range DetectCollisions(e.carStates(), e.obstacleStates()) {
		car := e.cars[id-1]
		car.crash()
		e.appendEvent(current, at, EventCollision, HintDanger,
			fmt.Sprintf("Car %d crashed in lane %d at %.2f", car.id, car.lane, car.position))
	}

	next := EvaluateOutcome(e.outcome, e.carStates())
	if next != e.outcome {
		e.finish(current, at, next)
	}

	e.tick = current
	e.publish(now.Sub(e.started))

	e.logger.Debug("tick complete",
		"tick", current,
		"active", len(decisions),
		"obstacles", len(e.obstacles),
		"outcome", e.outcome.String(),
	)

	return nil
}

// updateObstacles moves drifting obstacles, rolls one spawn and evicts every
// obstacle outside the track.
func (e *Engine) updateObstacles(seconds float64) {
	for _, ob := range e.obstacles {
		ob.update(seconds)
	}
	if ob := e.spawner.maybeSpawn(); ob != nil {
		e.obstacles = append(e.obstacles, ob)
	}
	kept := e.obstacles[:0]
	for _, ob := range e.obstacles {
		if !ob.offTrack(e.track) {
			kept = append(kept, ob)
		}
	}
	clear(e.obstacles[len(kept):])
	e.obstacles = kept
}

// finish records the terminal outcome and its events.
func (e *Engine) finish(tick uint64, at float64, next Outcome) {
	if e.outcome.Finished() {
		violate(InvariantOutcomeRegressed, 0, "outcome %s would become %s", e.outcome, next)
	}
	e.outcome = next

	if next.HasWinner() {
		e.appendEvent(tick, at, EventFinish, HintSuccess,
			fmt.Sprintf("Car %d crossed the finish line and wins", next.Winner))
		e.appendEvent(tick, at, EventEnd, HintSuccess,
			fmt.Sprintf("Race over after %d ticks: car %d wins", tick, next.Winner))
	} else {
		e.appendEvent(tick, at, EventEnd, HintDanger,
			fmt.Sprintf("Race over after %d ticks: all cars crashed, no winner", tick))
	}

	e.logger.Info("race finished",
		"tick", tick,
		"winner", int(next.Winner),
		"elapsed_seconds", at,
	)
}

func (e *Engine) appendEvent(tick uint64, at float64, kind EventKind, hint Hint, msg string) {
	e.log.Append(Event{
		Seq:     e.seq.Next(),
		At:      at,
		Tick:    tick,
		Kind:    kind,
		Message: msg,
		Hint:    hint,
	})
}

func (e *Engine) carStates() []CarState {
	out := make([]CarState, len(e.cars))
	for i, c := range e.cars {
		out[i] = c.State()
	}
	return out
}

func (e *Engine) obstacleStates() []ObstacleState {
	out := make([]ObstacleState, len(e.obstacles))
	for i, o := range e.obstacles {
		out[i] = o.State()
	}
	return out
}

// publish builds a complete snapshot and swaps it in atomically.
func (e *Engine) publish(elapsed time.Duration) {
	cars := e.carStates()
	snap := &Snapshot{
		Tick:          e.tick,
		Track:         e.track,
		Outcome:       e.outcome,
		Cars:          cars,
		Obstacles:     e.obstacleStates(),
		Counts:        countStatuses(cars),
		Progress:      progress(cars, e.track),
		Elapsed:       elapsed,
		Events:        e.log.Events(),
		EventsDropped: e.log.Dropped(),
	}
	e.published.Store(snap)
}

// Snapshot returns a copy of the latest published snapshot, or nil before
// Initialize.
func (e *Engine) Snapshot() *Snapshot {
	return e.published.Load().Clone()
}

// Finished reports whether the published outcome is terminal.
func (e *Engine) Finished() bool {
	snap := e.published.Load()
	return snap != nil && snap.Outcome.Finished()
}

// TickCount returns the number of completed ticks.
func (e *Engine) TickCount() uint64 {
	snap := e.published.Load()
	if snap == nil {
		return 0
	}
	return snap.Tick
}

// Seed returns the seed the engine was built with.
func (e *Engine) Seed() int64 {
	return e.seed
}
