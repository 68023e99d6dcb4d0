package race

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_InitializeDefaults(t *testing.T) {
	e, _ := newTestEngine(t, quietConfig())

	snap := e.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, uint64(0), snap.Tick)
	assert.Equal(t, Track{Length: 30, Lanes: 4}, snap.Track)
	assert.Equal(t, OutcomeRunning, snap.Outcome.State)
	require.Len(t, snap.Cars, 4)

	for i, car := range snap.Cars {
		assert.Equal(t, CarID(i+1), car.ID)
		assert.Equal(t, i, car.Lane, "one car per starting lane")
		assert.Equal(t, 0.0, car.Position)
		assert.Equal(t, StatusActive, car.Status)
		assert.GreaterOrEqual(t, car.Speed, MinCarSpeed)
		assert.Less(t, car.Speed, MaxCarSpeed)
	}

	assert.Empty(t, snap.Obstacles)
	assert.Equal(t, Counts{Active: 4}, snap.Counts)
	require.Len(t, snap.Events, 1)
	assert.Equal(t, EventStart, snap.Events[0].Kind)
	assert.Equal(t, int64(1), snap.Events[0].Seq)
}

func TestEngine_InitializeTwiceRejected(t *testing.T) {
	e, _ := newTestEngine(t, quietConfig())

	err := e.Initialize(quietConfig())
	assert.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestEngine_InitializeInvalidConfig(t *testing.T) {
	cfg := quietConfig()
	cfg.LaneCount = 1

	e := New(WithLogger(discardLogger()))
	err := e.Initialize(cfg)

	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, e.Snapshot(), "failed initialize must not publish")

	// A failed Initialize does not consume the one allowed call.
	require.NoError(t, e.Initialize(quietConfig()))
}

func TestEngine_TickBeforeInitialize(t *testing.T) {
	e := New(WithLogger(discardLogger()))
	err := e.Tick(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestEngine_TickRejectsNonPositiveDelta(t *testing.T) {
	e, _ := newTestEngine(t, quietConfig())

	assert.ErrorIs(t, e.Tick(context.Background(), 0), ErrInvalidDelta)
	assert.ErrorIs(t, e.Tick(context.Background(), -time.Second), ErrInvalidDelta)
	assert.Equal(t, uint64(0), e.TickCount())
}

// Scenario A: one car crosses a short track in a single tick.
func TestEngine_SingleCarFinishesInOneTick(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 5
	cfg.LaneCount = 2
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 5}}

	e, clock := newTestEngine(t, cfg)
	tick(t, e, clock, time.Second)

	snap := e.Snapshot()
	car, ok := snap.Car(1)
	require.True(t, ok)
	assert.Equal(t, StatusFinished, car.Status)
	assert.Equal(t, 5.0, car.Position)
	assert.Equal(t, Outcome{State: OutcomeFinished, Winner: 1}, snap.Outcome)
	assert.Equal(t, 1.0, snap.Progress)
	assert.Equal(t, []EventKind{EventStart, EventFinish, EventEnd}, kinds(snap.Events))
}

// Scenario B: a car starting on top of an obstacle crashes on tick 1.
func TestEngine_CarCrashesIntoObstacle(t *testing.T) {
	cfg := quietConfig()
	cfg.Cars = []CarSpec{{Lane: 2, Speed: 0.5}}
	cfg.Obstacles = []ObstacleSpec{{Lane: 2, Position: 0}}

	e, clock := newTestEngine(t, cfg)
	tick(t, e, clock, time.Second)

	snap := e.Snapshot()
	car, _ := snap.Car(1)
	assert.Equal(t, StatusCrashed, car.Status)
	assert.Equal(t, 0.25, car.Speed, "crash halves speed")
	assert.Equal(t, 0.5, car.Position)
	assert.Equal(t, 1, snap.EventCount(EventCollision))
	assert.Equal(t, Outcome{State: OutcomeFinished}, snap.Outcome, "only car crashed: no winner")
	assert.Equal(t, []EventKind{EventStart, EventCollision, EventEnd}, kinds(snap.Events))
}

// Scenario C: guaranteed spawns accumulate while nothing leaves the track.
func TestEngine_SpawnEveryTick(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 1000
	cfg.ObstacleSpawnRate = 1.0
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 2}, {Lane: 1, Speed: 2}}

	e, clock := newTestEngine(t, cfg)
	for i := 0; i < 5; i++ {
		tick(t, e, clock, time.Second)
	}

	snap := e.Snapshot()
	assert.Len(t, snap.Obstacles, 5)
	for i, ob := range snap.Obstacles {
		assert.Equal(t, ObstacleID(i+1), ob.ID)
		assert.Equal(t, 0.0, ob.Position, "obstacles spawn at the edge")
		assert.Equal(t, ObstacleStatic, ob.Kind)
	}
	assert.Equal(t, uint64(5), snap.Tick)
}

// Scenario D: simultaneous finishers resolve to the lowest ID.
func TestEngine_TieBrokenByLowestID(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 10
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 10}, {Lane: 1, Speed: 10}, {Lane: 2, Speed: 10}, {Lane: 3, Speed: 10}}

	e, clock := newTestEngine(t, cfg)
	tick(t, e, clock, time.Second)

	snap := e.Snapshot()
	assert.Equal(t, Counts{Finished: 4}, snap.Counts)
	assert.Equal(t, CarID(1), snap.Outcome.Winner)
	assert.Equal(t, 1, snap.EventCount(EventFinish))
	assert.Equal(t, 1, snap.EventCount(EventEnd))
}

func TestEngine_AllCrashedMeansNoWinner(t *testing.T) {
	cfg := quietConfig()
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 0.5}, {Lane: 1, Speed: 0.5}}
	cfg.Obstacles = []ObstacleSpec{{Lane: 0, Position: 1}, {Lane: 1, Position: 1}}

	e, clock := newTestEngine(t, cfg)
	tick(t, e, clock, time.Second)

	snap := e.Snapshot()
	assert.Equal(t, Counts{Crashed: 2}, snap.Counts)
	assert.True(t, snap.Outcome.Finished())
	assert.False(t, snap.Outcome.HasWinner())
	assert.Equal(t, 2, snap.EventCount(EventCollision))
	assert.Equal(t, 0, snap.EventCount(EventFinish))
}

func TestEngine_FinishedRaceIgnoresTicks(t *testing.T) {
	var calls int
	var mu sync.Mutex
	counting := StrategyFunc(func(context.Context, CarView, *Snapshot) (Action, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return Stay(), nil
	})

	cfg := quietConfig()
	cfg.TrackLength = 1
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 1}, {Lane: 1, Speed: 0.5}}

	e, clock := newTestEngine(t, cfg, allCars(counting))
	tick(t, e, clock, time.Second)
	require.True(t, e.Finished())

	before := e.Snapshot()
	tick(t, e, clock, time.Second)
	tick(t, e, clock, time.Second)
	after := e.Snapshot()

	assert.Equal(t, 2, calls, "strategies are not invoked after the race finished")
	assert.Equal(t, before.Tick, after.Tick)
	assert.Equal(t, before.Cars, after.Cars, "still-active car must not advance after the outcome is terminal")
	assert.Equal(t, before.Outcome, after.Outcome)
}

func TestEngine_PositionAdvancesBySpeedTimesDelta(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 100
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 1.5}, {Lane: 1, Speed: 2}}

	e, clock := newTestEngine(t, cfg)
	tick(t, e, clock, 500*time.Millisecond)
	tick(t, e, clock, 250*time.Millisecond)

	snap := e.Snapshot()
	c1, _ := snap.Car(1)
	c2, _ := snap.Car(2)
	assert.InDelta(t, 1.125, c1.Position, 1e-12)
	assert.InDelta(t, 1.5, c2.Position, 1e-12)
	assert.Equal(t, 750*time.Millisecond, snap.Elapsed)
	assert.InDelta(t, 1.5/100, snap.Progress, 1e-12)
}

func TestEngine_LaneChangeAppliedBeforeMovementAndClamped(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 100
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 1}, {Lane: 3, Speed: 1}}
	// The obstacle sits in lane 1 where car 1 moves to; it must crash.
	cfg.Obstacles = []ObstacleSpec{{Lane: 1, Position: 1}}

	factory := WithStrategyFactory(func(id CarID, lane int) Strategy {
		if id == 1 {
			return StrategyFunc(func(context.Context, CarView, *Snapshot) (Action, error) {
				return ChangeLane(1), nil
			})
		}
		return StrategyFunc(func(context.Context, CarView, *Snapshot) (Action, error) {
			return ChangeLane(99), nil
		})
	})

	e, clock := newTestEngine(t, cfg, factory)
	tick(t, e, clock, time.Second)

	snap := e.Snapshot()
	c1, _ := snap.Car(1)
	c2, _ := snap.Car(2)
	assert.Equal(t, 1, c1.Lane)
	assert.Equal(t, StatusCrashed, c1.Status)
	assert.Equal(t, 3, c2.Lane, "target beyond the track is clamped to the last lane")
	assert.Equal(t, 1, snap.EventCount(EventLaneChange), "clamped no-op change is not an event")
}

func TestEngine_FrozenCarsNeverChange(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 100
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 0.5}, {Lane: 1, Speed: 1}}
	cfg.Obstacles = []ObstacleSpec{{Lane: 0, Position: 0.2}}

	wander := StrategyFunc(func(_ context.Context, car CarView, _ *Snapshot) (Action, error) {
		return ChangeLane(car.Lane + 1), nil
	})
	// Car 1 stays and hits the obstacle; car 2 keeps wandering.
	factory := WithStrategyFactory(func(id CarID, _ int) Strategy {
		if id == 1 {
			return StayStrategy{}
		}
		return wander
	})

	e, clock := newTestEngine(t, cfg, factory)
	tick(t, e, clock, time.Second)

	crashed, _ := e.Snapshot().Car(1)
	require.Equal(t, StatusCrashed, crashed.Status)

	for i := 0; i < 5; i++ {
		tick(t, e, clock, time.Second)
		again, _ := e.Snapshot().Car(1)
		assert.Equal(t, crashed, again)
	}
}

func TestEngine_WorldViewIsPreTick(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 100
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 1}, {Lane: 1, Speed: 1}}

	var mu sync.Mutex
	seen := map[CarID][]uint64{}
	observe := StrategyFunc(func(_ context.Context, car CarView, world *Snapshot) (Action, error) {
		other := CarID(3 - int(car.ID))
		peer, _ := world.Car(other)
		mu.Lock()
		defer mu.Unlock()
		seen[car.ID] = append(seen[car.ID], world.Tick)
		// The peer has moved exactly as far as this car has.
		if peer.Position != car.Position {
			return Action{}, errors.New("observed peer post-tick state")
		}
		return Stay(), nil
	})

	e, clock := newTestEngine(t, cfg, allCars(observe))
	for i := 0; i < 3; i++ {
		tick(t, e, clock, time.Second)
	}

	snap := e.Snapshot()
	assert.Equal(t, 0, snap.EventCount(EventDegraded))
	assert.Equal(t, []uint64{0, 1, 2}, seen[1])
	assert.Equal(t, []uint64{0, 1, 2}, seen[2])
}

func TestEngine_StrategyErrorDegradesToStay(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 100
	cfg.Cars = []CarSpec{{Lane: 1, Speed: 1}}

	failing := StrategyFunc(func(context.Context, CarView, *Snapshot) (Action, error) {
		return ChangeLane(2), errors.New("model offline")
	})

	e, clock := newTestEngine(t, cfg, allCars(failing))
	tick(t, e, clock, time.Second)

	snap := e.Snapshot()
	car, _ := snap.Car(1)
	assert.Equal(t, 1, car.Lane, "failed decision is treated as stay")
	assert.Equal(t, 1.0, car.Position, "car still advances")
	require.Equal(t, 1, snap.EventCount(EventDegraded))
	assert.Contains(t, snap.Events[1].Message, "model offline")
	assert.Equal(t, HintWarning, snap.Events[1].Hint)

	// Degradation lasts for one tick only.
	assert.Equal(t, OutcomeRunning, snap.Outcome.State)
}

func TestEngine_StrategyPanicDegradesToStay(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 100
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 1}, {Lane: 1, Speed: 1}}

	factory := WithStrategyFactory(func(id CarID, _ int) Strategy {
		if id == 2 {
			return StrategyFunc(func(context.Context, CarView, *Snapshot) (Action, error) {
				panic("boom")
			})
		}
		return StayStrategy{}
	})

	e, clock := newTestEngine(t, cfg, factory)
	tick(t, e, clock, time.Second)

	snap := e.Snapshot()
	assert.Equal(t, 1, snap.EventCount(EventDegraded))
	assert.Contains(t, snap.Events[1].Message, "boom")
	assert.Equal(t, Counts{Active: 2}, snap.Counts)
}

func TestEngine_SlowStrategyTimesOut(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 100
	cfg.DecisionTimeout = 20 * time.Millisecond
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 1}}

	slow := StrategyFunc(func(ctx context.Context, _ CarView, _ *Snapshot) (Action, error) {
		<-ctx.Done()
		return ChangeLane(1), ctx.Err()
	})

	e, clock := newTestEngine(t, cfg, allCars(slow))
	start := time.Now()
	tick(t, e, clock, time.Second)
	assert.Less(t, time.Since(start), 2*time.Second)

	snap := e.Snapshot()
	car, _ := snap.Car(1)
	assert.Equal(t, 0, car.Lane)
	require.Equal(t, 1, snap.EventCount(EventDegraded))
	assert.Contains(t, snap.Events[1].Message, "deadline exceeded")
}

func TestEngine_TickWithCancelledContextDoesNotStart(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 100
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 1}}

	var calls atomic.Int32
	counting := StrategyFunc(func(context.Context, CarView, *Snapshot) (Action, error) {
		calls.Add(1)
		return ChangeLane(1), nil
	})
	e, clock := newTestEngine(t, cfg, allCars(counting))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	clock.Advance(time.Second)
	assert.ErrorIs(t, e.Tick(ctx, time.Second), context.Canceled)

	snap := e.Snapshot()
	assert.Equal(t, uint64(0), snap.Tick)
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, []EventKind{EventStart}, kinds(snap.Events))
}

func TestEngine_CancelDuringBarrierKeepsDecisions(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 100
	cfg.DecisionTimeout = 5 * time.Second
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 1}}

	entered := make(chan struct{})
	release := make(chan struct{})
	// Ignores ctx on purpose: the answer must still count after cancellation.
	late := StrategyFunc(func(context.Context, CarView, *Snapshot) (Action, error) {
		close(entered)
		<-release
		return ChangeLane(1), nil
	})
	e, clock := newTestEngine(t, cfg, allCars(late))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.Advance(time.Second)
	done := make(chan error, 1)
	go func() {
		done <- e.Tick(ctx, time.Second)
	}()

	<-entered
	cancel()
	close(release)
	require.NoError(t, <-done)

	snap := e.Snapshot()
	car, _ := snap.Car(1)
	assert.Equal(t, uint64(1), snap.Tick)
	assert.Equal(t, 1, car.Lane)
	assert.Equal(t, 0, snap.EventCount(EventDegraded))
	assert.Equal(t, 1, snap.EventCount(EventLaneChange))
}

func TestEngine_AbandonedDecisionIsNotOverlapped(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 100
	cfg.DecisionTimeout = 20 * time.Millisecond
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 1}}

	var calls, inFlight, maxInFlight atomic.Int32
	release := make(chan struct{})
	stuck := StrategyFunc(func(context.Context, CarView, *Snapshot) (Action, error) {
		calls.Add(1)
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		if n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}
		<-release
		return ChangeLane(1), nil
	})
	e, clock := newTestEngine(t, cfg, allCars(stuck))

	tick(t, e, clock, time.Second)
	tick(t, e, clock, time.Second)

	snap := e.Snapshot()
	require.Equal(t, 2, snap.EventCount(EventDegraded))
	assert.Contains(t, snap.Events[1].Message, "deadline exceeded")
	assert.Contains(t, snap.Events[2].Message, ErrDecisionPending.Error())
	assert.Equal(t, int32(1), calls.Load(), "abandoned call is not joined by a second one")

	close(release)
	assert.Eventually(t, func() bool { return !e.cars[0].deciding.Load() },
		time.Second, time.Millisecond)

	tick(t, e, clock, time.Second)
	snap = e.Snapshot()
	car, _ := snap.Car(1)
	assert.Equal(t, 1, car.Lane)
	assert.Equal(t, 2, snap.EventCount(EventDegraded))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestEngine_UnknownActionKindDegrades(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 100
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 1}}

	bogus := StrategyFunc(func(context.Context, CarView, *Snapshot) (Action, error) {
		return Action{Kind: ActionKind(42), TargetLane: 1}, nil
	})

	e, clock := newTestEngine(t, cfg, allCars(bogus))
	tick(t, e, clock, time.Second)

	snap := e.Snapshot()
	car, _ := snap.Car(1)
	assert.Equal(t, 0, car.Lane)
	assert.Equal(t, 1, snap.EventCount(EventDegraded))
}

func TestEngine_ReentrantTickRejected(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 100
	cfg.DecisionTimeout = 0
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 1}}

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	blocking := StrategyFunc(func(context.Context, CarView, *Snapshot) (Action, error) {
		once.Do(func() { close(entered) })
		<-release
		return Stay(), nil
	})

	e, _ := newTestEngine(t, cfg, allCars(blocking))

	done := make(chan error, 1)
	go func() {
		done <- e.Tick(context.Background(), time.Second)
	}()

	<-entered
	assert.ErrorIs(t, e.Tick(context.Background(), time.Second), ErrTickInProgress)
	assert.Equal(t, uint64(0), e.TickCount(), "published state is the pre-tick snapshot")

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, uint64(1), e.TickCount())
}

func TestEngine_MaxParallelDecisions(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 100

	var mu sync.Mutex
	inFlight, peak := 0, 0
	tracking := StrategyFunc(func(context.Context, CarView, *Snapshot) (Action, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return Stay(), nil
	})

	e, clock := newTestEngine(t, cfg, allCars(tracking), WithMaxParallelDecisions(1))
	tick(t, e, clock, time.Second)

	assert.Equal(t, 1, peak)
	assert.Equal(t, 0, e.Snapshot().EventCount(EventDegraded))
}

func TestEngine_SnapshotIsACopy(t *testing.T) {
	cfg := quietConfig()
	cfg.Obstacles = []ObstacleSpec{{Lane: 3, Position: 10}}
	e, _ := newTestEngine(t, cfg)

	snap := e.Snapshot()
	snap.Cars[0].Position = 99
	snap.Obstacles[0].Lane = 0
	snap.Events[0].Message = "tampered"

	fresh := e.Snapshot()
	assert.Equal(t, 0.0, fresh.Cars[0].Position)
	assert.Equal(t, 3, fresh.Obstacles[0].Lane)
	assert.NotEqual(t, "tampered", fresh.Events[0].Message)
}

func TestEngine_SnapshotReadsDuringTicks(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 1000
	cfg.ObstacleSpawnRate = 0.5
	e, clock := newTestEngine(t, cfg)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			snap := e.Snapshot()
			// A published snapshot is internally consistent.
			assert.Equal(t, len(snap.Cars), snap.Counts.Active+snap.Counts.Crashed+snap.Counts.Finished)
		}
	}()

	for i := 0; i < 50 && !e.Finished(); i++ {
		tick(t, e, clock, 100*time.Millisecond)
	}
	close(stop)
	wg.Wait()
}

func TestEngine_EventTimestampsAreElapsedSeconds(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 3
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 1}}

	e, clock := newTestEngine(t, cfg)
	clock.Advance(2 * time.Second) // wall time passes between ticks
	tick(t, e, clock, time.Second)
	tick(t, e, clock, time.Second)
	tick(t, e, clock, time.Second)

	snap := e.Snapshot()
	require.True(t, snap.Outcome.HasWinner())
	last := snap.Events[len(snap.Events)-1]
	assert.Equal(t, EventEnd, last.Kind)
	assert.Equal(t, 5.0, last.At, "timestamps follow the clock, not the tick count")
	assert.Equal(t, uint64(3), last.Tick)
}

func TestEngine_EventLogBounded(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 1000
	cfg.EventLogCapacity = 3
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 1}, {Lane: 1, Speed: 1}}

	flip := StrategyFunc(func(_ context.Context, car CarView, _ *Snapshot) (Action, error) {
		if car.Lane%2 == 0 {
			return ChangeLane(car.Lane + 1), nil
		}
		return ChangeLane(car.Lane - 1), nil
	})

	e, clock := newTestEngine(t, cfg, allCars(flip))
	for i := 0; i < 5; i++ {
		tick(t, e, clock, time.Second)
	}

	snap := e.Snapshot()
	assert.Len(t, snap.Events, 3)
	assert.Equal(t, uint64(8), snap.EventsDropped, "1 start + 10 lane changes - 3 kept")
	assert.Equal(t, int64(11), snap.Events[2].Seq)
}

func TestEngine_MovingObstaclesDriftAndLeave(t *testing.T) {
	cfg := quietConfig()
	cfg.TrackLength = 2
	cfg.ObstacleSpawnRate = 1
	cfg.MovingObstacleChance = 1
	cfg.MaxObstacleSpeed = 0.5
	cfg.LaneCount = 2
	cfg.Cars = []CarSpec{{Lane: 0, Speed: 0.01}, {Lane: 1, Speed: 0.01}}

	e, clock := newTestEngine(t, cfg, WithRand(fixedRand{f: 0.9, n: 1}))
	tick(t, e, clock, time.Second)

	snap := e.Snapshot()
	require.Len(t, snap.Obstacles, 1)
	assert.Equal(t, ObstacleMoving, snap.Obstacles[0].Kind)
	assert.Equal(t, 1, snap.Obstacles[0].Lane)
	assert.InDelta(t, 0.45, snap.Obstacles[0].Speed, 1e-12)

	// Car 2 shares lane 1 with the spawned obstacle.
	c2, _ := snap.Car(2)
	assert.Equal(t, StatusCrashed, c2.Status)
}
