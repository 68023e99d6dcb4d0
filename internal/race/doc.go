// Package race implements the discrete-tick lane racing simulation engine.
//
// The engine owns a fixed set of lane-bound cars and a changing population of
// obstacles. Once per logical tick it asks every active car's strategy for a
// lateral decision, applies the decisions, advances the cars, spawns and evicts
// obstacles, detects collisions and arbitrates the race outcome.
//
// ARCHITECTURE:
//
// Single Owner:
// All simulation state is owned by the Engine and mutated only inside Tick.
// Strategies receive a read-only CarView and the snapshot published at the end
// of the previous tick, so no decision can observe another car's post-tick
// state.
//
// Tick Flow:
//  1. Decision barrier: one Decide call per active car, issued concurrently,
//     joined before anything else happens
//  2. Lane changes applied (clamped to the track)
//  3. Cars advance by speed * dt, finishing at the track end
//  4. Obstacles move (optional), spawn, and are evicted when off track
//  5. Collisions detected against the post-movement positions
//  6. Outcome evaluated, events appended, tick counter incremented
//  7. A fully formed Snapshot is published atomically
//
// The only suspension point is the decision barrier. Nothing after it blocks.
//
// Failure Policy:
// A strategy that errors, panics, times out, or returns a malformed action is
// treated as Stay for that car and tick, and a degraded event is recorded.
// State machine violations (for example mutating a crashed car) panic with an
// *InvariantError because they mean the engine itself is broken.
//
// Determinism:
// Given the same seed, strategy factory and tick deltas the full sequence of
// decisions and snapshots is reproducible. Each strategy owns its own random
// source, and the engine's obstacle source is consumed only after the barrier.
package race
