// Package scenario runs scripted races from YAML files and checks their
// results.
//
// A scenario pins everything that affects a race: configuration, seed, tick
// delta, per-car scripts and preset obstacles. Run executes it headless on a
// virtual clock, so the same file always produces the same trace.
//
// Example:
//
//	name: single-car-finishes
//	description: A fast car crosses a short track in one tick.
//	delta: 1s
//	race:
//	  track_length: 5
//	  lane_count: 2
//	  obstacle_spawn_rate: 0
//	cars:
//	  - {lane: 0, speed: 5}
//	assertions:
//	  - {type: outcome, state: finished, winner: 1}
//	  - {type: ticks, count: 1}
//
// Assertion types: outcome, car_status, event_count, obstacle_count, ticks.
//
// RunWithGolden additionally compares the canonical frame trace with
// testdata/golden/<name>.golden. To regenerate golden files, run:
//
//	go test ./internal/scenario -update
package scenario
