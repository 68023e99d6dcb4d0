// Package loop drives a race engine in real time or headless.
//
// Logic and rendering run at independent rates on one goroutine:
//
//	frame timer (RenderFPS) -> Accumulator -> N x Engine.Tick(TickInterval) -> Sinks
//
// The Accumulator carries leftover wall time between frames so the logic rate
// is stable even when frames arrive late, and caps catch-up so a long stall
// does not turn into a burst of ticks. Because one goroutine owns every Tick
// call, the engine never sees a re-entrant tick from this package.
//
// Headless runs skip the frame timer and tick back to back against a
// VirtualClock, which makes every snapshot reproducible for a given seed.
package loop
