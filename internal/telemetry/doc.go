// Package telemetry publishes race snapshots over HTTP.
//
// Hub is a loop.Sink: the runner hands it every rendered snapshot and the hub
// keeps the latest one and fans it out to websocket subscribers. NewRouter
// exposes the hub:
//
//	GET /healthz      liveness
//	GET /snapshot     latest snapshot (503 before the first frame)
//	GET /events       event log, optionally ?kind=collision&after=12
//	GET /cars/{id}    one car from the latest snapshot
//	GET /ws           websocket stream of snapshots
//
// Subscribers that cannot keep up are disconnected rather than slowing the
// simulation down.
package telemetry
