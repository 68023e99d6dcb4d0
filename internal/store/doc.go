// Package store provides the SQLite-backed race ledger.
//
// The ledger is append-only. Each finished race is one row in races plus its
// retained event log in race_events. Rows carry everything needed to re-run
// the race headless and compare digests: seed, strategy kind, the canonical
// configuration JSON and the trace digest.
//
// The engine never reads from the ledger; restoring a running race is out of
// scope.
//
// # Ordering
//
// All queries order by seq (the ledger's logical clock), never by wall time:
//   - races:       ORDER BY seq ASC
//   - race_events: ORDER BY event_seq ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
