// Package store provides the SQLite results database for finished runs.
//
// The database holds two tables:
//   - runs: one row per run (circuit hash, register width, gate count,
//     capacity, seed, final size, eviction totals, duration, and the
//     fidelity error against a reference run when one was recorded)
//   - amplitudes: the run's final-state snapshot, one row per entry
//
// The in-memory state store is authoritative while a run executes; a run
// is written here only once it has finished, in a single transaction.
//
// # Ordering
//
// Queries order deterministically: runs by id (UUIDv7 ids sort by creation
// time), amplitudes by basis string. Both use COLLATE BINARY.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
