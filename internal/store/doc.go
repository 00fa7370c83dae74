// Package store provides SQLite-backed storage for the solve run log.
//
// Every recorded run keeps the share code of the values it started from,
// so a run can be reproduced by rebuilding the same recipe shape and
// loading the code. Its derived steps are stored in the order the solver
// produced them.
//
// # Ordering
//
// Runs are ordered by seq, an autoincrement assigned on insert, never by
// wall time. Queries use ORDER BY seq ASC, id COLLATE BINARY ASC so
// results are identical across reads.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
