// Package store provides the SQLite-backed todo.Store.
//
// The database holds three tables:
//   - entries: one row per live entry, keyed by its id (INTEGER PRIMARY KEY)
//   - counters: the persisted id allocator, separate from entries
//   - settings: instance metadata such as the list owner
//
// # Atomicity
//
// Every mutation runs in a single transaction. Creation reads the counter,
// inserts the entry and advances the counter before committing, so a crash
// at any point either leaves all three effects or none of them.
//
// # Deterministic Query Results
//
// Range queries always use ORDER BY id ASC with an exclusive lower bound
// (id > start_after), so pagination is stable across deletes.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// SQLite stores signed 64-bit integers. Ids above math.MaxInt64 are
// unreachable through the allocator, so lookups for them report not found
// and range queries starting beyond them are empty.
package store
