// Package sqlite stores conversation sessions and the rebuild schedule in a
// single SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database connection pool backs:
//
//   - SessionStore: sessions and their ordered turns
//   - SchedulerStore: scheduled task state and run history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files;
// an up migration and its schema_migrations row commit in one transaction.
//
// # Data Location
//
// By default, the database is stored at ~/.campus-rag/data/campus.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Writes start with BEGIN IMMEDIATE
// and wait on the busy timeout, so concurrent appends queue instead of failing.
package sqlite
