// Package repositories implements SQLite persistence for the engine's run
// history.
//
// Every fetch, transfer, and delete invocation is recorded as a run with its
// final status and per-group counters, so past migrations can be inspected
// from the CLI after the in-memory state is gone.
package repositories
