// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the registry's SQLite connection pool.
//
// It wraps zombiezen.com/go/sqlite with the defaults the registry
// relies on: WAL journal mode so catalog reads run against consistent
// snapshots while a single writer commits, NORMAL synchronous for
// crash durability without fsync-per-commit cost, and a busy timeout
// so contending writers wait instead of failing with SQLITE_BUSY.
//
// Callers [Pool.Take] a connection, do their work, and [Pool.Put] it
// back. Connections are not safe for concurrent use; each goroutine
// holds its own connection for the duration of its work.
//
// The package is intentionally thin. It applies pragmas and hands out
// zombiezen types directly: callers write SQL, scan rows with
// sqlitex.Execute result callbacks, and wrap mutations in
// sqlitex.ImmediateTransaction. No query builder, no ORM.
package sqlitepool
