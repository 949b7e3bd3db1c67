// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/Liiesl/nlpm/lib/clock"
	"github.com/Liiesl/nlpm/lib/sqlitepool"
)

// ErrNotFound reports that a library, version, or file the operation
// was addressed to does not exist in the catalog. Any other error from
// a catalog operation is a storage failure.
var ErrNotFound = errors.New("not found")

// ErrExists reports that a publish collided with an existing
// (library, version) pair.
var ErrExists = errors.New("already exists")

// schema is applied to every pooled connection. CREATE IF NOT EXISTS
// makes it idempotent across connections and restarts.
//
// Timestamps are Unix nanoseconds. The (library_id, version) and
// (version_id, file_path) uniqueness constraints are the catalog's
// core invariants; the unique indexes also serve the cascade deletes
// and the manifest ORDER BY file_path read.
const schema = `
	CREATE TABLE IF NOT EXISTS libraries (
		id          INTEGER PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		import_name TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		language    TEXT NOT NULL DEFAULT '',
		framework   TEXT NOT NULL DEFAULT '',
		author      TEXT NOT NULL DEFAULT '',
		license     TEXT NOT NULL DEFAULT '',
		keywords    TEXT NOT NULL DEFAULT '',
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_libraries_updated ON libraries(updated_at);

	CREATE TABLE IF NOT EXISTS versions (
		id         INTEGER PRIMARY KEY,
		library_id INTEGER NOT NULL,
		version    TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE(library_id, version)
	);
	CREATE INDEX IF NOT EXISTS idx_versions_library ON versions(library_id, created_at);

	CREATE TABLE IF NOT EXISTS package_files (
		id         INTEGER PRIMARY KEY,
		version_id INTEGER NOT NULL,
		file_path  TEXT NOT NULL,
		file_hash  TEXT NOT NULL,
		UNIQUE(version_id, file_path)
	);
`

// Config holds the parameters for opening a catalog store.
type Config struct {
	// Path is the filesystem path to the catalog database file
	// (conventionally <root>/registry.db).
	Path string

	// PoolSize is the connection pool size. Defaults to 4.
	PoolSize int

	// Clock provides timestamps for created_at/updated_at columns.
	// Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives operational messages. Nil means discard.
	Logger *slog.Logger
}

// Store is the catalog handle. It is opened once at process startup,
// shared by all operations, and closed at shutdown. Safe for
// concurrent use.
type Store struct {
	pool   *sqlitepool.Pool
	clock  clock.Clock
	logger *slog.Logger
}

// Open opens (creating if necessary) the catalog database and applies
// the schema. The caller must Close the store when done.
func Open(cfg Config) (*Store, error) {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: cfg.PoolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	return &Store{pool: pool, clock: clk, logger: logger}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}
