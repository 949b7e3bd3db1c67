// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// NoVersionSentinel is what latest-version resolution reports for a
// library that has no published versions. Callers render it directly
// instead of treating an empty library as an error.
const NoVersionSentinel = "0.0.0"

const libraryColumns = "id, name, import_name, description, language, framework, " +
	"author, license, keywords, created_at, updated_at"

// Library returns the library with the given name. ErrNotFound if it
// does not exist.
func (s *Store) Library(ctx context.Context, name string) (Library, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return Library{}, fmt.Errorf("catalog: library: %w", err)
	}
	defer s.pool.Put(conn)

	return libraryByName(conn, name)
}

func libraryByName(conn *sqlite.Conn, name string) (Library, error) {
	var library Library
	found := false
	err := sqlitex.Execute(conn,
		"SELECT "+libraryColumns+" FROM libraries WHERE name = ?",
		&sqlitex.ExecOptions{
			Args: []any{name},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				library = scanLibrary(stmt)
				found = true
				return nil
			},
		})
	if err != nil {
		return Library{}, fmt.Errorf("catalog: library %q: %w", name, err)
	}
	if !found {
		return Library{}, fmt.Errorf("catalog: library %q: %w", name, ErrNotFound)
	}
	return library, nil
}

// Libraries returns all libraries ordered by updated_at descending
// (most recently changed first).
func (s *Store) Libraries(ctx context.Context) ([]Library, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: libraries: %w", err)
	}
	defer s.pool.Put(conn)

	var libraries []Library
	err = sqlitex.Execute(conn,
		"SELECT "+libraryColumns+" FROM libraries ORDER BY updated_at DESC, name ASC",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				libraries = append(libraries, scanLibrary(stmt))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("catalog: libraries: %w", err)
	}
	return libraries, nil
}

// Versions returns a library's versions, newest first. Versions with
// identical created_at are ordered by version string descending — the
// documented tie-break for latest-version resolution.
func (s *Store) Versions(ctx context.Context, libraryID int64) ([]Version, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: versions: %w", err)
	}
	defer s.pool.Put(conn)

	var versions []Version
	err = sqlitex.Execute(conn,
		"SELECT id, library_id, version, created_at FROM versions "+
			"WHERE library_id = ? ORDER BY created_at DESC, version DESC",
		&sqlitex.ExecOptions{
			Args: []any{libraryID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				versions = append(versions, Version{
					ID:        stmt.ColumnInt64(0),
					LibraryID: stmt.ColumnInt64(1),
					Version:   stmt.ColumnText(2),
					CreatedAt: time.Unix(0, stmt.ColumnInt64(3)),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("catalog: versions of library %d: %w", libraryID, err)
	}
	return versions, nil
}

// LatestVersion resolves a library's latest version string: maximum
// created_at, ties broken by version string descending. Returns
// NoVersionSentinel when the library has no versions.
func (s *Store) LatestVersion(ctx context.Context, libraryID int64) (string, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return "", fmt.Errorf("catalog: latest version: %w", err)
	}
	defer s.pool.Put(conn)

	return latestVersion(conn, libraryID)
}

func latestVersion(conn *sqlite.Conn, libraryID int64) (string, error) {
	latest := NoVersionSentinel
	err := sqlitex.Execute(conn,
		"SELECT version FROM versions WHERE library_id = ? "+
			"ORDER BY created_at DESC, version DESC LIMIT 1",
		&sqlitex.ExecOptions{
			Args: []any{libraryID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				latest = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		return "", fmt.Errorf("catalog: latest version of library %d: %w", libraryID, err)
	}
	return latest, nil
}

// VersionID resolves a (library, version string) pair to the version
// row ID. ErrNotFound if the library has no such version.
func (s *Store) VersionID(ctx context.Context, libraryID int64, version string) (int64, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("catalog: version id: %w", err)
	}
	defer s.pool.Put(conn)

	return versionID(conn, libraryID, version)
}

func versionID(conn *sqlite.Conn, libraryID int64, version string) (int64, error) {
	var id int64
	found := false
	err := sqlitex.Execute(conn,
		"SELECT id FROM versions WHERE library_id = ? AND version = ?",
		&sqlitex.ExecOptions{
			Args: []any{libraryID, version},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				id = stmt.ColumnInt64(0)
				found = true
				return nil
			},
		})
	if err != nil {
		return 0, fmt.Errorf("catalog: version %q of library %d: %w", version, libraryID, err)
	}
	if !found {
		return 0, fmt.Errorf("catalog: version %q of library %d: %w", version, libraryID, ErrNotFound)
	}
	return id, nil
}

// Files returns a version's manifest ordered by file path ascending.
// The single ordered query is the file-tree assembly: callers get the
// navigation order and the path→hash mapping from one result set.
func (s *Store) Files(ctx context.Context, versionID int64) ([]PackageFile, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: files: %w", err)
	}
	defer s.pool.Put(conn)

	var files []PackageFile
	err = sqlitex.Execute(conn,
		"SELECT id, version_id, file_path, file_hash FROM package_files "+
			"WHERE version_id = ? ORDER BY file_path ASC",
		&sqlitex.ExecOptions{
			Args: []any{versionID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				files = append(files, PackageFile{
					ID:        stmt.ColumnInt64(0),
					VersionID: stmt.ColumnInt64(1),
					Path:      stmt.ColumnText(2),
					Hash:      stmt.ColumnText(3),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("catalog: files of version %d: %w", versionID, err)
	}
	return files, nil
}

func scanLibrary(stmt *sqlite.Stmt) Library {
	// Columns: id(0), name(1), import_name(2), description(3),
	// language(4), framework(5), author(6), license(7), keywords(8),
	// created_at(9), updated_at(10)
	return Library{
		ID:          stmt.ColumnInt64(0),
		Name:        stmt.ColumnText(1),
		ImportName:  stmt.ColumnText(2),
		Description: stmt.ColumnText(3),
		Language:    stmt.ColumnText(4),
		Framework:   stmt.ColumnText(5),
		Author:      stmt.ColumnText(6),
		License:     stmt.ColumnText(7),
		Keywords:    stmt.ColumnText(8),
		CreatedAt:   time.Unix(0, stmt.ColumnInt64(9)),
		UpdatedAt:   time.Unix(0, stmt.ColumnInt64(10)),
	}
}
