// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"fmt"
	"sort"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// RegisterLibrary creates a library or, if the name is already taken,
// updates its metadata. Either way updated_at is refreshed. This is
// the write the publish collaborator performs before its first
// publish.
func (s *Store) RegisterLibrary(ctx context.Context, meta LibraryMeta) error {
	if err := meta.validate(); err != nil {
		return fmt.Errorf("catalog: register library: %w", err)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("catalog: register library: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("catalog: register library: begin: %w", err)
	}
	defer endTransaction(&err)

	now := s.clock.Now().UnixNano()

	existingID, lookupErr := libraryIDByName(conn, meta.Name)
	switch {
	case lookupErr == nil:
		err = sqlitex.Execute(conn,
			`UPDATE libraries SET import_name = ?, description = ?, language = ?,
				framework = ?, author = ?, license = ?, keywords = ?, updated_at = ?
				WHERE id = ?`,
			&sqlitex.ExecOptions{
				Args: []any{
					meta.ImportName, meta.Description, meta.Language,
					meta.Framework, meta.Author, meta.License, meta.Keywords,
					now, existingID,
				},
			})
		if err != nil {
			return fmt.Errorf("catalog: updating library %q: %w", meta.Name, err)
		}
	case isNotFound(lookupErr):
		err = sqlitex.Execute(conn,
			`INSERT INTO libraries
				(name, import_name, description, language, framework, author,
				 license, keywords, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{
					meta.Name, meta.ImportName, meta.Description, meta.Language,
					meta.Framework, meta.Author, meta.License, meta.Keywords,
					now, now,
				},
			})
		if err != nil {
			return fmt.Errorf("catalog: inserting library %q: %w", meta.Name, err)
		}
	default:
		err = lookupErr
		return err
	}

	s.logger.Info("library registered", "name", meta.Name)
	return nil
}

// PublishVersion records a new version of a library with its file
// manifest, all in one transaction: the version row, the manifest
// rows, and the library's updated_at refresh commit together or not at
// all. ErrNotFound if the library is not registered; ErrExists if the
// (library, version) pair is already published.
func (s *Store) PublishVersion(ctx context.Context, name, version string, files map[string]string) error {
	if version == "" {
		return fmt.Errorf("catalog: publish %q: version must not be empty", name)
	}
	if err := validateManifest(files); err != nil {
		return fmt.Errorf("catalog: publish %s@%s: %w", name, version, err)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("catalog: publish %s@%s: %w", name, version, err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("catalog: publish %s@%s: begin: %w", name, version, err)
	}
	defer endTransaction(&err)

	libraryID, err := libraryIDByName(conn, name)
	if err != nil {
		return err
	}

	if _, lookupErr := versionID(conn, libraryID, version); lookupErr == nil {
		err = fmt.Errorf("catalog: version %s of %q: %w", version, name, ErrExists)
		return err
	} else if !isNotFound(lookupErr) {
		err = lookupErr
		return err
	}

	now := s.clock.Now().UnixNano()

	err = sqlitex.Execute(conn,
		"INSERT INTO versions (library_id, version, created_at) VALUES (?, ?, ?)",
		&sqlitex.ExecOptions{Args: []any{libraryID, version, now}})
	if err != nil {
		return fmt.Errorf("catalog: inserting version %s of %q: %w", version, name, err)
	}
	newVersionID := conn.LastInsertRowID()

	// Deterministic insert order; reads sort by path regardless.
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		err = sqlitex.Execute(conn,
			"INSERT INTO package_files (version_id, file_path, file_hash) VALUES (?, ?, ?)",
			&sqlitex.ExecOptions{Args: []any{newVersionID, path, files[path]}})
		if err != nil {
			return fmt.Errorf("catalog: inserting file %q for %s@%s: %w", path, name, version, err)
		}
	}

	err = touchLibrary(conn, libraryID, now)
	if err != nil {
		return err
	}

	s.logger.Info("version published",
		"library", name,
		"version", version,
		"files", len(files),
	)
	return nil
}

// libraryIDByName resolves a library name to its row ID on an
// already-held connection. ErrNotFound when absent.
func libraryIDByName(conn *sqlite.Conn, name string) (int64, error) {
	var id int64
	found := false
	err := sqlitex.Execute(conn,
		"SELECT id FROM libraries WHERE name = ?",
		&sqlitex.ExecOptions{
			Args: []any{name},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				id = stmt.ColumnInt64(0)
				found = true
				return nil
			},
		})
	if err != nil {
		return 0, fmt.Errorf("catalog: library %q: %w", name, err)
	}
	if !found {
		return 0, fmt.Errorf("catalog: library %q: %w", name, ErrNotFound)
	}
	return id, nil
}

// touchLibrary refreshes a library's updated_at. Runs inside the
// caller's transaction.
func touchLibrary(conn *sqlite.Conn, libraryID int64, now int64) error {
	err := sqlitex.Execute(conn,
		"UPDATE libraries SET updated_at = ? WHERE id = ?",
		&sqlitex.ExecOptions{Args: []any{now, libraryID}})
	if err != nil {
		return fmt.Errorf("catalog: touching library %d: %w", libraryID, err)
	}
	return nil
}
