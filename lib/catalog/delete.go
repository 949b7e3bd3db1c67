// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"errors"
	"fmt"

	"zombiezen.com/go/sqlite/sqlitex"
)

// DeleteVersion removes one version of a library: its manifest rows,
// then the version row, then a refresh of the library's updated_at.
// The whole cascade is one IMMEDIATE transaction — it commits entirely
// or not at all. ErrNotFound if the library or the version does not
// exist; two racing deletes of the same version serialize on the
// transaction lock and the loser re-checks and reports ErrNotFound.
//
// Blob content referenced by the deleted manifest is never touched.
func (s *Store) DeleteVersion(ctx context.Context, name, version string) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("catalog: delete version %s@%s: %w", name, version, err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("catalog: delete version %s@%s: begin: %w", name, version, err)
	}
	defer endTransaction(&err)

	libraryID, err := libraryIDByName(conn, name)
	if err != nil {
		return err
	}

	id, err := versionID(conn, libraryID, version)
	if err != nil {
		return err
	}

	err = sqlitex.Execute(conn,
		"DELETE FROM package_files WHERE version_id = ?",
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("catalog: deleting files of %s@%s: %w", name, version, err)
	}

	err = sqlitex.Execute(conn,
		"DELETE FROM versions WHERE id = ?",
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("catalog: deleting version %s@%s: %w", name, version, err)
	}

	err = touchLibrary(conn, libraryID, s.clock.Now().UnixNano())
	if err != nil {
		return err
	}

	s.logger.Info("version deleted", "library", name, "version", version)
	return nil
}

// DeleteLibrary removes a library and everything it owns: every
// manifest row of every version, every version row, then the library
// row, in one transaction. ErrNotFound if the library does not exist.
//
// Blob content is never touched; orphaned blobs stay on disk.
func (s *Store) DeleteLibrary(ctx context.Context, name string) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("catalog: delete library %q: %w", name, err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("catalog: delete library %q: begin: %w", name, err)
	}
	defer endTransaction(&err)

	libraryID, err := libraryIDByName(conn, name)
	if err != nil {
		return err
	}

	err = sqlitex.Execute(conn,
		"DELETE FROM package_files WHERE version_id IN "+
			"(SELECT id FROM versions WHERE library_id = ?)",
		&sqlitex.ExecOptions{Args: []any{libraryID}})
	if err != nil {
		return fmt.Errorf("catalog: deleting files of library %q: %w", name, err)
	}

	err = sqlitex.Execute(conn,
		"DELETE FROM versions WHERE library_id = ?",
		&sqlitex.ExecOptions{Args: []any{libraryID}})
	if err != nil {
		return fmt.Errorf("catalog: deleting versions of library %q: %w", name, err)
	}

	err = sqlitex.Execute(conn,
		"DELETE FROM libraries WHERE id = ?",
		&sqlitex.ExecOptions{Args: []any{libraryID}})
	if err != nil {
		return fmt.Errorf("catalog: deleting library %q: %w", name, err)
	}

	s.logger.Info("library deleted", "library", name)
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
