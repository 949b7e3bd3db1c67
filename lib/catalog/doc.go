// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

// Package catalog implements the registry's relational catalog: the
// libraries, their published versions, and the per-version file
// manifests mapping relative paths to content hashes in the blob
// store.
//
// Storage is SQLite in WAL mode through lib/sqlitepool, which gives
// the catalog its concurrency model for free: readers see consistent
// snapshots and never block, while mutations run in IMMEDIATE
// transactions that serialize against each other. Every mutating
// operation — publish, version delete, library delete — is a single
// transaction that either commits whole or rolls back whole; no
// partial cascade is ever visible.
//
// Ownership follows the schema: a library owns its versions, a version
// owns its package_files rows. File rows reference blobs by hash only;
// deleting catalog rows never deletes blob content, and the same hash
// may be shared by any number of file rows across versions and
// libraries.
package catalog
