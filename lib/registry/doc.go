// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry ties the catalog, the blob store, and the content
// classifier into the registry's operation surface: library listings
// with latest-version resolution, per-library detail, file views with
// default-file selection, and the cascading deletes.
//
// A Registry owns the persisted layout: a root directory holding the
// registry.db catalog database and the store/ blob directory. It is
// opened once at process startup and injected into whatever serves
// requests; there are no package-level globals.
package registry
