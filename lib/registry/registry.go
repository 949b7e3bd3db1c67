// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Liiesl/nlpm/lib/blobstore"
	"github.com/Liiesl/nlpm/lib/catalog"
	"github.com/Liiesl/nlpm/lib/clock"
)

// Persisted layout within the registry root. Must not change: existing
// deployments and the publish tooling depend on these names.
const (
	// DatabaseFile is the catalog database filename under the root.
	DatabaseFile = "registry.db"

	// StoreDir is the blob store directory name under the root.
	StoreDir = "store"
)

// ErrNotFound is the catalog's not-found sentinel, re-exported so
// callers of the registry surface need only this package to
// discriminate errors.
var ErrNotFound = catalog.ErrNotFound

// ErrBlobMissing is the blob store's missing-content sentinel.
var ErrBlobMissing = blobstore.ErrBlobMissing

// Config holds the parameters for opening a registry.
type Config struct {
	// Root is the registry root directory (conventionally ~/.nlpm).
	// Created if it does not exist. Required.
	Root string

	// PoolSize is the catalog connection pool size. Defaults to 4.
	PoolSize int

	// Clock provides catalog timestamps. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives operational messages. Nil means discard.
	Logger *slog.Logger
}

// Registry is the process-wide registry handle. Safe for concurrent
// use; its lifecycle belongs to the process entry point.
type Registry struct {
	catalog *catalog.Store
	blobs   *blobstore.Store
	logger  *slog.Logger
}

// Open opens the registry rooted at cfg.Root, creating the directory
// layout on first use. The caller must Close when done.
func Open(cfg Config) (*Registry, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("registry: Root is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("registry: creating root %s: %w", cfg.Root, err)
	}

	store, err := catalog.Open(catalog.Config{
		Path:     filepath.Join(cfg.Root, DatabaseFile),
		PoolSize: cfg.PoolSize,
		Clock:    cfg.Clock,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}

	blobs, err := blobstore.Open(filepath.Join(cfg.Root, StoreDir))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("registry: %w", err)
	}

	logger.Info("registry opened", "root", cfg.Root)

	return &Registry{catalog: store, blobs: blobs, logger: logger}, nil
}

// Close closes the catalog pool. The blob store holds no resources.
func (r *Registry) Close() error {
	return r.catalog.Close()
}

// AddBlob stores content in the blob store and returns its hash. This
// is the write-side primitive for the publish collaborator; the
// registry core itself never writes blobs.
func (r *Registry) AddBlob(content io.Reader) (string, error) {
	return r.blobs.Add(content)
}
