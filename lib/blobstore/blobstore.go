// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

// Package blobstore implements the registry's content-addressed file
// store. Blobs are identified by the hex SHA-256 of their content and
// laid out on disk as <root>/<first 2 hex chars>/<remaining 62>, the
// two-level sharding that keeps directory fan-out bounded.
//
// The store knows nothing about libraries or versions; the catalog
// references blobs by hash and never owns them. Reads are inherently
// race-free — a hash uniquely determines its content and stored blobs
// are immutable. The write side (Add) exists for the publish
// collaborator and deduplicates by construction: identical content
// hashes to the identical path.
package blobstore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrBlobMissing reports that a hash present in the catalog has no
// content in the store. It is user-visible and recoverable — distinct
// from an I/O failure reading a blob that is there.
var ErrBlobMissing = errors.New("blob missing from store")

// HashLength is the length of a hex-encoded SHA-256 digest.
const HashLength = 64

// Store is a handle on the blob store root directory. Safe for
// concurrent use; reads take no locks.
type Store struct {
	root string
}

// Open returns a Store rooted at the given directory, creating it if
// needed. Shard subdirectories are created lazily on first Add.
func Open(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: creating store root %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

// Path returns the sharded filesystem path for a hash.
func (s *Store) Path(hash string) (string, error) {
	if err := ValidateHash(hash); err != nil {
		return "", err
	}
	return filepath.Join(s.root, hash[:2], hash[2:]), nil
}

// Get returns the content stored under hash. ErrBlobMissing when the
// blob is not in the store; any other error is an I/O failure.
func (s *Store) Get(hash string) ([]byte, error) {
	path, err := s.Path(hash)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("blobstore: %s: %w", hash, ErrBlobMissing)
		}
		return nil, fmt.Errorf("blobstore: reading %s: %w", hash, err)
	}
	return data, nil
}

// Exists reports whether the blob is in the store.
func (s *Store) Exists(hash string) bool {
	path, err := s.Path(hash)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Add stores the content read from r and returns its hash. If the
// blob already exists the content is discarded and the existing entry
// stands — same hash, same bytes. New blobs land via temp file and
// atomic rename so a crash never leaves a partial blob at a final
// path.
func (s *Store) Add(r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("blobstore: reading content: %w", err)
	}

	hash := HashBytes(content)
	finalPath, err := s.Path(hash)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(finalPath); err == nil {
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return "", fmt.Errorf("blobstore: creating shard directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.root, "blob-*")
	if err != nil {
		return "", fmt.Errorf("blobstore: creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("blobstore: writing blob %s: %w", hash, err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("blobstore: closing blob %s: %w", hash, err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("blobstore: renaming blob to %s: %w", finalPath, err)
	}

	success = true
	return hash, nil
}

// HashBytes returns the hex SHA-256 of content, the store's canonical
// blob identity.
func HashBytes(content []byte) string {
	digest := sha256.Sum256(content)
	return hex.EncodeToString(digest[:])
}

// HashFile streams the file at path through SHA-256 with constant
// memory and returns the hex digest.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("blobstore: opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("blobstore: hashing %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// ValidateHash checks that hash is a well-formed lowercase hex SHA-256
// digest. Malformed hashes are rejected before any path construction.
func ValidateHash(hash string) error {
	if len(hash) != HashLength {
		return fmt.Errorf("blobstore: hash %q is %d characters, want %d", hash, len(hash), HashLength)
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("blobstore: hash %q is not lowercase hex", hash)
		}
	}
	return nil
}
