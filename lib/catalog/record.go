// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Library is one row of the libraries table. Name is the external key;
// ID is internal to the catalog.
type Library struct {
	ID          int64
	Name        string
	ImportName  string
	Description string
	Language    string
	Framework   string
	Author      string
	License     string
	Keywords    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// KeywordList splits the comma-separated keywords column into trimmed
// tags, preserving order and dropping empties.
func (l Library) KeywordList() []string {
	if l.Keywords == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(l.Keywords, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Version is one published version of a library. The version string is
// opaque to the catalog; ordering is by CreatedAt.
type Version struct {
	ID        int64
	LibraryID int64
	Version   string
	CreatedAt time.Time
}

// PackageFile is one manifest entry: a relative path within a version
// and the content hash it resolves to in the blob store. The hash is a
// non-owning reference — many file rows may share one blob.
type PackageFile struct {
	ID        int64
	VersionID int64
	Path      string
	Hash      string
}

// LibraryMeta carries the caller-supplied metadata for registering or
// updating a library. Name is required; everything else may be empty.
type LibraryMeta struct {
	Name        string
	ImportName  string
	Description string
	Language    string
	Framework   string
	Author      string
	License     string
	Keywords    string
}

func (m LibraryMeta) validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("library name must not be empty")
	}
	return nil
}

// validateManifest checks the publish invariants on a path→hash
// manifest: every path relative and non-empty, every hash non-empty.
// Path uniqueness is structural (map keys) and additionally enforced
// by the package_files unique index.
func validateManifest(files map[string]string) error {
	for path, hash := range files {
		if path == "" {
			return fmt.Errorf("manifest contains an empty file path")
		}
		if strings.HasPrefix(path, "/") {
			return fmt.Errorf("manifest path %q is absolute, want relative", path)
		}
		for _, element := range strings.Split(path, "/") {
			if element == ".." {
				return fmt.Errorf("manifest path %q escapes the package root", path)
			}
		}
		if hash == "" {
			return fmt.Errorf("manifest path %q has an empty hash", path)
		}
	}
	return nil
}
