// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"fmt"

	"github.com/Liiesl/nlpm/lib/catalog"
	"github.com/Liiesl/nlpm/lib/classify"
)

// LibrarySummary pairs a library with its resolved latest version
// string for listing pages.
type LibrarySummary struct {
	Library       catalog.Library
	LatestVersion string
}

// LibraryDetail is one library with its versions, newest first.
type LibraryDetail struct {
	Library  catalog.Library
	Versions []catalog.Version
}

// FileView is the browsable view of one version: the full ordered
// file tree, the selected file, and its classified content. An empty
// manifest yields zero Paths and an empty SelectedPath; callers render
// an empty state.
type FileView struct {
	// Paths is every file path in the version, ascending.
	Paths []string

	// SelectedPath is the displayed file, "" when the version has no
	// files.
	SelectedPath string

	// Hash is the selected file's content address, "" when nothing is
	// selected.
	Hash string

	// Content is the classified content of the selected file.
	Content classify.Content
}

// Libraries returns every library ordered by last update, each with
// its latest version string (the "0.0.0" sentinel for libraries with
// no published versions).
func (r *Registry) Libraries(ctx context.Context) ([]LibrarySummary, error) {
	libraries, err := r.catalog.Libraries(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]LibrarySummary, 0, len(libraries))
	for _, library := range libraries {
		latest, err := r.catalog.LatestVersion(ctx, library.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, LibrarySummary{
			Library:       library,
			LatestVersion: latest,
		})
	}
	return summaries, nil
}

// LibraryDetail returns one library and its versions newest first.
// ErrNotFound if the library does not exist.
func (r *Registry) LibraryDetail(ctx context.Context, name string) (LibraryDetail, error) {
	library, err := r.catalog.Library(ctx, name)
	if err != nil {
		return LibraryDetail{}, err
	}
	versions, err := r.catalog.Versions(ctx, library.ID)
	if err != nil {
		return LibraryDetail{}, err
	}
	return LibraryDetail{Library: library, Versions: versions}, nil
}

// FileView assembles the file view for one version. requestedPath
// selects a specific file; "" or RootPath selects the default file
// (readme first, then lexically smallest). ErrNotFound for an unknown
// library, version, or requested path; ErrBlobMissing when the
// selected file's content is absent from the blob store.
func (r *Registry) FileView(ctx context.Context, name, version, requestedPath string) (FileView, error) {
	library, err := r.catalog.Library(ctx, name)
	if err != nil {
		return FileView{}, err
	}
	versionID, err := r.catalog.VersionID(ctx, library.ID, version)
	if err != nil {
		return FileView{}, err
	}

	// One ordered query yields both the navigation list and the
	// path→hash mapping.
	files, err := r.catalog.Files(ctx, versionID)
	if err != nil {
		return FileView{}, err
	}

	paths := make([]string, len(files))
	hashByPath := make(map[string]string, len(files))
	for i, file := range files {
		paths[i] = file.Path
		hashByPath[file.Path] = file.Hash
	}

	var selected string
	if requestedPath == "" || requestedPath == RootPath {
		chosen, ok := DefaultFile(paths)
		if !ok {
			return FileView{}, nil
		}
		selected = chosen
	} else {
		if _, ok := hashByPath[requestedPath]; !ok {
			return FileView{}, fmt.Errorf("registry: file %q in %s@%s: %w",
				requestedPath, name, version, ErrNotFound)
		}
		selected = requestedPath
	}

	hash := hashByPath[selected]
	content, err := r.blobs.Get(hash)
	if err != nil {
		return FileView{}, err
	}

	return FileView{
		Paths:        paths,
		SelectedPath: selected,
		Hash:         hash,
		Content:      classify.Classify(content),
	}, nil
}

// RegisterLibrary creates or updates a library's metadata.
func (r *Registry) RegisterLibrary(ctx context.Context, meta catalog.LibraryMeta) error {
	return r.catalog.RegisterLibrary(ctx, meta)
}

// PublishVersion records a version with its path→hash manifest. The
// registry does not verify the hashes exist in the blob store; a
// manifest entry whose blob never arrived surfaces as ErrBlobMissing
// at read time.
func (r *Registry) PublishVersion(ctx context.Context, name, version string, files map[string]string) error {
	return r.catalog.PublishVersion(ctx, name, version, files)
}

// DeleteVersion removes one version and its manifest atomically. Blob
// content is never reclaimed.
func (r *Registry) DeleteVersion(ctx context.Context, name, version string) error {
	return r.catalog.DeleteVersion(ctx, name, version)
}

// DeleteLibrary removes a library with all versions and manifests
// atomically. Blob content is never reclaimed.
func (r *Registry) DeleteLibrary(ctx context.Context, name string) error {
	return r.catalog.DeleteLibrary(ctx, name)
}
