// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

package registry_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Liiesl/nlpm/lib/blobstore"
	"github.com/Liiesl/nlpm/lib/catalog"
	"github.com/Liiesl/nlpm/lib/classify"
	"github.com/Liiesl/nlpm/lib/clock"
	"github.com/Liiesl/nlpm/lib/registry"
)

func openTestRegistry(t *testing.T) (*registry.Registry, *clock.FakeClock, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "nlpm")
	fake := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	reg, err := registry.Open(registry.Config{Root: root, Clock: fake})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := reg.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return reg, fake, root
}

// publishTestVersion stores each file's content as a blob and
// publishes the resulting manifest.
func publishTestVersion(t *testing.T, reg *registry.Registry, name, version string, files map[string]string) {
	t.Helper()
	ctx := context.Background()
	if err := reg.RegisterLibrary(ctx, catalog.LibraryMeta{Name: name}); err != nil {
		t.Fatalf("RegisterLibrary(%q): %v", name, err)
	}
	manifest := make(map[string]string, len(files))
	for path, content := range files {
		hash, err := reg.AddBlob(bytes.NewReader([]byte(content)))
		if err != nil {
			t.Fatalf("AddBlob(%q): %v", path, err)
		}
		manifest[path] = hash
	}
	if err := reg.PublishVersion(ctx, name, version, manifest); err != nil {
		t.Fatalf("PublishVersion(%s@%s): %v", name, version, err)
	}
}

func TestOpenCreatesLayout(t *testing.T) {
	_, _, root := openTestRegistry(t)

	if _, err := os.Stat(filepath.Join(root, registry.DatabaseFile)); err != nil {
		t.Errorf("catalog database missing: %v", err)
	}
	if info, err := os.Stat(filepath.Join(root, registry.StoreDir)); err != nil || !info.IsDir() {
		t.Errorf("store directory missing: %v", err)
	}
}

func TestLibrariesWithLatest(t *testing.T) {
	reg, fake, _ := openTestRegistry(t)
	ctx := context.Background()

	// acme scenario: 1.0.0 at T1, 1.1.0 at T2 > T1.
	publishTestVersion(t, reg, "acme", "1.0.0", map[string]string{"a.js": "v1"})
	fake.Advance(time.Hour)
	if err := reg.PublishVersion(ctx, "acme", "1.1.0", nil); err != nil {
		t.Fatalf("PublishVersion 1.1.0: %v", err)
	}

	// A library with no versions resolves to the sentinel.
	if err := reg.RegisterLibrary(ctx, catalog.LibraryMeta{Name: "empty"}); err != nil {
		t.Fatalf("RegisterLibrary: %v", err)
	}

	summaries, err := reg.Libraries(ctx)
	if err != nil {
		t.Fatalf("Libraries: %v", err)
	}
	byName := make(map[string]string, len(summaries))
	for _, summary := range summaries {
		byName[summary.Library.Name] = summary.LatestVersion
	}
	if byName["acme"] != "1.1.0" {
		t.Errorf("latest(acme) = %q, want %q", byName["acme"], "1.1.0")
	}
	if byName["empty"] != "0.0.0" {
		t.Errorf("latest(empty) = %q, want %q", byName["empty"], "0.0.0")
	}
}

func TestLibraryDetail(t *testing.T) {
	reg, fake, _ := openTestRegistry(t)

	publishTestVersion(t, reg, "acme", "1.0.0", nil)
	fake.Advance(time.Hour)
	if err := reg.PublishVersion(context.Background(), "acme", "1.1.0", nil); err != nil {
		t.Fatalf("PublishVersion: %v", err)
	}

	detail, err := reg.LibraryDetail(context.Background(), "acme")
	if err != nil {
		t.Fatalf("LibraryDetail: %v", err)
	}
	if detail.Library.Name != "acme" {
		t.Errorf("Name = %q, want acme", detail.Library.Name)
	}
	if len(detail.Versions) != 2 || detail.Versions[0].Version != "1.1.0" {
		t.Errorf("versions = %v, want [1.1.0 1.0.0]", detail.Versions)
	}

	if _, err := reg.LibraryDetail(context.Background(), "ghost"); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("LibraryDetail(ghost) = %v, want ErrNotFound", err)
	}
}

func TestFileViewSelectsReadme(t *testing.T) {
	reg, _, _ := openTestRegistry(t)

	publishTestVersion(t, reg, "acme", "1.0.0", map[string]string{
		"src/a.js":  "let a = 1\n",
		"README.md": "# acme\n",
		"lib/b.js":  "let b = 2\n",
	})

	view, err := reg.FileView(context.Background(), "acme", "1.0.0", registry.RootPath)
	if err != nil {
		t.Fatalf("FileView: %v", err)
	}
	if view.SelectedPath != "README.md" {
		t.Errorf("SelectedPath = %q, want README.md", view.SelectedPath)
	}
	wantPaths := []string{"README.md", "lib/b.js", "src/a.js"}
	if len(view.Paths) != len(wantPaths) {
		t.Fatalf("Paths = %v, want %v", view.Paths, wantPaths)
	}
	for i, want := range wantPaths {
		if view.Paths[i] != want {
			t.Errorf("Paths[%d] = %q, want %q", i, view.Paths[i], want)
		}
	}
	if view.Content.Kind != classify.Text || view.Content.Text != "# acme\n" {
		t.Errorf("Content = %+v, want text %q", view.Content, "# acme\n")
	}
}

func TestFileViewNoReadmePicksSmallest(t *testing.T) {
	reg, _, _ := openTestRegistry(t)

	publishTestVersion(t, reg, "acme", "1.0.0", map[string]string{
		"src/z.js": "z",
		"lib/a.js": "a",
	})

	view, err := reg.FileView(context.Background(), "acme", "1.0.0", "")
	if err != nil {
		t.Fatalf("FileView: %v", err)
	}
	if view.SelectedPath != "lib/a.js" {
		t.Errorf("SelectedPath = %q, want lib/a.js", view.SelectedPath)
	}
}

func TestFileViewExplicitPath(t *testing.T) {
	reg, _, _ := openTestRegistry(t)

	publishTestVersion(t, reg, "acme", "1.0.0", map[string]string{
		"README.md": "# acme\n",
		"src/a.js":  "let a = 1\n",
	})

	view, err := reg.FileView(context.Background(), "acme", "1.0.0", "src/a.js")
	if err != nil {
		t.Fatalf("FileView: %v", err)
	}
	if view.SelectedPath != "src/a.js" {
		t.Errorf("SelectedPath = %q, want src/a.js", view.SelectedPath)
	}
	if view.Content.Text != "let a = 1\n" {
		t.Errorf("Content.Text = %q, want %q", view.Content.Text, "let a = 1\n")
	}

	_, err = reg.FileView(context.Background(), "acme", "1.0.0", "missing.js")
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("FileView(missing path) = %v, want ErrNotFound", err)
	}
}

func TestFileViewEmptyManifest(t *testing.T) {
	reg, _, _ := openTestRegistry(t)

	publishTestVersion(t, reg, "acme", "1.0.0", nil)

	view, err := reg.FileView(context.Background(), "acme", "1.0.0", registry.RootPath)
	if err != nil {
		t.Fatalf("FileView: %v", err)
	}
	if view.SelectedPath != "" || len(view.Paths) != 0 {
		t.Errorf("empty version view = %+v, want empty state", view)
	}
}

func TestFileViewBinaryContent(t *testing.T) {
	reg, _, _ := openTestRegistry(t)

	publishTestVersion(t, reg, "acme", "1.0.0", map[string]string{
		"data.bin": "head\x00tail",
	})

	view, err := reg.FileView(context.Background(), "acme", "1.0.0", "data.bin")
	if err != nil {
		t.Fatalf("FileView: %v", err)
	}
	if view.Content.Kind != classify.Binary {
		t.Errorf("Kind = %v, want Binary", view.Content.Kind)
	}
	if view.Content.Text != "" {
		t.Errorf("binary content leaked text %q", view.Content.Text)
	}
}

func TestFileViewBlobMissing(t *testing.T) {
	reg, _, _ := openTestRegistry(t)
	ctx := context.Background()

	if err := reg.RegisterLibrary(ctx, catalog.LibraryMeta{Name: "acme"}); err != nil {
		t.Fatalf("RegisterLibrary: %v", err)
	}
	// A manifest entry whose blob was never ingested.
	orphan := blobstore.HashBytes([]byte("never stored"))
	if err := reg.PublishVersion(ctx, "acme", "1.0.0", map[string]string{"a.js": orphan}); err != nil {
		t.Fatalf("PublishVersion: %v", err)
	}

	_, err := reg.FileView(ctx, "acme", "1.0.0", "a.js")
	if !errors.Is(err, registry.ErrBlobMissing) {
		t.Errorf("FileView with orphan hash = %v, want ErrBlobMissing", err)
	}
}

func TestFileViewUnknownVersion(t *testing.T) {
	reg, _, _ := openTestRegistry(t)

	publishTestVersion(t, reg, "acme", "1.0.0", nil)

	_, err := reg.FileView(context.Background(), "acme", "9.9.9", registry.RootPath)
	if !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("FileView(unknown version) = %v, want ErrNotFound", err)
	}
}

func TestDeleteVersionKeepsBlobsAndSibling(t *testing.T) {
	reg, fake, _ := openTestRegistry(t)
	ctx := context.Background()

	publishTestVersion(t, reg, "acme", "1.0.0", map[string]string{"shared.js": "shared content"})
	fake.Advance(time.Hour)
	// 1.1.0 shares the same blob (dedup across versions).
	hash, err := reg.AddBlob(bytes.NewReader([]byte("shared content")))
	if err != nil {
		t.Fatalf("AddBlob: %v", err)
	}
	if err := reg.PublishVersion(ctx, "acme", "1.1.0", map[string]string{"shared.js": hash}); err != nil {
		t.Fatalf("PublishVersion 1.1.0: %v", err)
	}

	if err := reg.DeleteVersion(ctx, "acme", "1.0.0"); err != nil {
		t.Fatalf("DeleteVersion: %v", err)
	}

	if _, err := reg.FileView(ctx, "acme", "1.0.0", registry.RootPath); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("FileView of deleted version = %v, want ErrNotFound", err)
	}

	// The sibling still reads its content: the shared blob survived.
	view, err := reg.FileView(ctx, "acme", "1.1.0", "shared.js")
	if err != nil {
		t.Fatalf("FileView of sibling: %v", err)
	}
	if view.Content.Text != "shared content" {
		t.Errorf("sibling content = %q, want %q", view.Content.Text, "shared content")
	}
}

func TestDeleteLibraryLeavesBlobs(t *testing.T) {
	reg, _, root := openTestRegistry(t)
	ctx := context.Background()

	publishTestVersion(t, reg, "acme", "1.0.0", map[string]string{"a.js": "content"})
	hash := blobstore.HashBytes([]byte("content"))

	if err := reg.DeleteLibrary(ctx, "acme"); err != nil {
		t.Fatalf("DeleteLibrary: %v", err)
	}
	if _, err := reg.LibraryDetail(ctx, "acme"); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("LibraryDetail after delete = %v, want ErrNotFound", err)
	}

	// No blob reclamation: the orphaned blob stays on disk.
	blobPath := filepath.Join(root, registry.StoreDir, hash[:2], hash[2:])
	if _, err := os.Stat(blobPath); err != nil {
		t.Errorf("orphaned blob removed from store: %v", err)
	}
}
