// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import "strings"

// RootPath is the pseudo-path callers pass to FileView to request the
// default file instead of a specific one.
const RootPath = "root"

// DefaultFile selects the file to display when none was requested.
// paths must be in ascending lexical order (the order the catalog
// returns manifests in). The first path whose lowercase form contains
// "readme" wins; with no readme, the lexically smallest path wins.
// Returns false when the manifest is empty — the caller renders an
// empty state.
func DefaultFile(paths []string) (string, bool) {
	for _, path := range paths {
		if strings.Contains(strings.ToLower(path), "readme") {
			return path, true
		}
	}
	if len(paths) > 0 {
		return paths[0], true
	}
	return "", false
}
