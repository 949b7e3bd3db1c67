// Copyright 2026 The NLPM Authors
// SPDX-License-Identifier: Apache-2.0

// Package classify decides whether retrieved blob content is
// previewable text or opaque binary.
//
// The rule is the null-byte heuristic: content containing any NUL byte
// is binary, everything else is treated as UTF-8 text. This is a
// heuristic, not a guarantee — binary formats without NUL bytes will
// classify as text. Callers render binary results as a "no preview"
// placeholder and never interpolate them.
package classify

import "bytes"

// Kind discriminates a classification result.
type Kind int

const (
	// Text content is safe to render as a string.
	Text Kind = iota
	// Binary content must not be decoded; render a placeholder.
	Binary
)

// Content is the classification of one blob.
type Content struct {
	Kind Kind

	// Text holds the decoded content when Kind is Text. Always empty
	// for Binary.
	Text string
}

// Classify applies the null-byte heuristic to data.
func Classify(data []byte) Content {
	if bytes.IndexByte(data, 0) >= 0 {
		return Content{Kind: Binary}
	}
	return Content{Kind: Text, Text: string(data)}
}
