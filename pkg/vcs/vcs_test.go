// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package vcs

import "testing"

func TestParseTagRefsExtractsNamesFromLsRemoteOutput(t *testing.T) {
	out := "abc123\trefs/tags/v1.0.0\ndef456\trefs/tags/v1.2.0\n"
	tags := parseTagRefs(out)
	if len(tags) != 2 || tags[0] != "v1.0.0" || tags[1] != "v1.2.0" {
		t.Fatalf("unexpected tags: %v", tags)
	}
}

func TestParseTagRefsIgnoresMalformedLines(t *testing.T) {
	out := "not a valid line\nabc123\trefs/tags/v1.0.0\n\n"
	tags := parseTagRefs(out)
	if len(tags) != 1 || tags[0] != "v1.0.0" {
		t.Fatalf("unexpected tags: %v", tags)
	}
}
