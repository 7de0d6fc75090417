// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta_test

import (
	"testing"

	"github.com/cgen-tool/cgen/pkg/filepos"
	"github.com/cgen-tool/cgen/pkg/yamlmeta"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

// ignorePositions drops *filepos.Position from the comparison: it carries
// provenance (file/line of the winning node after a merge), not content, and
// its fields are unexported so cmp would otherwise refuse to traverse it.
var ignorePositions = cmpopts.IgnoreTypes(&filepos.Position{})

func mustParse(t *testing.T, src string) yamlmeta.Node {
	t.Helper()
	n, err := yamlmeta.ParseBytes([]byte(src), "test.yml")
	require.NoError(t, err)
	return n
}

func TestMergeNullRightIdentity(t *testing.T) {
	to := mustParse(t, "a: 1\nb: 2\n")
	from := &yamlmeta.Absent{}
	result := yamlmeta.Merge(from, to)
	if diff := cmp.Diff(to, result, ignorePositions); diff != "" {
		t.Errorf("merging Absent into a tree changed it (-to +result):\n%s", diff)
	}
}

func TestMergeOverlayAppendsSequence(t *testing.T) {
	to := mustParse(t, "- 1\n- 2\n")
	from := mustParse(t, "- 3\n")
	result := yamlmeta.Merge(from, to).(*yamlmeta.Sequence)
	require.Len(t, result.Items, 3)
}

func TestMergeReplaceAttributeAbsorbs(t *testing.T) {
	to := mustParse(t, "targets:REPLACE:\n  - library: X\n").(*yamlmeta.Mapping)
	from := mustParse(t, "targets:\n  - library: A\n  - library: B\n").(*yamlmeta.Mapping)

	result := yamlmeta.Merge(from, to).(*yamlmeta.Mapping)
	targets := result.Get("targets").(*yamlmeta.Sequence)
	require.Len(t, targets.Items, 1)
}

func TestMergeReplaceInFromDropsAttrAndReplaces(t *testing.T) {
	to := mustParse(t, "targets:\n  - library: A\n  - library: B\n").(*yamlmeta.Mapping)
	from := mustParse(t, "targets:REPLACE:\n  - library: X\n").(*yamlmeta.Mapping)

	result := yamlmeta.Merge(from, to).(*yamlmeta.Mapping)
	item := result.GetItem("targets")
	require.Equal(t, "", item.Attr)
	targets := item.Value.(*yamlmeta.Sequence)
	require.Len(t, targets.Items, 1)
}

func TestMergeAssociativityOnDisjointKeys(t *testing.T) {
	base := func() yamlmeta.Node { return mustParse(t, "x: 1\n") }
	a := mustParse(t, "a: 1\n")
	b := mustParse(t, "b: 2\n")

	left := yamlmeta.Merge(a, yamlmeta.Merge(b, base()))
	right := yamlmeta.Merge(b, yamlmeta.Merge(a, base()))

	// Merge appends keys new to `to` in arrival order, so the two sides hold
	// the same keys and values in a different order; compare by key.
	byKey := cmpopts.SortSlices(func(x, y *yamlmeta.MapItem) bool { return x.Key < y.Key })
	if diff := cmp.Diff(left, right, ignorePositions, byKey); diff != "" {
		t.Errorf("merge is not associative on disjoint keys (-left +right):\n%s", diff)
	}
}

func TestNormalizationIdempotence(t *testing.T) {
	doc := mustParse(t, "a:\n  b: 1\n  c: [1, 2]\n")
	once := yamlmeta.Merge(&yamlmeta.Absent{}, doc)
	yamlmeta.TrimAttributes(once)
	twice := once.Clone()
	yamlmeta.TrimAttributes(twice)
	require.True(t, yamlmeta.Equal(once, twice))
}

func TestCloneStripsAttributes(t *testing.T) {
	to := mustParse(t, "a:REPLACE: 1\n").(*yamlmeta.Mapping)
	cloned := to.Clone().(*yamlmeta.Mapping)
	require.Equal(t, "", cloned.Items[0].Attr)
}
