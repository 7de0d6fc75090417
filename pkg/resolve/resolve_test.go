// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"testing"

	"github.com/cgen-tool/cgen/pkg/diag"
	"github.com/cgen-tool/cgen/pkg/lockfile"
)

type fakeVCS struct {
	tags         []string
	failStep     string
	resolvedHead string
}

func (f *fakeVCS) RemoteTags(url string) ([]string, int) {
	if f.failStep == "RemoteTags" {
		return nil, 1
	}
	return f.tags, 0
}
func (f *fakeVCS) ResolveRef(repoPath, ref string) (string, int) {
	if f.failStep == "ResolveRef" {
		return "", 1
	}
	if f.resolvedHead != "" {
		return f.resolvedHead, 0
	}
	return "abc123", 0
}
func (f *fakeVCS) ResetHard(repoPath, ref string) int {
	if f.failStep == "ResetHard" {
		return 1
	}
	return 0
}
func (f *fakeVCS) SubmoduleAdd(url, path string) int {
	if f.failStep == "SubmoduleAdd" {
		return 1
	}
	return 0
}
func (f *fakeVCS) SubmoduleUpdateInit(path string) int { return 0 }
func (f *fakeVCS) SubmoduleDeinit(path string) int     { return 0 }
func (f *fakeVCS) CloneShallow(url, path string) int {
	if f.failStep == "CloneShallow" {
		return 1
	}
	return 0
}
func (f *fakeVCS) CloneFull(url, path string) int      { return 0 }
func (f *fakeVCS) CloneBranch(url, ref, path string) int { return 0 }
func (f *fakeVCS) Remove(path string) int              { return 0 }

type fakeFS struct {
	existing map[string]bool
	dirs     map[string]bool
	renamed  map[string]string
}

func newFakeFS() *fakeFS {
	return &fakeFS{existing: map[string]bool{}, dirs: map[string]bool{}, renamed: map[string]string{}}
}
func (f *fakeFS) Exists(path string) bool        { return f.existing[path] }
func (f *fakeFS) IsDir(path string) bool         { return f.dirs[path] }
func (f *fakeFS) IsSub(path string) (bool, error) { return true, nil }
func (f *fakeFS) Remove(path string) error {
	delete(f.existing, path)
	return nil
}
func (f *fakeFS) Rename(a, b string) error {
	if f.existing[a] {
		delete(f.existing, a)
		f.existing[b] = true
	}
	f.renamed[a] = b
	return nil
}

func TestFetchCloneShallowOnEmptyVersion(t *testing.T) {
	var errs diag.List
	vc := &fakeVCS{resolvedHead: "deadbeef"}
	fs := newFakeFS()

	d := Desired{Path: "libfoo", URL: "https://example.com/foo.git", Strategy: lockfile.StrategyClone}
	entry := fetch(d, vc, fs, &errs)

	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs.Errors)
	}
	if entry.Version != "deadbeef" || entry.OriginalVersion != "HEAD" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestFetchRestoresBackupOnFailure(t *testing.T) {
	var errs diag.List
	vc := &fakeVCS{failStep: "CloneShallow"}
	fs := newFakeFS()
	fs.existing["libfoo"] = true

	d := Desired{Path: "libfoo", URL: "https://example.com/foo.git", Strategy: lockfile.StrategyClone}
	fetch(d, vc, fs, &errs)

	if !errs.HasErrors() {
		t.Fatalf("expected a fetch error")
	}
	if !fs.existing["libfoo"] {
		t.Fatalf("expected original working tree restored from backup")
	}
}

func TestResolveReusesUnchangedEntry(t *testing.T) {
	var errs diag.List
	vc := &fakeVCS{}
	fs := newFakeFS()
	fs.existing["libfoo"] = true

	desired := []Desired{{Path: "libfoo", URL: "url", OriginalVersion: "1.0.0", Strategy: lockfile.StrategyClone}}
	resolved := []lockfile.Entry{{Path: "libfoo", URL: "url", Version: "abc", OriginalVersion: "1.0.0", Strategy: lockfile.StrategyClone}}

	out := Resolve(desired, resolved, vc, fs, &errs)
	if len(out) != 1 || out[0].Version != "abc" {
		t.Fatalf("expected reuse of resolved entry, got %+v", out)
	}
}

func TestResolveRefetchesWhenOriginalVersionChanged(t *testing.T) {
	var errs diag.List
	vc := &fakeVCS{resolvedHead: "newsha", tags: []string{"v1.0.0", "v2.0.0"}}
	fs := newFakeFS()
	fs.existing["libfoo"] = true

	desired := []Desired{{Path: "libfoo", URL: "url", OriginalVersion: "2.0.0", Strategy: lockfile.StrategyClone}}
	resolved := []lockfile.Entry{{Path: "libfoo", URL: "url", Version: "abc", OriginalVersion: "1.0.0", Strategy: lockfile.StrategyClone}}

	out := Resolve(desired, resolved, vc, fs, &errs)
	if len(out) != 1 || out[0].Version != "newsha" {
		t.Fatalf("expected a refetch, got %+v", out)
	}
}

func TestCleanupRemovesUndesiredPaths(t *testing.T) {
	vc := &fakeVCS{}
	fs := newFakeFS()
	var errs diag.List

	desired := []Desired{{Path: "kept"}}
	resolved := []lockfile.Entry{{Path: "kept"}, {Path: "gone", Strategy: lockfile.StrategySubmodule}}

	out := Cleanup(desired, resolved, vc, fs, &errs)
	if len(out) != 1 || out[0].Path != "kept" {
		t.Fatalf("expected only kept to remain, got %+v", out)
	}
}

func TestUpdateWithNoPathsRefetchesAll(t *testing.T) {
	var errs diag.List
	vc := &fakeVCS{resolvedHead: "sha1"}
	fs := newFakeFS()

	desired := []Desired{{Path: "a", URL: "u1", Strategy: lockfile.StrategyClone}, {Path: "b", URL: "u2", Strategy: lockfile.StrategyClone}}
	out := Update(desired, nil, vc, fs, &errs)
	if len(out) != 2 {
		t.Fatalf("expected both packages refetched, got %+v", out)
	}
}

func TestUpdateUnknownPathEmitsPackageNotFound(t *testing.T) {
	var errs diag.List
	vc := &fakeVCS{}
	fs := newFakeFS()

	desired := []Desired{{Path: "a", URL: "u1", Strategy: lockfile.StrategyClone}}
	Update(desired, []string{"missing"}, vc, fs, &errs)

	if !errs.HasErrors() || errs.Errors[0].Kind != diag.KindPackageNotFound {
		t.Fatalf("expected package-not-found error, got %v", errs.Errors)
	}
}

func TestDiffsReportsChangedAndNewPackages(t *testing.T) {
	before := []lockfile.Entry{{Path: "a", Version: "old1"}, {Path: "b", Version: "same"}}
	after := []lockfile.Entry{{Path: "a", Version: "new1"}, {Path: "b", Version: "same"}, {Path: "c", Version: "brand-new"}}

	diffs := Diffs(before, after)
	if len(diffs) != 2 {
		t.Fatalf("expected 2 diffs, got %+v", diffs)
	}
	if diffs[0].Path != "a" || diffs[0].OldVersion != "old1" || diffs[0].NewVersion != "new1" {
		t.Fatalf("unexpected diff for a: %+v", diffs[0])
	}
	if diffs[1].Path != "c" || diffs[1].OldVersion != "" || diffs[1].NewVersion != "brand-new" {
		t.Fatalf("unexpected diff for c: %+v", diffs[1])
	}
}

func TestIsCommitHashLenientVsStrict(t *testing.T) {
	if !isCommitHash("abc", false) {
		t.Fatalf("expected short hex to pass lenient mode")
	}
	if isCommitHash("abc", true) {
		t.Fatalf("expected short hex to fail strict mode")
	}
	if !isCommitHash("0123456789abcdef0123456789abcdef01234567", true) {
		t.Fatalf("expected 40-char hex to pass strict mode")
	}
}
