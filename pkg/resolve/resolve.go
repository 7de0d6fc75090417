// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package resolve implements the package resolver of spec §4.8: diff desired
// vs. resolved packages, fetch or reuse, and run the atomic backup/restore
// fetch state machine so the workspace is never left half-fetched.
package resolve

import (
	"fmt"
	"regexp"

	"github.com/cgen-tool/cgen/pkg/diag"
	"github.com/cgen-tool/cgen/pkg/lockfile"
	"github.com/cgen-tool/cgen/pkg/semver"
)

// Desired is one external package as the config wants it, keyed by path
// (the package name, since fetched trees land at ./<name>).
type Desired struct {
	Path            string
	URL             string
	OriginalVersion string // "" means HEAD
	Strategy        lockfile.Strategy
}

// VCS is the subset of pkg/vcs.Git the resolver drives, narrowed to an
// interface so the fetch state machine is testable without a real git
// binary.
type VCS interface {
	RemoteTags(url string) ([]string, int)
	ResolveRef(repoPath, ref string) (string, int)
	ResetHard(repoPath, ref string) int
	SubmoduleAdd(url, path string) int
	SubmoduleUpdateInit(path string) int
	SubmoduleDeinit(path string) int
	CloneShallow(url, path string) int
	CloneFull(url, path string) int
	CloneBranch(url, ref, path string) int
	Remove(path string) int
}

// FS is the subset of pkg/files.FS the resolver needs for the atomic
// backup/restore dance and containment checks.
type FS interface {
	Exists(path string) bool
	IsSub(path string) (bool, error)
	Remove(path string) error
	Rename(a, b string) error
	IsDir(path string) bool
}

const backupSuffix = ".bak"

var hexRE = regexp.MustCompile(`^[0-9a-fA-F]{1,40}$`)
var strictHexRE = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)

// isCommitHash applies spec §4.9's lenient commit-hash detection: any hex
// string of 1..40 chars; strict mode requires exactly 40.
func isCommitHash(s string, strict bool) bool {
	if strict {
		return strictHexRE.MatchString(s)
	}
	return hexRE.MatchString(s)
}

// Cleanup implements spec §4.8's cleanup(D, R): remove every resolved
// package whose path is no longer desired.
func Cleanup(desired []Desired, resolved []lockfile.Entry, vc VCS, fs FS, errs *diag.List) []lockfile.Entry {
	wanted := make(map[string]bool, len(desired))
	for _, d := range desired {
		wanted[d.Path] = true
	}

	var kept []lockfile.Entry
	for _, r := range resolved {
		if wanted[r.Path] {
			kept = append(kept, r)
			continue
		}
		removePackageTree(r.Path, r.Strategy, vc, fs, errs)
	}
	return kept
}

func removePackageTree(path string, strategy lockfile.Strategy, vc VCS, fs FS, errs *diag.List) {
	if ok, err := fs.IsSub(path); err != nil || !ok {
		errs.Add(diag.Error{
			Kind:    diag.KindFetchError,
			Subject: path,
			Message: "refusing cleanup: path is outside the working directory",
		})
		return
	}
	if strategy == lockfile.StrategySubmodule {
		vc.SubmoduleDeinit(path)
	}
	_ = fs.Remove(path)
	_ = vc.Remove(path)
}

// Resolve implements spec §4.8's resolve(D, R): reuse, refetch, or fetch new
// per package, depending on whether a matching resolved entry exists and is
// still valid.
func Resolve(desired []Desired, resolved []lockfile.Entry, vc VCS, fs FS, errs *diag.List) []lockfile.Entry {
	byPath := make(map[string]lockfile.Entry, len(resolved))
	for _, r := range resolved {
		byPath[r.Path] = r
	}

	out := make([]lockfile.Entry, 0, len(desired))
	for _, d := range desired {
		r, found := byPath[d.Path]
		switch {
		case !found || r.OriginalVersion != originalOrHead(d.OriginalVersion) || string(r.Strategy) != string(d.Strategy):
			out = append(out, fetch(d, vc, fs, errs))
		case !fs.Exists(d.Path):
			out = append(out, fetchFromResolved(r, vc, fs, errs))
		default:
			out = append(out, r)
		}
	}
	return out
}

func originalOrHead(v string) string {
	if v == "" {
		return "HEAD"
	}
	return v
}

// Update implements spec §4.8's update(D, paths): empty paths means refetch
// everything; otherwise refetch only the named paths, in the order given.
func Update(desired []Desired, paths []string, vc VCS, fs FS, errs *diag.List) []lockfile.Entry {
	byPath := make(map[string]Desired, len(desired))
	for _, d := range desired {
		byPath[d.Path] = d
	}

	if len(paths) == 0 {
		out := make([]lockfile.Entry, 0, len(desired))
		for _, d := range desired {
			out = append(out, fetch(d, vc, fs, errs))
		}
		return out
	}

	var out []lockfile.Entry
	for _, p := range paths {
		d, ok := byPath[p]
		if !ok {
			errs.Add(diag.Error{
				Kind:    diag.KindPackageNotFound,
				Subject: p,
				Message: "no desired package with this path",
			})
			continue
		}
		out = append(out, fetch(d, vc, fs, errs))
	}
	return out
}

// fetchFromResolved re-runs the fetch dispatch against an already-pinned
// entry whose working tree went missing, pinning to the resolved commit
// rather than re-resolving the original version pattern.
func fetchFromResolved(r lockfile.Entry, vc VCS, fs FS, errs *diag.List) lockfile.Entry {
	d := Desired{Path: r.Path, URL: r.URL, OriginalVersion: r.Version, Strategy: r.Strategy}
	return fetch(d, vc, fs, errs)
}

// fetch is the state machine of spec §4.8: reject-outside-workdir, backup,
// dispatch by strategy x version shape, restore-on-failure, delete backup
// on success.
func fetch(d Desired, vc VCS, fs FS, errs *diag.List) lockfile.Entry {
	unchanged := lockfile.Entry{Strategy: d.Strategy, Path: d.Path, URL: d.URL, OriginalVersion: originalOrHead(d.OriginalVersion)}

	if ok, err := fs.IsSub(d.Path); err != nil || !ok {
		errs.Add(diag.Error{
			Kind:    diag.KindFetchError,
			Source:  d.URL,
			Subject: d.Path,
			Message: "refusing to fetch: path is outside the working directory",
		})
		return unchanged
	}

	backupPath := d.Path + backupSuffix
	hadBackup := backupWorkingTree(d.Path, fs)

	status := dispatchFetch(d, vc)
	if status != 0 {
		errs.Add(diag.Error{
			Kind:    diag.KindFetchError,
			Source:  d.URL,
			Subject: fmt.Sprintf("status %d", status),
			Message: "package fetch failed",
		})
		restoreBackup(d.Path, backupPath, hadBackup, fs)
		return unchanged
	}

	head, refStatus := vc.ResolveRef(d.Path, "HEAD")
	if refStatus != 0 || head == "" {
		errs.Add(diag.Error{
			Kind:    diag.KindVersionResolutionError,
			Source:  d.Path,
			Subject: "HEAD",
			Message: "could not resolve HEAD to a commit after fetch",
		})
		restoreBackup(d.Path, backupPath, hadBackup, fs)
		return unchanged
	}

	if d.Strategy == lockfile.StrategyClone && fs.IsDir(d.Path+"/.git") {
		_ = fs.Remove(d.Path + "/.git")
	}

	deleteBackup(backupPath, hadBackup, fs)

	return lockfile.Entry{
		Strategy:        d.Strategy,
		Path:            d.Path,
		URL:             d.URL,
		Version:         head,
		OriginalVersion: originalOrHead(d.OriginalVersion),
	}
}

func backupWorkingTree(path string, fs FS) bool {
	if !fs.Exists(path) {
		return false
	}
	backupPath := path + backupSuffix
	_ = fs.Remove(backupPath)
	if err := fs.Rename(path, backupPath); err != nil {
		return false
	}
	return true
}

func restoreBackup(path, backupPath string, hadBackup bool, fs FS) {
	if !hadBackup {
		_ = fs.Remove(path)
		return
	}
	_ = fs.Remove(path)
	_ = fs.Rename(backupPath, path)
}

func deleteBackup(backupPath string, hadBackup bool, fs FS) {
	if hadBackup {
		_ = fs.Remove(backupPath)
	}
}

func dispatchFetch(d Desired, vc VCS) int {
	version := d.OriginalVersion
	switch d.Strategy {
	case lockfile.StrategySubmodule:
		return dispatchSubmodule(d, version, vc)
	default:
		return dispatchClone(d, version, vc)
	}
}

func dispatchSubmodule(d Desired, version string, vc VCS) int {
	switch {
	case version == "":
		if status := vc.SubmoduleAdd(d.URL, d.Path); status != 0 {
			return status
		}
	case semver.IsValid(version):
		tags, status := vc.RemoteTags(d.URL)
		if status != 0 {
			return status
		}
		tag, ok := semver.Pick(version, tags, false)
		if !ok {
			return 1
		}
		if status := vc.SubmoduleAdd(d.URL, d.Path); status != 0 {
			return status
		}
		if status := vc.ResetHard(d.Path, tag); status != 0 {
			return status
		}
	default:
		if status := vc.SubmoduleAdd(d.URL, d.Path); status != 0 {
			return status
		}
		if status := vc.ResetHard(d.Path, version); status != 0 {
			return status
		}
	}
	return vc.SubmoduleUpdateInit(d.Path)
}

// Diff is a per-package old→new commit change, the verbose `update` report
// the original tool prints (see DESIGN.md).
type Diff struct {
	Path       string
	OldVersion string
	NewVersion string
}

// Diffs compares before/after lockfile entries by path and reports every
// package whose resolved commit changed (including newly-added packages,
// whose OldVersion is empty).
func Diffs(before, after []lockfile.Entry) []Diff {
	oldVersion := make(map[string]string, len(before))
	for _, e := range before {
		oldVersion[e.Path] = e.Version
	}

	var out []Diff
	for _, e := range after {
		old := oldVersion[e.Path]
		if old != e.Version {
			out = append(out, Diff{Path: e.Path, OldVersion: old, NewVersion: e.Version})
		}
	}
	return out
}

func dispatchClone(d Desired, version string, vc VCS) int {
	switch {
	case version == "":
		return vc.CloneShallow(d.URL, d.Path)
	case isCommitHash(version, true):
		if status := vc.CloneFull(d.URL, d.Path); status != 0 {
			return status
		}
		return vc.ResetHard(d.Path, version)
	case semver.IsValid(version):
		tags, status := vc.RemoteTags(d.URL)
		if status != 0 {
			return status
		}
		tag, ok := semver.Pick(version, tags, false)
		if !ok {
			return 1
		}
		return vc.CloneBranch(d.URL, tag, d.Path)
	default:
		return vc.CloneBranch(d.URL, version, d.Path)
	}
}
