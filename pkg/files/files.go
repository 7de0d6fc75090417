// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package files implements the file abstraction of spec §6: existence and
// emptiness checks, canonical-path-contained remove/rename, and reads —
// adapted from ytt's pkg/files symlink-containment check (isIn/pathPieces)
// into the general "every mutated path must be a canonical subpath of the
// working directory" invariant spec §3 requires of the package resolver.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FS is the file abstraction spec §6 lists as an external collaborator.
type FS struct {
	base string // canonical working directory; all mutations must nest under it
}

// NewFS returns an FS rooted at the canonical (absolute, symlink-resolved)
// form of workDir.
func NewFS(workDir string) (*FS, error) {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		resolved = abs
	}
	return &FS{base: resolved}, nil
}

// Exists reports whether path exists.
func (fs *FS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func (fs *FS) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsEmpty reports whether a directory has no entries (nonexistent counts as empty).
func (fs *FS) IsEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return len(entries) == 0, nil
}

// IsSub reports whether path is a canonical subpath of base (or equal to it),
// the containment check every mutation in pkg/resolve must pass (spec §3's
// "Path containment" invariant).
func (fs *FS) IsSub(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	abs = filepath.Clean(abs)

	absPieces := pathPieces(abs)
	basePieces := pathPieces(fs.base)
	if len(basePieces) > len(absPieces) {
		return false, nil
	}
	for i := range basePieces {
		if basePieces[i] != absPieces[i] {
			return false, nil
		}
	}
	return true, nil
}

func pathPieces(path string) []string {
	if path == string(filepath.Separator) {
		return []string{""}
	}
	return strings.Split(path, string(filepath.Separator))
}

// Remove recursively removes path after verifying containment.
func (fs *FS) Remove(path string) error {
	ok, err := fs.IsSub(path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("refusing to remove %q: not under working directory %q", path, fs.base)
	}
	return os.RemoveAll(path)
}

// Rename renames a and b after verifying both are contained.
func (fs *FS) Rename(a, b string) error {
	for _, p := range []string{a, b} {
		ok, err := fs.IsSub(p)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("refusing to rename %q: not under working directory %q", p, fs.base)
		}
	}
	return os.Rename(a, b)
}

// Read returns the contents of path.
func (fs *FS) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Resolve returns the path of relPath under the first of the given search
// roots where it exists, else relPath itself if it exists as given (the
// "external file abstraction" §4.4 step 3 consults for includes), or
// ok=false if none has it.
func (fs *FS) Resolve(roots []string, relPath string) (string, bool) {
	for _, root := range roots {
		candidate := filepath.Join(root, relPath)
		if fs.Exists(candidate) {
			return candidate, true
		}
	}
	if fs.Exists(relPath) {
		return relPath, true
	}
	return "", false
}
