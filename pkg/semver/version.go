// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package semver implements the version-pattern matcher of spec §4.7: a
// bespoke, deliberately non-strict-semver comparison (wildcards, tail-break
// on length, build metadata participating in ordering) used to pick the
// best matching tag from a remote's candidate list. No third-party semver
// library implements these exact, intentionally-divergent rules (see
// DESIGN.md), so this package is hand-written against spec.md's pseudocode.
package semver

import (
	"math"
	"strconv"
	"strings"
)

const wildcard = math.MaxInt64

// Version is the parsed form of spec §4.7: three integer lists plus a
// has-rc flag, with the original text retained for the length tiebreak.
type Version struct {
	Normal []int64
	RC     []int64
	Build  []int64
	HasRC  bool
	Text   string
}

// Parse implements spec §4.7's Parse: strip a leading alpha prefix, split on
// '.', '-' (pre-release) and '+' (build), map '*' to the wildcard sentinel,
// and drop trailing zeros from each list.
func Parse(s string) Version {
	text := s
	rest := stripAlphaPrefix(s)

	normalPart := rest
	rcPart := ""
	buildPart := ""

	if idx := strings.IndexByte(rest, '+'); idx >= 0 {
		buildPart = rest[idx+1:]
		rest = rest[:idx]
		normalPart = rest
	}
	if idx := strings.IndexByte(normalPart, '-'); idx >= 0 {
		rcPart = normalPart[idx+1:]
		normalPart = normalPart[:idx]
	}

	v := Version{
		Normal: parseIntList(normalPart),
		Build:  parseIntList(buildPart),
		Text:   text,
	}
	if rcPart != "" {
		v.RC = parseIntList(rcPart)
		v.HasRC = true
	}
	v.Normal = dropTrailingZeros(v.Normal)
	v.RC = dropTrailingZeros(v.RC)
	v.Build = dropTrailingZeros(v.Build)
	return v
}

// stripAlphaPrefix removes a single leading run of characters that are not
// digits, '*', '.', '-' or '+' (spec: "Strip a single leading alpha prefix").
func stripAlphaPrefix(s string) string {
	i := 0
	for i < len(s) && !isVersionChar(s[i]) {
		i++
	}
	return s[i:]
}

func isVersionChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '*' || c == '.' || c == '-' || c == '+'
}

func parseIntList(s string) []int64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ".")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		out = append(out, parseIntPart(p))
	}
	return out
}

// parseIntPart extracts the digits (or '*') from a single dot-separated
// part, ignoring any other permitted-but-ignored characters within it.
func parseIntPart(p string) int64 {
	if strings.Contains(p, "*") {
		return wildcard
	}
	var digits strings.Builder
	for i := 0; i < len(p); i++ {
		if p[i] >= '0' && p[i] <= '9' {
			digits.WriteByte(p[i])
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func dropTrailingZeros(list []int64) []int64 {
	end := len(list)
	for end > 0 && list[end-1] == 0 {
		end--
	}
	return list[:end]
}

// IsValid implements spec §4.7: true iff v contains only digits, '.', '*'.
func IsValid(v string) bool {
	if v == "" {
		return false
	}
	for i := 0; i < len(v); i++ {
		c := v[i]
		if !((c >= '0' && c <= '9') || c == '.' || c == '*') {
			return false
		}
	}
	return true
}

// Match implements spec §4.7's Match: pattern.Normal (P) against
// tag.Normal (T).
func Match(pattern, tag Version, ignoreRC bool) bool {
	if ignoreRC && tag.HasRC {
		return false
	}

	p, t := pattern.Normal, tag.Normal
	if intListEqual(p, t) {
		return true
	}

	for i := 0; i < len(p); i++ {
		if p[i] == wildcard {
			if i == len(p)-1 {
				return true
			}
			continue
		}
		if i >= len(t) {
			if p[i] == 0 {
				continue
			}
			return false
		}
		if p[i] != t[i] {
			return false
		}
	}

	return len(p) >= len(t)
}

func intListEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Less implements spec §4.7's Less ordering: Normal lexicographically; a
// non-rc version is greater than an rc version at equal Normal; then RC
// lexicographically; then Build lexicographically; final tiebreak prefers
// the longer textual form.
func Less(a, b Version) bool {
	if c := compareIntLists(a.Normal, b.Normal); c != 0 {
		return c < 0
	}
	if a.HasRC != b.HasRC {
		// without rc is greater than with rc
		return a.HasRC
	}
	if c := compareIntLists(a.RC, b.RC); c != 0 {
		return c < 0
	}
	if c := compareIntLists(a.Build, b.Build); c != 0 {
		return c < 0
	}
	return len(a.Text) < len(b.Text)
}

// compareIntLists compares element-wise, treating a shorter list as padded
// with zeros (consistent with trailing-zero trimming during Parse).
func compareIntLists(a, b []int64) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var av, bv int64
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Candidate pairs a raw tag string with its parsed Version, as returned by
// a VCS adapter's remote-tags listing.
type Candidate struct {
	Tag     string
	Version Version
}

// Pick implements spec §4.7's Pick: sort descending by Less, return the
// first match under Match. Returns ok=false if nothing matches.
func Pick(pattern string, tags []string, ignoreRC bool) (tag string, ok bool) {
	p := Parse(pattern)

	candidates := make([]Candidate, 0, len(tags))
	for _, t := range tags {
		candidates = append(candidates, Candidate{Tag: t, Version: Parse(t)})
	}

	sortDescending(candidates)

	for _, c := range candidates {
		if Match(p, c.Version, ignoreRC) {
			return c.Tag, true
		}
	}
	return "", false
}

func sortDescending(candidates []Candidate) {
	// insertion sort: candidate lists are small (tag lists), and this keeps
	// the comparator identical in shape to Less for auditability.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && Less(candidates[j-1].Version, candidates[j].Version); j-- {
			candidates[j-1], candidates[j] = candidates[j], candidates[j-1]
		}
	}
}
