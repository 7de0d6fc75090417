// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package semver

import "testing"

func TestParseDropsTrailingZerosAndAlphaPrefix(t *testing.T) {
	v := Parse("v1.2.0")
	if len(v.Normal) != 2 || v.Normal[0] != 1 || v.Normal[1] != 2 {
		t.Fatalf("unexpected normal list: %v", v.Normal)
	}
}

func TestParseSplitsRCAndBuild(t *testing.T) {
	v := Parse("2.0.0-rc.1+001")
	if !v.HasRC {
		t.Fatalf("expected HasRC")
	}
	if len(v.RC) != 2 || v.RC[0] != 0 || v.RC[1] != 1 {
		t.Fatalf("unexpected rc list: %v", v.RC)
	}
	if len(v.Build) != 1 || v.Build[0] != 1 {
		t.Fatalf("unexpected build list: %v", v.Build)
	}
}

func TestIsValidRejectsAlphaAndRC(t *testing.T) {
	if !IsValid("1.2.*") {
		t.Fatalf("expected 1.2.* to be valid")
	}
	if IsValid("1.2.0-rc.1") {
		t.Fatalf("expected rc suffix to be invalid pattern text")
	}
	if IsValid("") {
		t.Fatalf("expected empty string to be invalid")
	}
}

func TestMatchWildcardTail(t *testing.T) {
	pattern := Parse("1.2.*")
	if !Match(pattern, Parse("1.2.7"), false) {
		t.Fatalf("expected 1.2.* to match 1.2.7")
	}
	if Match(pattern, Parse("1.3.0"), false) {
		t.Fatalf("expected 1.2.* to reject 1.3.0")
	}
}

func TestMatchShorterPatternMustCoverTag(t *testing.T) {
	pattern := Parse("1.2")
	if Match(pattern, Parse("1.2.3"), false) {
		t.Fatalf("expected 1.2 not to match 1.2.3: a pattern without a wildcard must cover every tag component")
	}
	if Match(pattern, Parse("1.20.0"), false) {
		t.Fatalf("expected 1.2 not to match 1.20.0")
	}
}

func TestMatchIgnoreRCExcludesPrereleases(t *testing.T) {
	pattern := Parse("1.2.*")
	rc := Parse("1.2.3-rc.1")
	if Match(pattern, rc, true) {
		t.Fatalf("expected ignoreRC to exclude pre-release tags")
	}
	if !Match(pattern, rc, false) {
		t.Fatalf("expected non-ignoreRC match on normal component")
	}
}

func TestLessOrdersWithoutRCAboveWithRC(t *testing.T) {
	release := Parse("1.0.0")
	rc := Parse("1.0.0-rc.1")
	if !Less(rc, release) {
		t.Fatalf("expected rc < release at equal normal version")
	}
}

func TestPickChoosesHighestMatchingTag(t *testing.T) {
	tags := []string{"v1.0.0", "v1.2.0", "v1.2.9", "v1.3.0", "v1.2.5-rc.1"}
	tag, ok := Pick("1.2.*", tags, true)
	if !ok {
		t.Fatalf("expected a match")
	}
	if tag != "v1.2.9" {
		t.Fatalf("expected v1.2.9, got %s", tag)
	}
}

func TestPickNoMatchReturnsFalse(t *testing.T) {
	_, ok := Pick("9.9.*", []string{"v1.0.0"}, true)
	if ok {
		t.Fatalf("expected no match")
	}
}
