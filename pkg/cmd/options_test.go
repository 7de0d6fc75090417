// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"testing"

	"github.com/spf13/pflag"
)

func parse(t *testing.T, args []string) (*Options, []string) {
	t.Helper()
	o := NewDefaultOptions()
	fs := pflag.NewFlagSet("cgen", pflag.ContinueOnError)
	o.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return o, fs.Args()
}

func TestGenerateAlone(t *testing.T) {
	o, _ := parse(t, []string{"-g"})
	if o.Mode() != "generate" {
		t.Fatalf("expected generate mode, got %q", o.Mode())
	}
}

func TestLaterFlagOverridesEarlier(t *testing.T) {
	o, _ := parse(t, []string{"-g", "-u"})
	if o.Mode() != "update" {
		t.Fatalf("expected update to win when given after -g, got %q", o.Mode())
	}

	o2, _ := parse(t, []string{"--update", "--generate"})
	if o2.Mode() != "generate" {
		t.Fatalf("expected generate to win when given after -u, got %q", o2.Mode())
	}
}

func TestUpdateConsumesTrailingPositionalPaths(t *testing.T) {
	o, rest := parse(t, []string{"-u", "libfoo", "libbar"})
	if o.Mode() != "update" {
		t.Fatalf("expected update mode")
	}
	if len(rest) != 2 || rest[0] != "libfoo" || rest[1] != "libbar" {
		t.Fatalf("expected two trailing paths, got %v", rest)
	}
}

func TestNoModeFlagsLeavesModeEmpty(t *testing.T) {
	o, _ := parse(t, []string{"-v"})
	if o.Mode() != "" {
		t.Fatalf("expected empty mode, got %q", o.Mode())
	}
	if !o.Verbose {
		t.Fatalf("expected verbose to be set")
	}
}

func TestUnknownFlagFailsParsing(t *testing.T) {
	o := NewDefaultOptions()
	fs := pflag.NewFlagSet("cgen", pflag.ContinueOnError)
	o.BindFlags(fs)
	if err := fs.Parse([]string{"--nonexistent"}); err == nil {
		t.Fatalf("expected an error for an unknown flag")
	}
}
