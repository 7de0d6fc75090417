// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"strconv"
)

// Options holds the parsed form of spec §6's CLI: `cgen [-g] [-u [path...]]
// [-v] [-h]`. Generate and Update may both be set; Mode() reports whichever
// of -g/-u appeared last on the command line, since "the command is
// singular — later flags override earlier."
type Options struct {
	Generate bool
	Update   bool
	Verbose  bool

	// UpdatePaths holds -u's trailing positional arguments (empty = update
	// everything).
	UpdatePaths []string

	// modeOrder records "generate"/"update" each time -g or -u is parsed, in
	// command-line order, so the last one wins regardless of flag order.
	modeOrder []string
}

func NewDefaultOptions() *Options {
	return &Options{}
}

// Mode returns the winning mode ("generate", "update", or "" if neither
// flag was given).
func (o *Options) Mode() string {
	if len(o.modeOrder) == 0 {
		return ""
	}
	return o.modeOrder[len(o.modeOrder)-1]
}

// modeFlag is a pflag.Value that records its own Set() calls into an order
// slice, the only way to recover "which flag was seen last" from pflag
// (which otherwise loses command-line order once parsing completes).
type modeFlag struct {
	name   string
	target *bool
	order  *[]string
}

func (f *modeFlag) String() string {
	if f.target == nil || !*f.target {
		return "false"
	}
	return "true"
}

func (f *modeFlag) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*f.target = v
	if v {
		*f.order = append(*f.order, f.name)
	}
	return nil
}

func (f *modeFlag) Type() string { return "bool" }
