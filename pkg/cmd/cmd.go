// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package cmd wires cgen's single-command CLI (spec §6) onto cobra, the way
// ytt's pkg/cmd wires each subcommand's Options struct onto a *cobra.Command
// via BindFlags (see pkg/cmd/template.go, pkg/cmd/fmt.go in the teacher repo).
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewCmd builds the root command: no verb tree, just -g/-u/-v flags over a
// single RunE, per spec §6's "the command is singular."
func NewCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cgen",
		Short: "Compile a declarative build configuration into a build script",
		Long: "cgen reads a cgen.yml (or .cgen.yml) configuration, resolves its external\n" +
			"packages, and emits a generated build script.",
		RunE: func(c *cobra.Command, args []string) error {
			return o.Run(args)
		},
		SilenceErrors: true,
	}
	o.BindFlags(cmd.Flags())
	return cmd
}

// BindFlags registers -g/-u/-v onto fs, mirroring fmt.go's
// StringArrayVarP/BoolVarP pflag-binding style.
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	generate := &modeFlag{name: "generate", target: &o.Generate, order: &o.modeOrder}
	update := &modeFlag{name: "update", target: &o.Update, order: &o.modeOrder}

	fs.VarP(generate, "generate", "g", "generate the build script from the resolved configuration")
	fs.Lookup("generate").NoOptDefVal = "true"

	fs.VarP(update, "update", "u", "refetch packages (all, or those named as trailing arguments)")
	fs.Lookup("update").NoOptDefVal = "true"

	fs.BoolVarP(&o.Verbose, "verbose", "v", false, "print debug progress to stderr")
}
