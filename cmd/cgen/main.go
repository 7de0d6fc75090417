// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/cgen-tool/cgen/pkg/cmd"
)

func main() {
	c := cmd.NewCmd(cmd.NewDefaultOptions())
	if err := c.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cgen: %s\n", err)
		os.Exit(1)
	}
}
