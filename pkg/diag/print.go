// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Printer renders a List the way spec §6 requires: errors printed together,
// colorized unless NO_COLOR is set or the output writer isn't a terminal.
type Printer struct {
	Verbose bool
	out     io.Writer
	bold    *color.Color
	red     *color.Color
}

// NewPrinter builds a Printer writing to w. Color is auto-disabled when
// NO_COLOR is non-empty or w isn't backed by a terminal, matching spec §6's
// "NO_COLOR (any non-empty value) disables ANSI color in diagnostics."
func NewPrinter(w io.Writer, verbose bool) *Printer {
	enableColor := os.Getenv("NO_COLOR") == ""
	if f, ok := w.(*os.File); ok {
		enableColor = enableColor && isatty.IsTerminal(f.Fd())
	} else {
		enableColor = false
	}

	red := color.New(color.FgRed)
	bold := color.New(color.Bold)
	red.EnableColor()
	bold.EnableColor()
	if !enableColor {
		red.DisableColor()
		bold.DisableColor()
	}

	return &Printer{Verbose: verbose, out: w, bold: bold, red: red}
}

// Print renders every error in l, one per line.
func (p *Printer) Print(l *List) {
	for _, e := range l.Errors {
		p.printOne(e)
	}
}

func (p *Printer) printOne(e Error) {
	fmt.Fprintf(p.out, "%s\n", p.red.Sprint(e.Error()))
}

// Debugf prints a verbose-only progress line, mirroring ytt's PlainUI.Debugf.
func (p *Printer) Debugf(format string, args ...interface{}) {
	if p.Verbose {
		fmt.Fprintf(p.out, format, args...)
	}
}
