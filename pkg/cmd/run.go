// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/cgen-tool/cgen/pkg/config"
	"github.com/cgen-tool/cgen/pkg/diag"
	"github.com/cgen-tool/cgen/pkg/emit"
	"github.com/cgen-tool/cgen/pkg/files"
	"github.com/cgen-tool/cgen/pkg/lockfile"
	"github.com/cgen-tool/cgen/pkg/preprocess"
	"github.com/cgen-tool/cgen/pkg/resolve"
	"github.com/cgen-tool/cgen/pkg/vcs"
	"github.com/cgen-tool/cgen/pkg/yamlmeta"
)

const (
	configFileName      = "cgen.yml"
	dotConfigFileName   = ".cgen.yml"
	lockFileName        = "cgen.lock"
	generatedScriptName = "CMakeLists.txt"
)

// Run dispatches to the generate or update control flow of spec §2,
// depending on which of -g/-u was seen last. args holds -u's trailing
// positional package paths.
func (o *Options) Run(args []string) error {
	o.UpdatePaths = args
	printer := diag.NewPrinter(os.Stderr, o.Verbose)

	switch o.Mode() {
	case "generate":
		return o.runGenerate(printer)
	case "update":
		return o.runUpdate(printer, args)
	default:
		return fmt.Errorf("no action given: pass -g to generate or -u to update")
	}
}

// loadConfig implements the shared "read config → preprocessor → decode"
// prefix of both control flows (spec §2).
func loadConfig(printer *diag.Printer) (config.Config, *files.FS, error) {
	fs, err := files.NewFS(".")
	if err != nil {
		return config.Config{}, nil, err
	}

	path, ok := fs.Resolve(nil, configFileName)
	if !ok {
		path, ok = fs.Resolve(nil, dotConfigFileName)
	}
	if !ok {
		return config.Config{}, nil, fmt.Errorf("no %s or %s found in the working directory", configFileName, dotConfigFileName)
	}

	printer.Debugf("reading configuration from %s\n", path)
	data, err := fs.Read(path)
	if err != nil {
		return config.Config{}, nil, err
	}

	root, err := yamlmeta.ParseBytes(data, path)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	result := preprocess.Run(root, fs, []string{"."})
	if result.Errors.HasErrors() {
		printer.Print(&result.Errors)
		return config.Config{}, nil, fmt.Errorf("%d error(s) while processing %s", len(result.Errors.Errors), path)
	}
	return result.Config, fs, nil
}

// desiredFromConfig projects the decoded Config's external packages into
// resolve.Desired, per spec §4.8's "desired package list" input.
func desiredFromConfig(cfg config.Config) []resolve.Desired {
	var out []resolve.Desired
	for _, p := range cfg.Packages {
		if p.External == nil {
			continue
		}
		out = append(out, resolve.Desired{
			Path:            p.Name,
			URL:             p.External.URL,
			OriginalVersion: p.External.Version.Value,
			Strategy:        lockfile.Strategy(p.External.Strategy),
		})
	}
	return out
}

func orHead(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}

func readLockfile(fs *files.FS) []lockfile.Entry {
	data, err := fs.Read(lockFileName)
	if err != nil {
		return nil
	}
	return lockfile.Read(strings.NewReader(string(data)))
}

func writeLockfile(fs *files.FS, entries []lockfile.Entry) error {
	f, err := os.Create(lockFileName)
	if err != nil {
		return err
	}
	defer f.Close()
	return lockfile.Write(f, entries)
}

func (o *Options) runGenerate(printer *diag.Printer) error {
	cfg, fs, err := loadConfig(printer)
	if err != nil {
		return err
	}

	vc := vcs.New(".")
	var errs diag.List

	desired := desiredFromConfig(cfg)
	existing := readLockfile(fs)

	cleaned := resolve.Cleanup(desired, existing, vc, fs, &errs)
	resolved := resolve.Resolve(desired, cleaned, vc, fs, &errs)

	if err := writeLockfile(fs, resolved); err != nil {
		return fmt.Errorf("writing %s: %w", lockFileName, err)
	}

	script, err := os.Create(generatedScriptName)
	if err != nil {
		return fmt.Errorf("creating %s: %w", generatedScriptName, err)
	}
	defer script.Close()
	if err := emit.Emit(cfg, script); err != nil {
		return fmt.Errorf("emitting %s: %w", generatedScriptName, err)
	}

	if errs.HasErrors() {
		printer.Print(&errs)
		return fmt.Errorf("%d error(s) while resolving packages", len(errs.Errors))
	}
	return nil
}

func (o *Options) runUpdate(printer *diag.Printer, paths []string) error {
	cfg, fs, err := loadConfig(printer)
	if err != nil {
		return err
	}

	vc := vcs.New(".")
	var errs diag.List

	desired := desiredFromConfig(cfg)
	existing := readLockfile(fs)

	updated := resolve.Update(desired, paths, vc, fs, &errs)
	merged := lockfile.Merge(existing, updated)

	for _, d := range resolve.Diffs(existing, updated) {
		printer.Debugf("%s: %s -> %s\n", d.Path, orHead(d.OldVersion), orHead(d.NewVersion))
	}

	if err := writeLockfile(fs, merged); err != nil {
		return fmt.Errorf("writing %s: %w", lockFileName, err)
	}

	if errs.HasErrors() {
		printer.Print(&errs)
		return fmt.Errorf("%d error(s) while updating packages", len(errs.Errors))
	}
	return nil
}
