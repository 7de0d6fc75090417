// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package emit implements the deterministic script emitter of spec §4.6: a
// streaming pretty-printer from the typed Config to the downstream build
// generator's dialect, in the indent-tracking style of ytt's yamlmeta
// Printer (see DESIGN.md).
package emit

import (
	"fmt"
	"io"
	"strings"

	"github.com/cgen-tool/cgen/pkg/config"
)

// MinimumToolchainVersion is the directive emitted second in every script.
const MinimumToolchainVersion = "3.20"

const indentUnit = "    "

// writer tracks indentation and coalesces consecutive blank lines, mirroring
// the indent-string-passed-down recursion of ytt's yamlmeta.Printer.
type writer struct {
	out       io.Writer
	depth     int
	lastBlank bool
}

func newWriter(out io.Writer) *writer {
	return &writer{out: out, lastBlank: true} // suppress a leading blank
}

func (w *writer) indent() string { return strings.Repeat(indentUnit, w.depth) }

func (w *writer) line(format string, args ...interface{}) {
	fmt.Fprintf(w.out, "%s%s\n", w.indent(), fmt.Sprintf(format, args...))
	w.lastBlank = false
}

func (w *writer) blank() {
	if w.lastBlank {
		return
	}
	fmt.Fprintln(w.out)
	w.lastBlank = true
}

func (w *writer) push() { w.depth++ }
func (w *writer) pop()  { w.depth-- }

// Emit writes cfg's downstream build script to out, per spec §4.6. Emitting
// the same Config twice yields byte-identical output (the emitter reads
// nothing but cfg).
func Emit(cfg config.Config, out io.Writer) error {
	w := newWriter(out)

	w.line("# Generated by cgen.")
	w.line("# DO NOT EDIT — changes will be overwritten on the next run.")
	w.blank()

	w.line("cmake_minimum_required(VERSION %s)", MinimumToolchainVersion)
	w.blank()

	emitProject(w, cfg.Project)
	w.blank()

	if len(cfg.Options) > 0 {
		for _, opt := range cfg.Options {
			emitOption(w, opt)
		}
		w.blank()
	}

	for _, t := range cfg.Targets {
		if len(t.Settings.OptionOrder) == 0 {
			continue
		}
		w.line("# options for target %s", t.Name)
		for _, name := range t.Settings.OptionOrder {
			emitOption(w, config.Option{Name: name, Default: t.Settings.Options[name]})
		}
		w.blank()
	}

	if len(cfg.SettingOrder) > 0 {
		for _, name := range cfg.SettingOrder {
			emitSetting(w, name, cfg.Settings[name])
		}
		w.blank()
	}

	emitSystemPackages(w, cfg.Packages)
	emitExternalPackages(w, cfg.Packages)
	emitTargets(w, cfg.Targets)

	return nil
}

func emitProject(w *writer, p config.ProjectHeader) {
	if p.Version.Defined {
		w.line("project(%s VERSION %s)", p.Name, renderRaw(p.Version))
		return
	}
	w.line("project(%s)", p.Name)
}

func emitOption(w *writer, opt config.Option) {
	if opt.Default.Defined {
		w.line("option(%s %q %s)", opt.Name, opt.Description, renderRaw(opt.Default))
		return
	}
	w.line("option(%s %q)", opt.Name, opt.Description)
}

func emitSetting(w *writer, name string, e config.Expression) {
	if !e.Defined {
		return
	}
	w.line("set(%s %s)", name, render(e))
}

func emitSystemPackages(w *writer, packages []config.Package) {
	var any bool
	for _, pkg := range packages {
		if pkg.System == nil {
			continue
		}
		any = true
		guarded := pkg.If != ""
		if guarded {
			w.line("if(%s)", pkg.If)
			w.push()
		}

		args := []string{pkg.Name}
		if pkg.System.Version.Defined {
			args = append(args, render(pkg.System.Version))
		}
		if pkg.System.Required {
			args = append(args, "REQUIRED")
		}
		w.line("find_package(%s)", strings.Join(args, " "))

		if guarded {
			w.pop()
			w.line("endif()")
		}
	}
	if any {
		w.blank()
	}
}

func emitExternalPackages(w *writer, packages []config.Package) {
	var calls []func()
	i := 0
	for _, pkg := range packages {
		if pkg.External == nil {
			continue
		}
		i++
		fnName := fmt.Sprintf("cgen_package_%d", i)
		emitExternalPackageFunction(w, fnName, pkg)
		w.blank()

		pkg := pkg
		calls = append(calls, func() {
			if pkg.If != "" {
				w.line("if(%s)", pkg.If)
				w.push()
			}
			w.line("%s()", fnName)
			if pkg.If != "" {
				w.pop()
				w.line("endif()")
			}
		})
	}
	for _, call := range calls {
		call()
	}
	if len(calls) > 0 {
		w.blank()
	}
}

func emitExternalPackageFunction(w *writer, fnName string, pkg config.Package) {
	w.line("function(%s)", fnName)
	w.push()

	for _, name := range pkg.External.OptionNames() {
		val := pkg.External.Options[name]
		w.line("set(%s %s CACHE INTERNAL \"\" FORCE)", name, render(val))
	}

	w.line("if(EXISTS ${PROJECT_SOURCE_DIR}/%s/CMakeLists.txt)", pkg.Name)
	w.push()
	w.line("add_subdirectory(%s)", pkg.Name)
	w.pop()
	w.line("else()")
	w.push()
	w.line("message(NOTICE \"Package %s doesn't have CMakeLists.txt\")", pkg.Name)
	w.pop()
	w.line("endif()")

	w.pop()
	w.line("endfunction()")
}

func emitTargets(w *writer, targets []config.Target) {
	var calls []func()
	for i, t := range targets {
		fnName := fmt.Sprintf("cgen_target_%d", i+1)
		emitTargetFunction(w, fnName, t)
		w.blank()

		t := t
		calls = append(calls, func() {
			if t.If != "" {
				w.line("if(%s)", t.If)
				w.push()
			}
			w.line("%s()", fnName)
			if t.If != "" {
				w.pop()
				w.line("endif()")
			}
		})
	}
	for _, call := range calls {
		call()
	}
}

func emitTargetFunction(w *writer, fnName string, t config.Target) {
	w.line("function(%s)", fnName)
	w.push()

	ts := t.Settings
	for _, name := range ts.RawOrder {
		val := ts.Raw[name]
		if !val.Defined {
			continue
		}
		w.line("set(%s %s)", name, render(val))
	}

	switch t.Kind {
	case config.KindLibrary:
		kind := strings.ToUpper(string(t.LibKind))
		w.line("add_library(%s %s)", t.Name, kind)
	default:
		w.line("add_executable(%s)", t.Name)
	}

	for _, alias := range t.Aliases {
		w.line("add_library(%s ALIAS %s)", alias, t.Name)
	}

	emitPathField(w, t.Name, "target_sources", ts.Sources, ts.Path)
	emitPathField(w, t.Name, "target_include_directories", ts.Includes, ts.Path)
	emitPathField(w, t.Name, "target_precompile_headers", ts.PCHs, ts.Path)
	emitPlainField(w, t.Name, "target_link_libraries", ts.Dependencies)
	emitDefinitions(w, t.Name, ts.Definitions)
	emitPlainField(w, t.Name, "target_compile_options", ts.CompileOptions)
	emitPlainField(w, t.Name, "target_link_options", ts.LinkOptions)
	emitProperties(w, t.Name, ts.Properties)

	w.pop()
	w.line("endfunction()")
}

func emitPathField(w *writer, target, command string, v config.Visibility[config.Expression], prefix config.Expression) {
	if v.IsEmpty() {
		return
	}
	w.line("%s(%s", command, target)
	w.push()
	emitBucket(w, "PUBLIC", v.Public, func(e config.Expression) config.Expression { return config.PathJoin(prefix, e) })
	emitBucket(w, "INTERFACE", v.Interface, func(e config.Expression) config.Expression { return config.PathJoin(prefix, e) })
	emitBucket(w, "PRIVATE", v.Private, func(e config.Expression) config.Expression { return config.PathJoin(prefix, e) })
	w.pop()
	w.line(")")
}

func emitPlainField(w *writer, target, command string, v config.Visibility[config.Expression]) {
	if v.IsEmpty() {
		return
	}
	w.line("%s(%s", command, target)
	w.push()
	identity := func(e config.Expression) config.Expression { return e }
	emitBucket(w, "PUBLIC", v.Public, identity)
	emitBucket(w, "INTERFACE", v.Interface, identity)
	emitBucket(w, "PRIVATE", v.Private, identity)
	w.pop()
	w.line(")")
}

func emitBucket(w *writer, keyword string, bucket config.Configs[config.Expression], transform func(config.Expression) config.Expression) {
	if bucket.IsEmpty() {
		return
	}
	w.line(keyword)
	w.push()
	for _, item := range bucket.Global {
		emitExprItem(w, transform(item))
	}
	for _, name := range bucket.ConfigurationNames() {
		for _, item := range bucket.Configurations[name] {
			t := transform(item)
			if !t.Defined {
				continue
			}
			w.line("$<$<CONFIG:%s>:%s>", name, render(t))
		}
	}
	w.pop()
}

func emitExprItem(w *writer, e config.Expression) {
	if !e.Defined {
		return
	}
	w.line("%s", render(e))
}

func emitDefinitions(w *writer, target string, v config.Visibility[config.Definition]) {
	if v.IsEmpty() {
		return
	}
	w.line("target_compile_definitions(%s", target)
	w.push()
	emitDefinitionBucket(w, "PUBLIC", v.Public)
	emitDefinitionBucket(w, "INTERFACE", v.Interface)
	emitDefinitionBucket(w, "PRIVATE", v.Private)
	w.pop()
	w.line(")")
}

func emitDefinitionBucket(w *writer, keyword string, bucket config.Configs[config.Definition]) {
	if bucket.IsEmpty() {
		return
	}
	w.line(keyword)
	w.push()
	for _, d := range bucket.Global {
		emitDefinitionItem(w, d, "")
	}
	for _, name := range bucket.ConfigurationNames() {
		for _, d := range bucket.Configurations[name] {
			emitDefinitionItem(w, d, name)
		}
	}
	w.pop()
}

func emitDefinitionItem(w *writer, d config.Definition, configName string) {
	var text string
	switch d.Kind {
	case config.DefinitionMacro:
		if !d.Value.Defined && d.Name == "" {
			return
		}
		text = fmt.Sprintf("%s=%s", d.Name, render(d.Value))
	default:
		if !d.Token.Defined {
			return
		}
		text = render(d.Token)
	}
	if configName == "" {
		w.line("%s", text)
		return
	}
	w.line("$<$<CONFIG:%s>:%s>", configName, text)
}

func emitProperties(w *writer, target string, props config.Configs[config.PropertyEntry]) {
	if props.IsEmpty() {
		return
	}
	w.line("set_target_properties(%s PROPERTIES", target)
	w.push()
	for _, p := range props.Global {
		if !p.Value.Defined {
			continue
		}
		w.line("%s %s", p.Name, render(p.Value))
	}
	for _, name := range props.ConfigurationNames() {
		for _, p := range props.Configurations[name] {
			if !p.Value.Defined {
				continue
			}
			w.line("%s $<$<CONFIG:%s>:%s>", p.Name, name, render(p.Value))
		}
	}
	w.pop()
	w.line(")")
}

// render renders an Expression as output text: quoted values are re-quoted
// verbatim, matching the author's original scalar style.
func render(e config.Expression) string {
	if e.Quoted {
		return fmt.Sprintf("%q", e.Value)
	}
	return e.Value
}

// renderRaw renders without re-quoting, for contexts (project/option
// version args) where CMake expects a bare token.
func renderRaw(e config.Expression) string {
	return e.Value
}
