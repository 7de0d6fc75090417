// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package preprocess orchestrates the pipeline of spec §4.4: validate,
// merge includes, validate, merge templates, validate, decode — stopping the
// pipeline between stages on validation errors, since a malformed tree can't
// be safely merged or decoded, while accumulating every error found within
// a single stage (spec §7's propagation policy).
package preprocess

import (
	"fmt"

	"github.com/cgen-tool/cgen/pkg/config"
	"github.com/cgen-tool/cgen/pkg/diag"
	"github.com/cgen-tool/cgen/pkg/param"
	"github.com/cgen-tool/cgen/pkg/schema"
	"github.com/cgen-tool/cgen/pkg/yamlmeta"
)

// ImplementationVersion is the major version this build of cgen understands
// for the document's top-level `version` field.
const ImplementationVersion = "1"

// Loader resolves and reads include files, the "external file abstraction"
// spec §6 lists as a collaborator.
type Loader interface {
	Resolve(roots []string, relPath string) (string, bool)
	Read(path string) ([]byte, error)
}

// Result is the outcome of running the driver.
type Result struct {
	Config Config
	Errors diag.List
}

// Config is an alias kept local so callers only need to import preprocess
// for the pipeline entry point, while the typed model still lives in
// pkg/config for the emitter and resolver to consume directly.
type Config = config.Config

// Run executes the full pipeline against root (mutated in place), loading
// includes from includeRoots via loader, and returns the decoded Config plus any
// accumulated errors.
func Run(root yamlmeta.Node, loader Loader, includeRoots []string) Result {
	var errs diag.List

	if !checkVersion(root, &errs) {
		return Result{Errors: errs}
	}

	if !validate(root, &errs) {
		return Result{Errors: errs}
	}

	mergeIncludes(root, loader, includeRoots, map[string]bool{}, &errs)

	if !validate(root, &errs) {
		return Result{Errors: errs}
	}

	mergeTemplates(root, &errs)

	if !validate(root, &errs) {
		return Result{Errors: errs}
	}

	yamlmeta.TrimAttributes(root)

	if errs.HasErrors() {
		return Result{Errors: errs}
	}

	return Result{Config: config.Decode(root), Errors: errs}
}

func checkVersion(root yamlmeta.Node, errs *diag.List) bool {
	m, ok := root.(*yamlmeta.Mapping)
	if !ok {
		return true // schema validation will report the shape problem
	}
	item := m.GetItem("version")
	if item == nil {
		return true
	}
	v := config.DecodeExpression(item.Value)
	if !v.Defined {
		return true
	}
	if v.Value != ImplementationVersion {
		errs.Add(diag.Error{
			Kind:    diag.KindUnsupportedVersion,
			Subject: v.Value,
			Message: fmt.Sprintf("unsupported config version %q, expected %q", v.Value, ImplementationVersion),
			Pos:     posOf(item.Value),
		})
		return false
	}
	return true
}

func validate(root yamlmeta.Node, errs *diag.List) bool {
	violations := schema.Validate(root)
	if len(violations) == 0 {
		return true
	}
	for _, v := range violations {
		errs.Add(diag.Error{
			Kind:    diag.KindValidationError,
			Subject: v.Path,
			Message: v.Message,
			Pos:     v.Pos,
		})
	}
	return false
}

func posOf(n yamlmeta.Node) string {
	if n == nil || n.GetPosition() == nil {
		return "?"
	}
	return n.GetPosition().AsCompactString()
}

// substituteCollectingUndefined runs param.Substitute and turns undefined
// names into diag.Errors of the given kind, sourced from source.
func substituteCollectingUndefined(n yamlmeta.Node, params map[string]string, kind diag.Kind, source string, errs *diag.List) {
	for _, name := range param.Substitute(n, params) {
		errs.Add(diag.Error{
			Kind:    kind,
			Source:  source,
			Subject: name,
			Message: fmt.Sprintf("parameter %q was never defined", name),
			Pos:     posOf(n),
		})
	}
}
