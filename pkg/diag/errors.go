// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package diag implements the error taxonomy and accumulation policy of
// spec §7: errors are values collected in an ordered list per run and
// rendered together, in the position-annotated style of ytt's
// pkg/schema/error.go (formatLine/AsCompactString).
package diag

import "fmt"

// Kind is one of the error kinds spec §7 enumerates.
type Kind string

const (
	KindUnsupportedVersion       Kind = "config-unsupported-version"
	KindValidationError          Kind = "config-validation-error"
	KindIncludeNotFound          Kind = "config-include-not-found"
	KindUndefinedIncludeParam    Kind = "config-undefined-include-parameter"
	KindTemplateNotFound         Kind = "config-template-not-found"
	KindUndefinedTemplateParam   Kind = "config-undefined-template-parameter"
	KindPackageNotFound          Kind = "package-not-found"
	KindVersionResolutionError   Kind = "package-version-resolution-error"
	KindFetchError               Kind = "package-fetch-error"
)

// Error is one accumulated diagnostic.
type Error struct {
	Kind    Kind
	Source  string // e.g. include path, target name, template name, url
	Subject string // e.g. schema path, parameter name, version, exit status
	Message string
	Pos     string
}

func (e Error) Error() string {
	left := e.Pos
	if left == "" {
		left = "?"
	}
	if e.Source != "" {
		return fmt.Sprintf("%s | %s (%s): %s: %s", left, e.Kind, e.Source, e.Subject, e.Message)
	}
	return fmt.Sprintf("%s | %s: %s: %s", left, e.Kind, e.Subject, e.Message)
}

// List accumulates errors across a pipeline run. Stages append to it and
// keep going where spec §7 allows continuation; the driver decides when a
// List's non-emptiness should abort the pipeline.
type List struct {
	Errors []Error
}

func (l *List) Add(e Error) { l.Errors = append(l.Errors, e) }

func (l *List) HasErrors() bool { return len(l.Errors) > 0 }

func (l *List) AddAll(errs []Error) { l.Errors = append(l.Errors, errs...) }
