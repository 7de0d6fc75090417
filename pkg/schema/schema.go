// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package schema validates a preprocessed document tree against the shapes
// spec §4.3 defines for a cgen root document, without short-circuiting: every
// problem found is collected and returned together.
package schema

import (
	"fmt"

	"github.com/cgen-tool/cgen/pkg/yamlmeta"
)

// Error is one schema violation, always anchored to a path within the tree
// (spec §4.3: "{path, message} pairs").
type Error struct {
	Path    string
	Message string
	Pos     string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s | %s: %s", e.Pos, e.Path, e.Message)
}

type checker struct {
	errs []Error
}

func (c *checker) fail(path string, n yamlmeta.Node, format string, args ...interface{}) {
	pos := "?"
	if n != nil && n.GetPosition() != nil {
		pos = n.GetPosition().AsCompactString()
	}
	c.errs = append(c.errs, Error{Path: path, Message: fmt.Sprintf(format, args...), Pos: pos})
}

// Validate checks the root document tree against the schema for a cgen
// config. It returns every violation found; a malformed root that isn't even
// a mapping still reports one error rather than panicking on later stages.
func Validate(root yamlmeta.Node) []Error {
	c := &checker{}

	m, ok := root.(*yamlmeta.Mapping)
	if !ok {
		if yamlmeta.IsNullOrAbsent(root) {
			c.fail("$", root, "root document must be a mapping, found nothing")
		} else {
			c.fail("$", root, "root document must be a mapping")
		}
		return c.errs
	}

	c.checkKnownKeys("$", m, []string{
		"version", "project", "includes", "templates", "options", "settings", "packages", "targets",
	})

	if item := m.GetItem("project"); item != nil {
		c.checkProject("$.project", item.Value)
	}
	if item := m.GetItem("includes"); item != nil {
		c.checkIncludes("$.includes", item.Value)
	}
	if item := m.GetItem("templates"); item != nil {
		c.checkTemplatesSection("$.templates", item.Value)
	}
	if item := m.GetItem("options"); item != nil {
		c.checkOptions("$.options", item.Value)
	}
	if item := m.GetItem("settings"); item != nil {
		c.checkScalarMap("$.settings", item.Value)
	}
	if item := m.GetItem("packages"); item != nil {
		c.checkPackages("$.packages", item.Value)
	}
	if item := m.GetItem("targets"); item != nil {
		c.checkTargets("$.targets", item.Value)
	}

	return c.errs
}

func (c *checker) checkKnownKeys(path string, m *yamlmeta.Mapping, allowed []string) {
	set := map[string]bool{}
	for _, a := range allowed {
		set[a] = true
	}
	for _, item := range m.Items {
		if !set[item.BaseName()] {
			c.fail(path, item.Value, "unexpected key %q", item.BaseName())
		}
	}
}

func (c *checker) checkProject(path string, n yamlmeta.Node) {
	switch t := n.(type) {
	case *yamlmeta.Scalar:
		// shorthand: project: name
	case *yamlmeta.Mapping:
		c.checkKnownKeys(path, t, []string{"name", "version"})
		if t.GetItem("name") == nil {
			c.fail(path, n, "missing required key %q", "name")
		}
	default:
		c.fail(path, n, "expected a string or a mapping with 'name'")
	}
}

func (c *checker) checkIncludes(path string, n yamlmeta.Node) {
	seq, ok := n.(*yamlmeta.Sequence)
	if !ok {
		c.fail(path, n, "expected a sequence")
		return
	}
	for i, item := range seq.Items {
		p := fmt.Sprintf("%s[%d]", path, i)
		switch t := item.(type) {
		case *yamlmeta.Scalar:
			// shorthand: bare path string
		case *yamlmeta.Mapping:
			c.checkKnownKeys(p, t, []string{"paths", "parameters"})
			if paths := t.GetItem("paths"); paths != nil {
				if _, ok := paths.Value.(*yamlmeta.Sequence); !ok {
					if _, ok := paths.Value.(*yamlmeta.Scalar); !ok {
						c.fail(p+".paths", paths.Value, "expected a string or sequence of strings")
					}
				}
			}
			if params := t.GetItem("parameters"); params != nil {
				c.checkScalarMap(p+".parameters", params.Value)
			}
		default:
			c.fail(p, item, "expected a string or a mapping with 'paths'")
		}
	}
}

func (c *checker) checkTemplatesSection(path string, n yamlmeta.Node) {
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		c.fail(path, n, "expected a mapping of template name to target settings")
		return
	}
	for _, item := range m.Items {
		// Template bodies reuse target-settings shape; validated again after
		// merge, so only require a mapping here.
		if _, ok := item.Value.(*yamlmeta.Mapping); !ok {
			c.fail(fmt.Sprintf("%s.%s", path, item.BaseName()), item.Value, "expected a mapping")
		}
	}
}

func (c *checker) checkOptions(path string, n yamlmeta.Node) {
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		c.fail(path, n, "expected a mapping of option name to definition")
		return
	}
	for _, item := range m.Items {
		p := fmt.Sprintf("%s.%s", path, item.BaseName())
		om, ok := item.Value.(*yamlmeta.Mapping)
		if !ok {
			c.fail(p, item.Value, "expected a mapping with 'description'")
			continue
		}
		c.checkKnownKeys(p, om, []string{"description", "default"})
		if om.GetItem("description") == nil {
			c.fail(p, item.Value, "missing required key %q", "description")
		}
	}
}

func (c *checker) checkScalarMap(path string, n yamlmeta.Node) {
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		c.fail(path, n, "expected a mapping")
		return
	}
	for _, item := range m.Items {
		if _, ok := item.Value.(*yamlmeta.Scalar); !ok {
			if !yamlmeta.IsNullOrAbsent(item.Value) {
				c.fail(fmt.Sprintf("%s.%s", path, item.BaseName()), item.Value, "expected a scalar value")
			}
		}
	}
}

func (c *checker) checkPackages(path string, n yamlmeta.Node) {
	seq, ok := n.(*yamlmeta.Sequence)
	if !ok {
		c.fail(path, n, "expected a sequence")
		return
	}
	for i, item := range seq.Items {
		p := fmt.Sprintf("%s[%d]", path, i)
		m, ok := item.(*yamlmeta.Mapping)
		if !ok {
			c.fail(p, item, "expected a mapping")
			continue
		}
		if m.GetItem("name") == nil {
			c.fail(p, item, "missing required key %q", "name")
		}
		isExternal := m.Has("external")
		isSystem := m.Has("system")
		switch {
		case isExternal && isSystem:
			c.fail(p, item, "package cannot declare both 'external' and 'system'")
		case isExternal:
			c.checkKnownKeys(p, m, []string{"name", "if", "url", "version", "external", "strategy", "options"})
			if m.GetItem("url") == nil {
				c.fail(p, item, "external package missing required key %q", "url")
			}
		case isSystem:
			c.checkKnownKeys(p, m, []string{"name", "if", "version", "system", "required"})
		default:
			c.fail(p, item, "package must declare 'external' or 'system'")
		}
	}
}

func (c *checker) checkTargets(path string, n yamlmeta.Node) {
	seq, ok := n.(*yamlmeta.Sequence)
	if !ok {
		c.fail(path, n, "expected a sequence")
		return
	}
	for i, item := range seq.Items {
		p := fmt.Sprintf("%s[%d]", path, i)
		m, ok := item.(*yamlmeta.Mapping)
		if !ok {
			c.fail(p, item, "expected a mapping")
			continue
		}
		isLib := m.Has("library")
		isExe := m.Has("executable")
		if isLib == isExe {
			c.fail(p, item, "target must declare exactly one of 'library' or 'executable'")
			continue
		}
		if isLib {
			c.checkTargetSettingsShape(p, m, true)
		} else {
			c.checkTargetSettingsShape(p, m, false)
		}
	}
}

func (c *checker) checkTargetSettingsShape(path string, m *yamlmeta.Mapping, isLibrary bool) {
	allowed := []string{
		"library", "executable", "if", "templates", "path", "options", "settings",
		"sources", "includes", "pchs", "dependencies", "definitions",
		"compile_options", "link_options", "properties",
	}
	if isLibrary {
		allowed = append(allowed, "type", "aliases")
	}
	c.checkKnownKeys(path, m, allowed)
}
