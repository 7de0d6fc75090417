// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/cgen-tool/cgen/pkg/yamlmeta"
)

// Decode converts a preprocessed, trim_attributes'd root document into the
// typed Config, per spec §4.5.
func Decode(root yamlmeta.Node) Config {
	m, ok := root.(*yamlmeta.Mapping)
	if !ok {
		return Config{}
	}

	cfg := Config{
		Settings: map[string]Expression{},
	}

	if item := m.GetItem("version"); item != nil {
		cfg.Version = DecodeExpression(item.Value).Value
	}
	if item := m.GetItem("project"); item != nil {
		cfg.Project = decodeProject(item.Value)
	}
	if item := m.GetItem("includes"); item != nil {
		cfg.Includes = decodeIncludes(item.Value)
	}
	if item := m.GetItem("templates"); item != nil {
		cfg.Templates, cfg.TemplateOrder = decodeTemplates(item.Value)
	}
	if item := m.GetItem("options"); item != nil {
		cfg.Options = decodeOptions(item.Value)
	}
	if item := m.GetItem("settings"); item != nil {
		cfg.Settings, cfg.SettingOrder = decodeScalarMap(item.Value)
	}
	if item := m.GetItem("packages"); item != nil {
		cfg.Packages = decodePackages(item.Value)
	}
	if item := m.GetItem("targets"); item != nil {
		cfg.Targets = decodeTargets(item.Value)
	}

	return cfg
}

func decodeProject(n yamlmeta.Node) ProjectHeader {
	if s, ok := n.(*yamlmeta.Scalar); ok {
		return ProjectHeader{Name: s.Value}
	}
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		return ProjectHeader{}
	}
	p := ProjectHeader{}
	if item := m.GetItem("name"); item != nil {
		p.Name = DecodeExpression(item.Value).Value
	}
	if item := m.GetItem("version"); item != nil {
		p.Version = DecodeExpression(item.Value)
	}
	return p
}

func decodeIncludes(n yamlmeta.Node) []Include {
	seq, ok := n.(*yamlmeta.Sequence)
	if !ok {
		return nil
	}
	var out []Include
	for _, item := range seq.Items {
		out = append(out, decodeInclude(item))
	}
	return out
}

func decodeInclude(n yamlmeta.Node) Include {
	if s, ok := n.(*yamlmeta.Scalar); ok {
		return Include{Paths: []string{s.Value}, Parameters: map[string]string{}}
	}
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		return Include{Parameters: map[string]string{}}
	}
	inc := Include{Parameters: map[string]string{}}
	if item := m.GetItem("paths"); item != nil {
		inc.Paths = decodeStringList(item.Value)
	}
	if item := m.GetItem("parameters"); item != nil {
		params, _ := decodeScalarMap(item.Value)
		for k, v := range params {
			inc.Parameters[k] = v.Value
		}
	}
	return inc
}

func decodeStringList(n yamlmeta.Node) []string {
	if s, ok := n.(*yamlmeta.Scalar); ok {
		if !s.Defined {
			return nil
		}
		return []string{s.Value}
	}
	seq, ok := n.(*yamlmeta.Sequence)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range seq.Items {
		if s, ok := item.(*yamlmeta.Scalar); ok {
			out = append(out, s.Value)
		}
	}
	return out
}

func decodeTemplateRef(n yamlmeta.Node) TemplateRef {
	if s, ok := n.(*yamlmeta.Scalar); ok {
		return TemplateRef{Names: []string{s.Value}, Parameters: map[string]string{}}
	}
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		return TemplateRef{Parameters: map[string]string{}}
	}
	ref := TemplateRef{Parameters: map[string]string{}}
	if item := m.GetItem("names"); item != nil {
		ref.Names = decodeStringList(item.Value)
	}
	if item := m.GetItem("parameters"); item != nil {
		params, _ := decodeScalarMap(item.Value)
		for k, v := range params {
			ref.Parameters[k] = v.Value
		}
	}
	return ref
}

func decodeTemplateRefs(n yamlmeta.Node) []TemplateRef {
	if s, ok := n.(*yamlmeta.Scalar); ok {
		return []TemplateRef{{Names: []string{s.Value}, Parameters: map[string]string{}}}
	}
	seq, ok := n.(*yamlmeta.Sequence)
	if !ok {
		return nil
	}
	var out []TemplateRef
	for _, item := range seq.Items {
		out = append(out, decodeTemplateRef(item))
	}
	return out
}

func decodeOptions(n yamlmeta.Node) []Option {
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		return nil
	}
	var out []Option
	for _, item := range m.Items {
		opt := Option{Name: item.BaseName()}
		if om, ok := item.Value.(*yamlmeta.Mapping); ok {
			if d := om.GetItem("description"); d != nil {
				opt.Description = DecodeExpression(d.Value).Value
			}
			if d := om.GetItem("default"); d != nil {
				opt.Default = DecodeExpression(d.Value)
			}
		}
		out = append(out, opt)
	}
	return out
}

func decodeScalarMap(n yamlmeta.Node) (map[string]Expression, []string) {
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		return map[string]Expression{}, nil
	}
	out := map[string]Expression{}
	var order []string
	for _, item := range m.Items {
		out[item.BaseName()] = DecodeExpression(item.Value)
		order = append(order, item.BaseName())
	}
	return out, order
}

func decodeTemplates(n yamlmeta.Node) (map[string]TargetSettings, []string) {
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		return map[string]TargetSettings{}, nil
	}
	out := map[string]TargetSettings{}
	var order []string
	for _, item := range m.Items {
		out[item.BaseName()] = decodeTargetSettings(item.Value, false)
		order = append(order, item.BaseName())
	}
	return out, order
}

func decodePackages(n yamlmeta.Node) []Package {
	seq, ok := n.(*yamlmeta.Sequence)
	if !ok {
		return nil
	}
	var out []Package
	for _, item := range seq.Items {
		out = append(out, decodePackage(item))
	}
	return out
}

func decodePackage(n yamlmeta.Node) Package {
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		return Package{}
	}
	pkg := Package{}
	if item := m.GetItem("name"); item != nil {
		pkg.Name = DecodeExpression(item.Value).Value
	}
	if item := m.GetItem("if"); item != nil {
		pkg.If = DecodeExpression(item.Value).Value
	}

	if m.Has("external") {
		ext := &ExternalPackage{Strategy: StrategySubmodule, Options: map[string]Expression{}}
		if item := m.GetItem("url"); item != nil {
			ext.URL = DecodeExpression(item.Value).Value
		}
		if item := m.GetItem("version"); item != nil {
			ext.Version = DecodeExpression(item.Value)
		}
		if item := m.GetItem("strategy"); item != nil {
			if DecodeExpression(item.Value).Value == string(StrategyClone) {
				ext.Strategy = StrategyClone
			}
		}
		if item := m.GetItem("options"); item != nil {
			if om, ok := item.Value.(*yamlmeta.Mapping); ok {
				for _, o := range om.Items {
					ext.Options[o.BaseName()] = DecodeExpression(o.Value)
					ext.optionOrder = append(ext.optionOrder, o.BaseName())
				}
			}
		}
		pkg.External = ext
	} else if m.Has("system") {
		sys := &SystemPackage{Required: true}
		if item := m.GetItem("version"); item != nil {
			sys.Version = DecodeExpression(item.Value)
		}
		if item := m.GetItem("required"); item != nil {
			e := DecodeExpression(item.Value)
			sys.Required = !e.Defined || e.Value != "false"
		}
		pkg.System = sys
	}

	return pkg
}

func decodeDefinition(n yamlmeta.Node) Definition {
	if m, ok := n.(*yamlmeta.Mapping); ok && len(m.Items) > 0 {
		item := m.Items[0]
		return Definition{Kind: DefinitionMacro, Name: item.BaseName(), Value: DecodeExpression(item.Value)}
	}
	return Definition{Kind: DefinitionToken, Token: DecodeExpression(n)}
}

func decodeTargets(n yamlmeta.Node) []Target {
	seq, ok := n.(*yamlmeta.Sequence)
	if !ok {
		return nil
	}
	var out []Target
	for _, item := range seq.Items {
		out = append(out, decodeTarget(item))
	}
	return out
}

func decodeTarget(n yamlmeta.Node) Target {
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		return Target{}
	}
	t := Target{}
	if item := m.GetItem("if"); item != nil {
		t.If = DecodeExpression(item.Value).Value
	}
	if item := m.GetItem("templates"); item != nil {
		t.Templates = decodeTemplateRefs(item.Value)
	}

	isLibrary := m.Has("library")
	var nameNode yamlmeta.Node
	if isLibrary {
		t.Kind = KindLibrary
		nameNode = m.Get("library")
	} else {
		t.Kind = KindExecutable
		nameNode = m.Get("executable")
	}
	if s, ok := nameNode.(*yamlmeta.Scalar); ok {
		t.Name = s.Value
	}

	if isLibrary {
		t.LibKind = LibStatic
		if item := m.GetItem("type"); item != nil {
			t.LibKind = LibraryKind(DecodeExpression(item.Value).Value)
		}
		if item := m.GetItem("aliases"); item != nil {
			t.Aliases = decodeStringList(item.Value)
		}
	}

	t.Settings = decodeTargetSettings(m, isLibrary && t.LibKind == LibInterface)
	t.Settings.SourceNode = m
	return t
}

// decodeTargetSettings decodes a target's (or template's) body into
// TargetSettings, resolving each Visibility field's `default` bucket per
// spec §4.5. isInterfaceLibrary controls where `default` resolves to.
func decodeTargetSettings(n yamlmeta.Node, isInterfaceLibrary bool) TargetSettings {
	ts := TargetSettings{Options: map[string]Expression{}, Raw: map[string]Expression{}}

	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		return ts
	}

	if item := m.GetItem("path"); item != nil {
		ts.Path = DecodeExpression(item.Value)
	}
	if item := m.GetItem("options"); item != nil {
		vals, order := decodeScalarMap(item.Value)
		ts.Options = vals
		ts.OptionOrder = order
	}
	if item := m.GetItem("settings"); item != nil {
		vals, order := decodeScalarMap(item.Value)
		ts.Raw = vals
		ts.RawOrder = order
	}

	ts.Sources = DecodeVisibilityNode(m.Get("sources"), DecodeExpression)
	ts.Includes = DecodeVisibilityNode(m.Get("includes"), DecodeExpression)
	ts.PCHs = DecodeVisibilityNode(m.Get("pchs"), DecodeExpression)
	ts.Dependencies = DecodeVisibilityNode(m.Get("dependencies"), DecodeExpression)
	ts.Definitions = DecodeVisibilityNode(m.Get("definitions"), decodeDefinition)
	ts.CompileOptions = DecodeVisibilityNode(m.Get("compile_options"), DecodeExpression)
	ts.LinkOptions = DecodeVisibilityNode(m.Get("link_options"), DecodeExpression)

	ResolveDefault(&ts.Sources, isInterfaceLibrary)
	ResolveDefault(&ts.Includes, isInterfaceLibrary)
	ResolveDefault(&ts.PCHs, isInterfaceLibrary)
	ResolveDefault(&ts.Dependencies, isInterfaceLibrary)
	ResolveDefault(&ts.Definitions, isInterfaceLibrary)
	ResolveDefault(&ts.CompileOptions, isInterfaceLibrary)
	ResolveDefault(&ts.LinkOptions, isInterfaceLibrary)

	ts.Properties = decodeProperties(m.Get("properties"))

	return ts
}

// decodeProperties flattens a `properties` mapping (or {global:.., configurations:..}
// wrapped form) into ordered PropertyEntry lists, since properties have no
// visibility but are still `Configs<Map<String,Expression>>` per spec §3.
func decodeProperties(n yamlmeta.Node) Configs[PropertyEntry] {
	if yamlmeta.IsNullOrAbsent(n) {
		return Configs[PropertyEntry]{}
	}
	m, isMap := n.(*yamlmeta.Mapping)
	if !isMap || !m.Has("global", "configurations") {
		wrapped := &yamlmeta.Mapping{Items: []*yamlmeta.MapItem{{Key: "global", Value: n}}}
		m = wrapped
	}

	out := NewConfigs[PropertyEntry]()
	if item := m.GetItem("global"); item != nil {
		out.Global = decodePropertyEntries(item.Value)
	}
	if item := m.GetItem("configurations"); item != nil {
		if cm, ok := item.Value.(*yamlmeta.Mapping); ok {
			for _, cfgItem := range cm.Items {
				out.SetConfiguration(cfgItem.BaseName(), decodePropertyEntries(cfgItem.Value))
			}
		}
	}
	return out
}

func decodePropertyEntries(n yamlmeta.Node) []PropertyEntry {
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		return nil
	}
	var out []PropertyEntry
	for _, item := range m.Items {
		out = append(out, PropertyEntry{Name: item.BaseName(), Value: DecodeExpression(item.Value)})
	}
	return out
}
