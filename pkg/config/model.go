// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import "github.com/cgen-tool/cgen/pkg/yamlmeta"

// ProjectHeader is spec §3's Project header.
type ProjectHeader struct {
	Name    string
	Version Expression
}

// Option is spec §3's Option.
type Option struct {
	Name        string
	Description string
	Default     Expression
}

// Include is spec §3's Include directive. A bare string is sugar for
// {paths: [s], parameters: {}}.
type Include struct {
	Paths      []string
	Parameters map[string]string
}

// TemplateRef is spec §3's Template directive (per target). A bare string
// is sugar for names only.
type TemplateRef struct {
	Names      []string
	Parameters map[string]string
}

// PackageStrategy is how an external source is pulled in (spec Glossary).
type PackageStrategy string

const (
	StrategySubmodule PackageStrategy = "submodule"
	StrategyClone     PackageStrategy = "clone"
)

// Package is the sum type of spec §3: External xor System.
type Package struct {
	Name     string
	If       string
	External *ExternalPackage
	System   *SystemPackage
}

// ExternalPackage is the "external" variant.
type ExternalPackage struct {
	URL      string
	Version  Expression
	Strategy PackageStrategy
	Options  map[string]Expression
	// optionOrder preserves authored key order for deterministic emission.
	optionOrder []string
}

// OptionNames returns option names in authored order.
func (e *ExternalPackage) OptionNames() []string { return e.optionOrder }

// SystemPackage is the "system" variant.
type SystemPackage struct {
	Version  Expression
	Required bool
}

// DefinitionKind distinguishes a bare token from a defined macro.
type DefinitionKind int

const (
	DefinitionToken DefinitionKind = iota
	DefinitionMacro
)

// Definition is spec §3's Definition sum type.
type Definition struct {
	Kind  DefinitionKind
	Token Expression
	Name  string
	Value Expression
}

// TargetKind distinguishes library from executable.
type TargetKind int

const (
	KindLibrary TargetKind = iota
	KindExecutable
)

// LibraryKind is spec §3's library-only "kind" field.
type LibraryKind string

const (
	LibStatic    LibraryKind = "static"
	LibShared    LibraryKind = "shared"
	LibInterface LibraryKind = "interface"
	LibObject    LibraryKind = "object"
)

// TargetSettings bundles everything spec §3 lists under a target's
// library|executable block.
type TargetSettings struct {
	SourceNode yamlmeta.Node // kept verbatim until template merge (spec §4.4 step 5)

	Path        Expression
	Options     map[string]Expression
	OptionOrder []string
	Raw         map[string]Expression
	RawOrder    []string

	Sources        Visibility[Expression]
	Includes       Visibility[Expression]
	PCHs           Visibility[Expression]
	Dependencies   Visibility[Expression]
	Definitions    Visibility[Definition]
	CompileOptions Visibility[Expression]
	LinkOptions    Visibility[Expression]

	Properties Configs[PropertyEntry]
}

// PropertyEntry is one name/value pair inside `properties` (spec §3:
// "Configs<Map<String,Expression>>", flattened here into ordered entries so
// that Configs[T]'s ordering guarantee also covers property keys).
type PropertyEntry struct {
	Name  string
	Value Expression
}

// Target is spec §3's Target.
type Target struct {
	Kind      TargetKind
	Name      string
	If        string
	Templates []TemplateRef
	Settings  TargetSettings

	LibKind LibraryKind // library-only
	Aliases []string    // library-only
}

// Config is spec §3's root Config.
type Config struct {
	Version   string
	Project   ProjectHeader
	Includes  []Include
	Templates map[string]TargetSettings
	// TemplateOrder lists the Templates keys in authored order.
	TemplateOrder []string
	Options       []Option
	Settings      map[string]Expression
	SettingOrder  []string
	Packages      []Package
	Targets       []Target
}
