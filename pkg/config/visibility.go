// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import "github.com/cgen-tool/cgen/pkg/yamlmeta"

// Visibility is the normal form spec §3 defines for the downstream build
// system's propagation scopes. Shorthand X: value is equivalent to
// X: {default: value}. After decoding, Default is resolved into either
// Interface or Private (per the target kind) and cleared, per the
// "Visibility resolution" invariant.
type Visibility[T any] struct {
	Default   Configs[T]
	Public    Configs[T]
	Private   Configs[T]
	Interface Configs[T]
}

// IsEmpty reports whether every bucket has nothing to emit.
func (v Visibility[T]) IsEmpty() bool {
	return v.Default.IsEmpty() && v.Public.IsEmpty() && v.Private.IsEmpty() && v.Interface.IsEmpty()
}

// DecodeVisibilityNode applies the wrap-visibility normalization of spec
// §4.5 and decodes each of the four buckets via DecodeConfigsNode.
func DecodeVisibilityNode[T any](n yamlmeta.Node, decodeItem func(yamlmeta.Node) T) Visibility[T] {
	if yamlmeta.IsNullOrAbsent(n) {
		return Visibility[T]{}
	}

	m, isMap := n.(*yamlmeta.Mapping)
	if !isMap || !m.Has("default", "public", "private", "interface") {
		wrapped := &yamlmeta.Mapping{Items: []*yamlmeta.MapItem{
			{Key: "default", Value: n},
		}}
		m = wrapped
	}

	return Visibility[T]{
		Default:   DecodeConfigsNode(m.Get("default"), decodeItem),
		Public:    DecodeConfigsNode(m.Get("public"), decodeItem),
		Private:   DecodeConfigsNode(m.Get("private"), decodeItem),
		Interface: DecodeConfigsNode(m.Get("interface"), decodeItem),
	}
}

// ResolveDefault sends Default into Interface (for interface libraries) or
// Private (otherwise) via move_merge, then clears Default, per spec §4.5.
func ResolveDefault[T any](v *Visibility[T], isInterfaceLibrary bool) {
	if isInterfaceLibrary {
		MoveMerge(&v.Interface, v.Default)
	} else {
		MoveMerge(&v.Private, v.Default)
	}
	v.Default = Configs[T]{}
}
