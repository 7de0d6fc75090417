// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import "github.com/cgen-tool/cgen/pkg/yamlmeta"

// Configs is the normal form spec §3 defines for "a bag of items with
// optional per-configuration overrides": shorthand X: [items] is equivalent
// to X: {global: [items]}.
type Configs[T any] struct {
	Defined       bool
	Global        []T
	Configurations map[string][]T
	// configOrder preserves authored insertion order of Configurations,
	// which map iteration order alone cannot guarantee (spec §4.4:
	// "Ordering determinism ... insertion order is preserved throughout").
	configOrder []string
}

// NewConfigs returns an empty, defined Configs value.
func NewConfigs[T any]() Configs[T] {
	return Configs[T]{Defined: true, Configurations: map[string][]T{}}
}

// SetConfiguration appends items under a named configuration, tracking
// first-seen order.
func (c *Configs[T]) SetConfiguration(name string, items []T) {
	if c.Configurations == nil {
		c.Configurations = map[string][]T{}
	}
	if _, exists := c.Configurations[name]; !exists {
		c.configOrder = append(c.configOrder, name)
	}
	c.Configurations[name] = items
}

// ConfigurationNames returns configuration names in authored order.
func (c Configs[T]) ConfigurationNames() []string {
	return c.configOrder
}

// IsEmpty reports whether there is nothing to emit: undefined, or defined
// but with no global items and no per-configuration items.
func (c Configs[T]) IsEmpty() bool {
	if !c.Defined {
		return true
	}
	if len(c.Global) > 0 {
		return false
	}
	for _, name := range c.configOrder {
		if len(c.Configurations[name]) > 0 {
			return false
		}
	}
	return true
}

// DecodeConfigsNode applies the wrap-configs shorthand normalization of
// spec §4.5 and decodes each item with decodeItem.
func DecodeConfigsNode[T any](n yamlmeta.Node, decodeItem func(yamlmeta.Node) T) Configs[T] {
	if yamlmeta.IsNullOrAbsent(n) {
		return Configs[T]{}
	}

	m, isMap := n.(*yamlmeta.Mapping)
	if !isMap || !m.Has("global", "configurations") {
		// wrap-configs: bare bag -> {global: node}
		wrapped := &yamlmeta.Mapping{Items: []*yamlmeta.MapItem{
			{Key: "global", Value: n},
		}}
		m = wrapped
	}

	out := NewConfigs[T]()
	if item := m.GetItem("global"); item != nil {
		out.Global = decodeItemList(item.Value, decodeItem)
	}
	if item := m.GetItem("configurations"); item != nil {
		if cm, ok := item.Value.(*yamlmeta.Mapping); ok {
			for _, cfgItem := range cm.Items {
				out.SetConfiguration(cfgItem.BaseName(), decodeItemList(cfgItem.Value, decodeItem))
			}
		}
	}
	return out
}

func decodeItemList[T any](n yamlmeta.Node, decodeItem func(yamlmeta.Node) T) []T {
	seq, ok := n.(*yamlmeta.Sequence)
	if !ok {
		if yamlmeta.IsNullOrAbsent(n) {
			return nil
		}
		return []T{decodeItem(n)}
	}
	out := make([]T, 0, len(seq.Items))
	for _, item := range seq.Items {
		out = append(out, decodeItem(item))
	}
	return out
}

// MoveMerge implements spec §4.5's move_merge: dst absorbs src's Defined,
// Global (appended) and Configurations (extended), used to resolve a
// Visibility's "default" bucket into "interface" or "private".
func MoveMerge[T any](dst *Configs[T], src Configs[T]) {
	dst.Defined = dst.Defined || src.Defined
	dst.Global = append(dst.Global, src.Global...)
	for _, name := range src.ConfigurationNames() {
		dst.SetConfiguration(name, append(dst.configurationOrNil(name), src.Configurations[name]...))
	}
}

func (c *Configs[T]) configurationOrNil(name string) []T {
	if c.Configurations == nil {
		return nil
	}
	return c.Configurations[name]
}
