// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package yamlmeta implements the document tree and merge algebra: a typed
// tree of scalars/sequences/mappings that carries per-key REPLACE attributes
// and source positions through the preprocessor pipeline.
package yamlmeta

import "github.com/cgen-tool/cgen/pkg/filepos"

// AttrReplace marks a mapping key as "name:REPLACE" in the source text.
const AttrReplace = "REPLACE"

// Node is the sealed interface implemented by every tree element.
type Node interface {
	GetPosition() *filepos.Position
	Clone() Node
	node()
}

// Scalar holds a leaf value plus whether the author wrote it quoted.
type Scalar struct {
	Value    string
	Quoted   bool
	Defined  bool
	Position *filepos.Position
}

// Sequence is an ordered list of items.
type Sequence struct {
	Items    []Node
	Position *filepos.Position
}

// Mapping is an ordered list of key/value pairs, preserving authored order.
type Mapping struct {
	Items    []*MapItem
	Position *filepos.Position
}

// MapItem is one key/value pair. Attr carries the raw ":ATTR" suffix, if any
// ("" once trimmed).
type MapItem struct {
	Key      string
	Attr     string
	Value    Node
	Position *filepos.Position
}

// Absent represents a key or value that was not present in the source at all
// (distinct from an explicit YAML null, which decodes as a defined-false
// Scalar so Expression's "undefined vs. defined&empty" distinction holds).
type Absent struct {
	Position *filepos.Position
}

func (n *Scalar) node()   {}
func (n *Sequence) node() {}
func (n *Mapping) node()  {}
func (n *Absent) node()   {}

func (n *Scalar) GetPosition() *filepos.Position   { return n.Position }
func (n *Sequence) GetPosition() *filepos.Position { return n.Position }
func (n *Mapping) GetPosition() *filepos.Position  { return n.Position }
func (n *Absent) GetPosition() *filepos.Position   { return n.Position }

// BaseName returns the key without its trailing ":ATTR".
func (mi *MapItem) BaseName() string { return mi.Key }

// Get returns the value node for a base key name, or nil.
func (m *Mapping) Get(name string) Node {
	if item := m.GetItem(name); item != nil {
		return item.Value
	}
	return nil
}

// GetItem returns the MapItem whose base name matches, or nil.
func (m *Mapping) GetItem(name string) *MapItem {
	if m == nil {
		return nil
	}
	for _, item := range m.Items {
		if item.Key == name {
			return item
		}
	}
	return nil
}

// Has reports whether any of the given base names is present.
func (m *Mapping) Has(names ...string) bool {
	for _, n := range names {
		if m.GetItem(n) != nil {
			return true
		}
	}
	return false
}

// Set inserts or overwrites (in place, preserving position) a key's value.
func (m *Mapping) Set(name string, val Node) {
	if item := m.GetItem(name); item != nil {
		item.Value = val
		return
	}
	m.Items = append(m.Items, &MapItem{Key: name, Value: val, Position: filepos.NewUnknownPosition()})
}

// IsNullOrAbsent reports whether a node represents "nothing" for merge
// purposes: a genuine Absent, a nil interface, or an undefined Scalar.
func IsNullOrAbsent(n Node) bool {
	if n == nil {
		return true
	}
	switch t := n.(type) {
	case *Absent:
		return true
	case *Scalar:
		return !t.Defined
	}
	return false
}
