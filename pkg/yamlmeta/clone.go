// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

// Clone deep-copies a node. Cloning a mapping strips every key's attribute:
// attributes are a merge-time signal, not part of the content (spec §4.1).
func (n *Scalar) Clone() Node {
	if n == nil {
		return &Absent{}
	}
	cp := *n
	return &cp
}

func (n *Sequence) Clone() Node {
	if n == nil {
		return &Absent{}
	}
	cp := &Sequence{Position: n.Position}
	for _, item := range n.Items {
		cp.Items = append(cp.Items, cloneChild(item))
	}
	return cp
}

func (n *Mapping) Clone() Node {
	if n == nil {
		return &Absent{}
	}
	cp := &Mapping{Position: n.Position}
	for _, item := range n.Items {
		cp.Items = append(cp.Items, &MapItem{
			Key:      item.BaseName(),
			Attr:     "",
			Value:    cloneChild(item.Value),
			Position: item.Position,
		})
	}
	return cp
}

func cloneChild(n Node) Node {
	if n == nil {
		return &Absent{}
	}
	return n.Clone()
}

func (n *Absent) Clone() Node {
	if n == nil {
		return &Absent{}
	}
	cp := *n
	return &cp
}
