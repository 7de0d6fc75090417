// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

// Equal compares two trees structurally, ignoring source Position (used by
// property tests such as merge-associativity that only care about content).
func Equal(a, b Node) bool {
	switch at := a.(type) {
	case *Absent:
		_, ok := b.(*Absent)
		return ok
	case *Scalar:
		bt, ok := b.(*Scalar)
		return ok && at.Value == bt.Value && at.Quoted == bt.Quoted && at.Defined == bt.Defined
	case *Sequence:
		bt, ok := b.(*Sequence)
		if !ok || len(at.Items) != len(bt.Items) {
			return false
		}
		for i := range at.Items {
			if !Equal(at.Items[i], bt.Items[i]) {
				return false
			}
		}
		return true
	case *Mapping:
		bt, ok := b.(*Mapping)
		if !ok || len(at.Items) != len(bt.Items) {
			return false
		}
		for i := range at.Items {
			ai, bi := at.Items[i], bt.Items[i]
			if ai.Key != bi.Key || ai.Attr != bi.Attr || !Equal(ai.Value, bi.Value) {
				return false
			}
		}
		return true
	}
	return false
}
