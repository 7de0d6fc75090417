// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

// Merge implements the merge algebra of spec §4.1: Merge(from, to) mutates
// and returns to, folding from into it.
//
//   - from absent/null            -> to unchanged
//   - both mappings                -> per-key merge (see mergeMappings)
//   - both sequences               -> append clone(from[i]) to to
//   - otherwise                    -> replace: to := clone(from)
func Merge(from, to Node) Node {
	if IsNullOrAbsent(from) {
		return to
	}

	fromMap, fromIsMap := from.(*Mapping)
	toMap, toIsMap := to.(*Mapping)
	if fromIsMap && toIsMap {
		mergeMappings(fromMap, toMap)
		return toMap
	}

	fromSeq, fromIsSeq := from.(*Sequence)
	toSeq, toIsSeq := to.(*Sequence)
	if fromIsSeq && toIsSeq {
		for _, item := range fromSeq.Items {
			toSeq.Items = append(toSeq.Items, item.Clone())
		}
		return toSeq
	}

	return from.Clone()
}

// mergeMappings applies the per-key decision table from spec §4.1.
func mergeMappings(from, to *Mapping) {
	for _, fromItem := range from.Items {
		toItem := to.GetItem(fromItem.BaseName())
		if toItem == nil {
			to.Items = append(to.Items, &MapItem{
				Key:      fromItem.BaseName(),
				Attr:     fromItem.Attr,
				Value:    valueOrNil(fromItem.Value).Clone(),
				Position: fromItem.Position,
			})
			continue
		}

		toReplace := toItem.Attr == AttrReplace
		fromReplace := fromItem.Attr == AttrReplace

		switch {
		case toReplace:
			// keep to's value and attribute untouched

		case fromReplace:
			toItem.Value = valueOrNil(fromItem.Value).Clone()
			toItem.Attr = ""
			toItem.Position = fromItem.Position

		default:
			if toItem.Value == nil {
				toItem.Value = &Absent{Position: toItem.Position}
			}
			toItem.Value = Merge(fromItem.Value, toItem.Value)
		}
	}
}

func valueOrNil(n Node) Node {
	if n == nil {
		return &Absent{Position: nil}
	}
	return n
}
