// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

// TrimAttributes recursively strips every mapping key's attribute in place,
// producing the normal form spec §4.1 requires before decoding.
func TrimAttributes(n Node) {
	switch t := n.(type) {
	case *Mapping:
		for _, item := range t.Items {
			item.Attr = ""
			TrimAttributes(item.Value)
		}
	case *Sequence:
		for _, item := range t.Items {
			TrimAttributes(item)
		}
	}
}
