// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"github.com/cgen-tool/cgen/pkg/diag"
	"github.com/cgen-tool/cgen/pkg/yamlmeta"
)

// mergeIncludes implements spec §4.4 step 3: walk `includes` in order,
// resolving, loading, substituting, recursing inside-out, stripping
// identity keys, and merging each loaded tree into root.
func mergeIncludes(root yamlmeta.Node, loader Loader, includeRoots []string, visited map[string]bool, errs *diag.List) {
	m, ok := root.(*yamlmeta.Mapping)
	if !ok {
		return
	}
	includesItem := m.GetItem("includes")
	if includesItem == nil {
		return
	}
	seq, ok := includesItem.Value.(*yamlmeta.Sequence)
	if !ok {
		return
	}

	for _, entryNode := range seq.Items {
		paths, params := includeEntryFields(entryNode)

		for _, p := range paths {
			resolved, found := loader.Resolve(includeRoots, p)
			if !found {
				errs.Add(diag.Error{
					Kind:    diag.KindIncludeNotFound,
					Subject: p,
					Message: "include path could not be resolved",
					Pos:     posOf(entryNode),
				})
				continue
			}
			if visited[resolved] {
				continue
			}
			visited[resolved] = true

			data, err := loader.Read(resolved)
			if err != nil {
				errs.Add(diag.Error{
					Kind:    diag.KindIncludeNotFound,
					Subject: p,
					Message: err.Error(),
					Pos:     posOf(entryNode),
				})
				continue
			}

			loaded, err := yamlmeta.ParseBytes(data, resolved)
			if err != nil {
				errs.Add(diag.Error{
					Kind:    diag.KindIncludeNotFound,
					Subject: p,
					Message: err.Error(),
					Pos:     posOf(entryNode),
				})
				continue
			}

			substituteCollectingUndefined(loaded, params, diag.KindUndefinedIncludeParam, p, errs)

			// Nested includes merge inside-out, before this file joins root.
			// Parameters do not propagate: each nested include declares its own.
			mergeIncludes(loaded, loader, includeRoots, visited, errs)

			stripKeys(loaded, "version", "project", "includes")

			yamlmeta.Merge(loaded, root)
		}
	}
}

func includeEntryFields(n yamlmeta.Node) (paths []string, params map[string]string) {
	params = map[string]string{}
	if s, ok := n.(*yamlmeta.Scalar); ok {
		return []string{s.Value}, params
	}
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		return nil, params
	}
	if item := m.GetItem("paths"); item != nil {
		paths = stringListOf(item.Value)
	}
	if item := m.GetItem("parameters"); item != nil {
		if pm, ok := item.Value.(*yamlmeta.Mapping); ok {
			for _, p := range pm.Items {
				if s, ok := p.Value.(*yamlmeta.Scalar); ok && s.Defined {
					params[p.BaseName()] = s.Value
				}
			}
		}
	}
	return paths, params
}

func stringListOf(n yamlmeta.Node) []string {
	if s, ok := n.(*yamlmeta.Scalar); ok {
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

func stripKeys(n yamlmeta.Node, keys ...string) {
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		return
	}
	remove := map[string]bool{}
	for _, k := range keys {
		remove[k] = true
	}
	kept := m.Items[:0]
	for _, item := range m.Items {
		if !remove[item.BaseName()] {
			kept = append(kept, item)
		}
	}
	m.Items = kept
}
