// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package preprocess

import (
	"github.com/cgen-tool/cgen/pkg/diag"
	"github.com/cgen-tool/cgen/pkg/yamlmeta"
)

// mergeTemplates implements spec §4.4 step 5: for each target, for each
// template directive, for each named template, clone+substitute+merge the
// template body into the target's own node, then trim_attributes it.
func mergeTemplates(root yamlmeta.Node, errs *diag.List) {
	m, ok := root.(*yamlmeta.Mapping)
	if !ok {
		return
	}

	templates, _ := m.Get("templates").(*yamlmeta.Mapping)

	targetsItem := m.GetItem("targets")
	if targetsItem == nil {
		return
	}
	seq, ok := targetsItem.Value.(*yamlmeta.Sequence)
	if !ok {
		return
	}

	for _, targetNode := range seq.Items {
		targetMap, ok := targetNode.(*yamlmeta.Mapping)
		if !ok {
			continue
		}

		targetItem, targetName := targetIdentity(targetMap)
		if targetItem == nil {
			continue
		}

		directivesItem := targetMap.GetItem("templates")
		if directivesItem != nil {
			applyDirectives(directivesItem.Value, templates, targetName, targetMap, errs)
		}

		yamlmeta.TrimAttributes(targetMap)
	}
}

func targetIdentity(targetMap *yamlmeta.Mapping) (item *yamlmeta.MapItem, name string) {
	for _, key := range []string{"library", "executable"} {
		item := targetMap.GetItem(key)
		if item == nil {
			continue
		}
		switch t := item.Value.(type) {
		case *yamlmeta.Mapping:
			if n := t.Get("name"); n != nil {
				if s, ok := n.(*yamlmeta.Scalar); ok {
					name = s.Value
				}
			}
		case *yamlmeta.Scalar:
			name = t.Value
		}
		return item, name
	}
	return nil, ""
}

func applyDirectives(n yamlmeta.Node, templates *yamlmeta.Mapping, targetName string, target *yamlmeta.Mapping, errs *diag.List) {
	for _, directive := range directiveList(n) {
		names, params := directiveFields(directive)
		for _, tmplName := range names {
			tmplItem := templates.GetItem(tmplName)
			if tmplItem == nil {
				errs.Add(diag.Error{
					Kind:    diag.KindTemplateNotFound,
					Source:  targetName,
					Subject: tmplName,
					Message: "referenced template was not declared",
					Pos:     posOf(directive),
				})
				continue
			}

			cloned := tmplItem.Value.Clone()
			substituteCollectingUndefined(cloned, params, diag.KindUndefinedTemplateParam, tmplName, errs)

			yamlmeta.Merge(cloned, target)
		}
	}
}

func directiveList(n yamlmeta.Node) []yamlmeta.Node {
	if yamlmeta.IsNullOrAbsent(n) {
		return nil
	}
	if _, ok := n.(*yamlmeta.Scalar); ok {
		return []yamlmeta.Node{n}
	}
	if seq, ok := n.(*yamlmeta.Sequence); ok {
		return seq.Items
	}
	return []yamlmeta.Node{n}
}

func directiveFields(n yamlmeta.Node) (names []string, params map[string]string) {
	params = map[string]string{}
	if s, ok := n.(*yamlmeta.Scalar); ok {
		return []string{s.Value}, params
	}
	m, ok := n.(*yamlmeta.Mapping)
	if !ok {
		return nil, params
	}
	if item := m.GetItem("names"); item != nil {
		names = stringListOf(item.Value)
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
	return names, params
}
