// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package param implements the textual "$(name)" parameter substituter of
// spec §4.2: a single left-to-right pass over Scalar nodes, never failing,
// collecting the names of any parameters that went undefined.
package param

import (
	"strings"

	"github.com/cgen-tool/cgen/pkg/yamlmeta"
)

// Substitute walks n recursively, replacing "$(name)" occurrences in every
// Scalar's value with params[name], doubling-escaping "$$" to "$", and
// returns the names that had no entry in params, in encounter order.
// Mapping keys are never substituted.
func Substitute(n yamlmeta.Node, params map[string]string) (undefined []string) {
	var walk func(yamlmeta.Node)
	seen := map[string]bool{}

	record := func(name string) {
		if !seen[name] {
			seen[name] = true
			undefined = append(undefined, name)
		}
	}

	walk = func(node yamlmeta.Node) {
		switch t := node.(type) {
		case *yamlmeta.Scalar:
			if t.Defined {
				t.Value = substituteString(t.Value, params, record)
			}
		case *yamlmeta.Sequence:
			for _, item := range t.Items {
				walk(item)
			}
		case *yamlmeta.Mapping:
			for _, item := range t.Items {
				walk(item.Value)
			}
		}
	}

	walk(n)
	return undefined
}

// substituteString runs the one-pass state machine of spec §4.2 on a single
// scalar's text.
func substituteString(s string, params map[string]string, onUndefined func(string)) string {
	var out strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		if c != '$' {
			out.WriteByte(c)
			i++
			continue
		}

		// c == '$'
		if i+1 >= len(s) {
			out.WriteByte('$')
			i++
			continue
		}

		switch s[i+1] {
		case '$':
			out.WriteByte('$')
			i += 2
		case '(':
			end := strings.IndexByte(s[i+2:], ')')
			if end < 0 {
				// unterminated "$(" - copy verbatim, nothing more to parse
				out.WriteString(s[i:])
				i = len(s)
				continue
			}
			name := s[i+2 : i+2+end]
			if val, ok := params[name]; ok {
				out.WriteString(val)
			} else {
				onUndefined(name)
			}
			i += 2 + end + 1
		default:
			out.WriteByte('$')
			out.WriteByte(s[i+1])
			i += 2
		}
	}
	return out.String()
}
