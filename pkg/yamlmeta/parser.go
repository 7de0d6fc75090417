// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlmeta

import (
	"fmt"
	"strings"

	"github.com/cgen-tool/cgen/pkg/filepos"
	"gopkg.in/yaml.v3"
)

// ParseBytes parses raw YAML into cgen's own attribute-aware tree,
// tagging every node with its source file for later diagnostics. It mirrors
// ytt's two-phase approach of first letting a stock YAML library build a
// generic node tree, then re-shaping it into the domain AST.
func ParseBytes(data []byte, sourceName string) (Node, error) {
	var raw yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", sourceName, err)
	}
	if len(raw.Content) == 0 {
		return &Absent{Position: filepos.NewUnknownPositionInFile(sourceName)}, nil
	}
	return convert(raw.Content[0], sourceName), nil
}

func filePos(n *yaml.Node, sourceName string) *filepos.Position {
	if n.Line <= 0 {
		return filepos.NewUnknownPosition()
	}
	return filepos.NewPosition(sourceName, n.Line)
}

func convert(n *yaml.Node, sourceName string) Node {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return &Absent{Position: filePos(n, sourceName)}
		}
		return convert(n.Content[0], sourceName)

	case yaml.MappingNode:
		m := &Mapping{Position: filePos(n, sourceName)}
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			valNode := n.Content[i+1]
			base, attr := splitAttr(keyNode.Value)
			m.Items = append(m.Items, &MapItem{
				Key:      base,
				Attr:     attr,
				Value:    convert(valNode, sourceName),
				Position: filePos(keyNode, sourceName),
			})
		}
		return m

	case yaml.SequenceNode:
		s := &Sequence{Position: filePos(n, sourceName)}
		for _, item := range n.Content {
			s.Items = append(s.Items, convert(item, sourceName))
		}
		return s

	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return &Scalar{Defined: false, Position: filePos(n, sourceName)}
		}
		quoted := n.Style == yaml.DoubleQuotedStyle || n.Style == yaml.SingleQuotedStyle
		return &Scalar{Value: n.Value, Quoted: quoted, Defined: true, Position: filePos(n, sourceName)}

	case yaml.AliasNode:
		return convert(n.Alias, sourceName)

	default:
		return &Absent{Position: filePos(n, sourceName)}
	}
}

// splitAttr splits "name:REPLACE" into ("name", "REPLACE"); a plain "name"
// splits into ("name", "").
func splitAttr(key string) (base string, attr string) {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		return key, ""
	}
	base, candidate := key[:idx], key[idx+1:]
	if candidate == AttrReplace {
		return base, candidate
	}
	return key, ""
}
