// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import "github.com/cgen-tool/cgen/pkg/yamlmeta"

// Expression is a textual value plus the two flags spec §3 requires:
// Defined distinguishes "absent" from "empty string", Quoted records
// whether the author wrote a quoted scalar so the emitter can echo it
// verbatim. Two Expressions are equal iff all three fields match.
type Expression struct {
	Value   string
	Defined bool
	Quoted  bool
}

// NoExpression is the zero value: undefined.
var NoExpression = Expression{}

// DecodeExpression turns a tree node into an Expression. A missing node or
// an Absent decodes to NoExpression; a defined-but-empty Scalar decodes to
// Expression{Defined: true}, preserving the identity distinction spec §3
// calls out as an invariant.
func DecodeExpression(n yamlmeta.Node) Expression {
	s, ok := n.(*yamlmeta.Scalar)
	if !ok || !s.Defined {
		return NoExpression
	}
	return Expression{Value: s.Value, Defined: true, Quoted: s.Quoted}
}

// Equal implements the three-field equality spec §3 defines.
func (e Expression) Equal(other Expression) bool {
	return e.Defined == other.Defined && e.Quoted == other.Quoted && e.Value == other.Value
}

// PathJoin concatenates a target-local prefix with an item's own value the
// way the emitter needs for sources/includes/pchs (spec §4.6): the quoted
// flag is OR'd, the defined flag is OR'd, and the value is a path-join.
// An item with neither a prefix nor its own value carries nothing.
func PathJoin(prefix, item Expression) Expression {
	if !prefix.Defined && !item.Defined {
		return NoExpression
	}
	value := joinPath(prefix.Value, item.Value)
	return Expression{
		Value:   value,
		Defined: prefix.Defined || item.Defined,
		Quoted:  prefix.Quoted || item.Quoted,
	}
}

func joinPath(prefix, suffix string) string {
	switch {
	case prefix == "":
		return suffix
	case suffix == "":
		return prefix
	case prefix[len(prefix)-1] == '/':
		return prefix + suffix
	default:
		return prefix + "/" + suffix
	}
}
