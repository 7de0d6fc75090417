// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package param_test

import (
	"testing"

	"github.com/cgen-tool/cgen/pkg/param"
	"github.com/cgen-tool/cgen/pkg/yamlmeta"
	"github.com/stretchr/testify/require"
)

func scalar(v string) *yamlmeta.Scalar { return &yamlmeta.Scalar{Value: v, Defined: true} }

func TestSubstituteRoundTrip(t *testing.T) {
	s := scalar("$$(k)")
	undef := param.Substitute(s, map[string]string{})
	require.Empty(t, undef)
	require.Equal(t, "$(k)", s.Value)

	s2 := scalar("$(k)")
	undef2 := param.Substitute(s2, map[string]string{"k": "v"})
	require.Empty(t, undef2)
	require.Equal(t, "v", s2.Value)
}

func TestSubstituteUndefinedCollectsOrder(t *testing.T) {
	s := scalar("$(a)-$(b)-$(a)")
	undef := param.Substitute(s, map[string]string{"b": "B"})
	require.Equal(t, []string{"a"}, undef)
	require.Equal(t, "-B-", s.Value)
}

func TestSubstituteLiteralDollar(t *testing.T) {
	s := scalar("cost: $5")
	undef := param.Substitute(s, nil)
	require.Empty(t, undef)
	require.Equal(t, "cost: $5", s.Value)
}

func TestSubstituteRecursesIntoTreeButNotKeys(t *testing.T) {
	m := &yamlmeta.Mapping{Items: []*yamlmeta.MapItem{
		{Key: "$(name)", Value: scalar("$(name) library")},
	}}
	undef := param.Substitute(m, map[string]string{"name": "included"})
	require.Empty(t, undef)
	require.Equal(t, "$(name)", m.Items[0].Key)
	require.Equal(t, "included library", m.Items[0].Value.(*yamlmeta.Scalar).Value)
}
