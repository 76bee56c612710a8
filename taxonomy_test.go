package fudge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaxonomyNameAndOrdinalLookup(t *testing.T) {
	tax := NewTaxonomy(map[int16]string{1: "id", 2: "name"})

	name, ok := tax.NameFor(1)
	require.True(t, ok)
	require.Equal(t, "id", name)

	ord, ok := tax.OrdinalFor("name")
	require.True(t, ok)
	require.Equal(t, int16(2), ord)

	_, ok = tax.NameFor(99)
	require.False(t, ok, "NameFor(99) found a name in a table that doesn't have one")
}

func TestTaxonomyDuplicateNameKeepsOneOrdinal(t *testing.T) {
	// Ordinal->name tables are unordered on construction (Go map
	// iteration), so which ordinal wins is not defined; this only checks
	// that one of them wins and the constructor does not error.
	tax := NewTaxonomy(map[int16]string{1: "dup", 2: "dup"})
	ord, ok := tax.OrdinalFor("dup")
	require.True(t, ok)
	require.Contains(t, []int16{1, 2}, ord)
}

func TestTaxonomyResolverRegisterAndResolve(t *testing.T) {
	resolver := NewTaxonomyResolver()
	require.Nil(t, resolver.Resolve(5))

	tax := NewTaxonomy(map[int16]string{1: "a"})
	resolver.Register(5, tax)
	require.Same(t, tax, resolver.Resolve(5))
}
