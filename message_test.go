package fudge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fudgemsg/fudge/wiretype"
)

func TestNarrowIntChoosesNarrowestType(t *testing.T) {
	cases := []struct {
		value int64
		want  wiretype.ID
	}{
		{0, wiretype.Byte},
		{127, wiretype.Byte},
		{128, wiretype.Short},
		{32767, wiretype.Short},
		{32768, wiretype.Int},
		{2147483647, wiretype.Int},
		{2147483648, wiretype.Long},
		{-129, wiretype.Short},
		{-2147483649, wiretype.Long},
	}
	for _, c := range cases {
		require.Equalf(t, c.want, NarrowInt(c.value), "NarrowInt(%d)", c.value)
	}
}

func TestMessageAddNarrowsIntegers(t *testing.T) {
	msg := NewMessage(nil)
	require.NoError(t, msg.AddNamed("small", 42))
	f, ok := msg.ByName("small")
	require.True(t, ok)
	require.Equal(t, wiretype.Byte, f.Type)
	require.IsType(t, int8(0), f.Value)
}

func TestMessageAddByteArrayNarrowing(t *testing.T) {
	msg := NewMessage(nil)
	require.NoError(t, msg.AddNamed("fixed", make([]byte, 20)))
	require.NoError(t, msg.AddNamed("var", make([]byte, 13)))

	fixed, ok := msg.ByName("fixed")
	require.True(t, ok)
	require.Equal(t, wiretype.ByteArray20, fixed.Type)

	variable, ok := msg.ByName("var")
	require.True(t, ok)
	require.Equal(t, wiretype.ByteArrayVar, variable.Type)
}

func TestMessageCapacityExceeded(t *testing.T) {
	msg := NewMessage(nil)
	msg.fields = make([]Field, MaxFields)
	err := msg.Add(1)
	require.Error(t, err)
	require.IsType(t, &CapacityExceeded{}, err)
}

func TestByNameAndByOrdinalFirstMatchOnly(t *testing.T) {
	msg := NewMessage(nil)
	require.NoError(t, msg.AddNamed("dup", "first"))
	require.NoError(t, msg.AddNamed("dup", "second"))
	f, ok := msg.ByName("dup")
	require.True(t, ok)
	require.Equal(t, "first", f.Value)

	require.NoError(t, msg.AddOrdinal(4, "third"))
	require.NoError(t, msg.AddOrdinal(4, "fourth"))
	g, ok := msg.ByOrdinal(4)
	require.True(t, ok)
	require.Equal(t, "third", g.Value)
}
