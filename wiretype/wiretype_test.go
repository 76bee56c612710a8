package wiretype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedByteArrayID(t *testing.T) {
	cases := []struct {
		length int
		want   ID
		ok     bool
	}{
		{4, ByteArray4, true},
		{20, ByteArray20, true},
		{512, ByteArray512, true},
		{13, 0, false},
		{0, 0, false},
	}
	for _, c := range cases {
		id, ok := FixedByteArrayID(c.length)
		require.Equal(t, c.ok, ok, "length %d", c.length)
		if c.ok {
			require.Equal(t, c.want, id, "length %d", c.length)
		}
	}
}

func TestIsFixedWidth(t *testing.T) {
	fixed := []ID{Indicator, Boolean, Byte, Short, Int, Long, Float, Double, ByteArray4, ByteArray512, Date, Time, DateTime}
	for _, id := range fixed {
		require.Truef(t, IsFixedWidth(id), "IsFixedWidth(%d)", id)
	}
	variable := []ID{ByteArrayVar, String, ShortArray, IntArray, LongArray, FloatArray, DoubleArray, SubMessage, MsgWithID}
	for _, id := range variable {
		require.Falsef(t, IsFixedWidth(id), "IsFixedWidth(%d)", id)
	}
}

func TestFixedSize(t *testing.T) {
	cases := []struct {
		id       ID
		wantSize int
		wantOK   bool
	}{
		{Indicator, 0, true},
		{Boolean, 1, true},
		{Short, 2, true},
		{Int, 4, true},
		{Long, 8, true},
		{Date, 4, true},
		{Time, 8, true},
		{DateTime, 12, true},
		{ByteArray256, 256, true},
		{String, 0, false},
		{SubMessage, 0, false},
	}
	for _, c := range cases {
		size, ok := FixedSize(c.id)
		require.Equal(t, c.wantOK, ok, "id %d", c.id)
		if c.wantOK {
			require.Equal(t, c.wantSize, size, "id %d", c.id)
		}
	}
}

func TestReservedRangeHasNoCollisions(t *testing.T) {
	seen := map[ID]bool{}
	ids := []ID{
		Indicator, Boolean, Byte, Short, Int, Long, Float, Double,
		ByteArray4, ByteArray8, ByteArray16, ByteArray20, ByteArray32, ByteArray64, ByteArray128,
		ByteArrayVar, String, ShortArray, IntArray, LongArray, FloatArray,
		SubMessage, MsgWithID, Date, Time, DateTime,
		ByteArray256, ByteArray512, DoubleArray,
	}
	for _, id := range ids {
		require.Falsef(t, seen[id], "wire type id %d assigned more than once", id)
		seen[id] = true
		require.LessOrEqualf(t, id, ReservedMax, "standard id %d exceeds ReservedMax", id)
	}
}
