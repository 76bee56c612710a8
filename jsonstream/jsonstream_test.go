package jsonstream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fudgemsg/fudge"
)

func TestDecodeEnvelopeHeaderAnyPosition(t *testing.T) {
	// fudgeSchemaVersion appears after the data field it describes, which
	// the entry-ordering pass must still recognize by name.
	doc := []byte(`{"name":"Alice","fudgeSchemaVersion":3,"fudgeTaxonomy":7}`)
	env, err := Decode(doc)
	require.NoError(t, err)
	require.EqualValues(t, 3, env.SchemaVersion)
	require.EqualValues(t, 7, env.TaxonomyID)

	f, ok := env.Message.ByName("name")
	require.True(t, ok)
	require.Equal(t, "Alice", f.Value)
}

func TestDecodeNestedObjectBecomesSubmessage(t *testing.T) {
	doc := []byte(`{"address":{"city":"London","zip":1234}}`)
	env, err := Decode(doc)
	require.NoError(t, err)

	f, ok := env.Message.ByName("address")
	require.True(t, ok)
	sub, ok := f.Value.(*fudge.Message)
	require.True(t, ok)

	city, ok := sub.ByName("city")
	require.True(t, ok)
	require.Equal(t, "London", city.Value)
}

func TestDecodeHomogeneousNumericArray(t *testing.T) {
	doc := []byte(`{"scores":[1,2,3]}`)
	env, err := Decode(doc)
	require.NoError(t, err)

	f, ok := env.Message.ByName("scores")
	require.True(t, ok)
	arr, ok := f.Value.([]int32)
	require.True(t, ok)
	require.Equal(t, []int32{1, 2, 3}, arr)
}

func TestDecodeHeterogeneousArrayExpandsToRepeatedFields(t *testing.T) {
	doc := []byte(`{"tag":["a",1,true]}`)
	env, err := Decode(doc)
	require.NoError(t, err)

	count := 0
	for _, f := range env.Message.Fields() {
		if f.HasName() && f.NameOrEmpty() == "tag" {
			count++
		}
	}
	require.Equal(t, 3, count)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := fudge.NewMessage(nil)
	require.NoError(t, msg.AddNamed("name", "Bob"))
	require.NoError(t, msg.AddNamed("age", 99))
	env := &fudge.Envelope{Message: msg, SchemaVersion: 2}

	out, err := Encode(env)
	require.NoError(t, err)

	decoded, err := Decode(out)
	require.NoError(t, err)
	require.EqualValues(t, 2, decoded.SchemaVersion)

	f, ok := decoded.Message.ByName("name")
	require.True(t, ok)
	require.Equal(t, "Bob", f.Value)
}
