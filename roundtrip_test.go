package fudge

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fudgemsg/fudge/wiretype"
)

func buildSampleMessage(t *testing.T) *Message {
	t.Helper()
	msg := NewMessage(nil)
	require.NoError(t, msg.AddNamed("name", "Alice"))
	require.NoError(t, msg.AddNamed("age", 30))
	require.NoError(t, msg.AddOrdinal(7, int64(9000000000)))
	require.NoError(t, msg.Add(nil))

	child := NewMessage(nil)
	require.NoError(t, child.AddNamed("city", "London"))
	require.NoError(t, msg.AddField(Field{Type: wiretype.SubMessage, Value: child, Name: StrPtr("address")}))

	msgID := int32(42)
	withID := NewMessage(nil)
	require.NoError(t, withID.AddNamed("status", "ok"))
	require.NoError(t, msg.AddField(Field{Type: wiretype.MsgWithID, Value: withID, Name: StrPtr("linked"), SubmessageID: &msgID}))

	return msg
}

func TestBinaryRoundTrip(t *testing.T) {
	msg := buildSampleMessage(t)

	var buf bytes.Buffer
	writer := NewMessageWriter(&buf, nil, 0, nil)
	require.NoError(t, writer.WriteMessage(msg, 1))

	reader := NewMessageReader(&buf, nil, nil)
	env, err := reader.NextMessage()
	require.NoError(t, err)
	require.EqualValues(t, 1, env.SchemaVersion)

	name, ok := env.Message.ByName("name")
	require.True(t, ok)
	require.Equal(t, "Alice", name.Value)

	age, ok := env.Message.ByName("age")
	require.True(t, ok)
	require.Equal(t, int8(30), age.Value)

	ordinalField, ok := env.Message.ByOrdinal(7)
	require.True(t, ok)
	require.Equal(t, int64(9000000000), ordinalField.Value)

	address, ok := env.Message.ByName("address")
	require.True(t, ok)
	sub, ok := address.Value.(*Message)
	require.True(t, ok)
	city, ok := sub.ByName("city")
	require.True(t, ok)
	require.Equal(t, "London", city.Value)

	linked, ok := env.Message.ByName("linked")
	require.True(t, ok)
	require.NotNil(t, linked.SubmessageID)
	require.EqualValues(t, 42, *linked.SubmessageID)

	// A single envelope was written; the stream has nothing left to read,
	// and NextMessage must report that cleanly rather than with Truncated.
	require.True(t, reader.HasNext())
	_, err = reader.NextMessage()
	require.ErrorIs(t, err, io.EOF)
}

func TestUnknownTypeRoundTripsOpaquePayload(t *testing.T) {
	// Wire type 200 has no registered codec; both the writer and reader
	// must pass its payload through as raw bytes unchanged.
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	msg := NewMessage(nil)
	require.NoError(t, msg.AddField(Field{Type: wiretype.ID(200), Value: payload, Name: StrPtr("opaque")}))

	var buf bytes.Buffer
	writer := NewMessageWriter(&buf, nil, 0, nil)
	require.NoError(t, writer.WriteMessage(msg, 1))

	reader := NewMessageReader(&buf, nil, nil)
	env, err := reader.NextMessage()
	require.NoError(t, err)

	field, ok := env.Message.ByName("opaque")
	require.True(t, ok)
	got, ok := field.Value.([]byte)
	require.True(t, ok)
	require.Equal(t, payload, got)

	require.True(t, field.Unknown)
	require.IsType(t, &UnknownType{}, field.UnknownTypeError())
}

func TestTaxonomySubstitutionRoundTrip(t *testing.T) {
	tax := NewTaxonomy(map[int16]string{3: "quantity"})
	resolver := NewTaxonomyResolver()
	resolver.Register(11, tax)

	msg := NewMessage(nil)
	require.NoError(t, msg.AddNamed("quantity", 100))

	var buf bytes.Buffer
	writer := NewMessageWriter(&buf, nil, 11, tax)
	require.NoError(t, writer.WriteMessage(msg, 1))

	reader := NewMessageReader(&buf, nil, resolver)
	env, err := reader.NextMessage()
	require.NoError(t, err)

	field, ok := env.Message.ByOrdinal(3)
	require.True(t, ok, "field was not written under its substituted ordinal")
	require.True(t, field.HasName())
	require.Equal(t, "quantity", field.NameOrEmpty())
}

func TestStreamOfEnvelopesEndsCleanly(t *testing.T) {
	var buf bytes.Buffer
	writer := NewMessageWriter(&buf, nil, 0, nil)
	for i := 0; i < 3; i++ {
		msg := NewMessage(nil)
		require.NoError(t, msg.AddNamed("n", i))
		require.NoError(t, writer.WriteMessage(msg, 1))
	}

	reader := NewMessageReader(&buf, nil, nil)
	count := 0
	for reader.HasNext() {
		_, err := reader.NextMessage()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
	}
	require.Equal(t, 3, count)
}
