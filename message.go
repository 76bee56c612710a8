package fudge

import (
	"github.com/fudgemsg/fudge/wiretype"
)

// MaxFields is the short-count ceiling from the DATA MODEL invariants: no
// message may hold 32768 or more fields.
const MaxFields = 32767

// Message is an ordered, mutable list of fields. It is not a map: field
// order is significant and duplicate names or ordinals are legal, matching
// org.fudgemsg.FudgeMsg. A Message is created through a Context (or
// NewMessage for the default dictionary) and is safe for concurrent reads
// once publication has stopped; mutation is not safe for concurrent use.
type Message struct {
	dict   *TypeDictionary
	fields []Field
}

// NewMessage returns an empty message that resolves native Go values
// against dict. Pass nil to use DefaultTypeDictionary().
func NewMessage(dict *TypeDictionary) *Message {
	if dict == nil {
		dict = DefaultTypeDictionary()
	}
	return &Message{dict: dict}
}

// Dictionary returns the type dictionary this message resolves values
// against.
func (m *Message) Dictionary() *TypeDictionary { return m.dict }

// NumFields returns the number of fields currently in the message.
func (m *Message) NumFields() int { return len(m.fields) }

// Fields returns the message's fields in wire order. The returned slice
// must not be mutated by the caller.
func (m *Message) Fields() []Field { return m.fields }

// Add resolves value's wire type from the dictionary (narrowing integers
// and byte arrays per the DATA MODEL invariants) and appends an anonymous
// field (no name, no ordinal).
func (m *Message) Add(value interface{}) error {
	return m.add(nil, nil, value)
}

// AddNamed appends a named field.
func (m *Message) AddNamed(name string, value interface{}) error {
	return m.add(&name, nil, value)
}

// AddOrdinal appends a field identified only by ordinal.
func (m *Message) AddOrdinal(ordinal int16, value interface{}) error {
	return m.add(nil, &ordinal, value)
}

// AddNamedOrdinal appends a field carrying both a name and an ordinal.
func (m *Message) AddNamedOrdinal(name string, ordinal int16, value interface{}) error {
	return m.add(&name, &ordinal, value)
}

// AddField appends a pre-built field, resolving its Type from the
// dictionary if Type is the zero value and Value is non-nil, otherwise
// trusting the caller's explicit Type (used by the binary reader to
// preserve the wire type exactly as read, including opaque unknown
// types).
func (m *Message) AddField(f Field) error {
	if err := m.checkCapacity(); err != nil {
		return err
	}
	if f.Type == wiretype.Indicator && f.Value != nil {
		id, resolved, err := resolveWireType(m.dict, f.Value)
		if err != nil {
			return err
		}
		f.Type, f.Value = id, resolved
	}
	if f.Ordinal != nil {
		_ = *f.Ordinal // int16 already enforces the 16-bit range
	}
	m.fields = append(m.fields, f)
	return nil
}

// RemoveAt deletes the field at index i, preserving order of the rest.
func (m *Message) RemoveAt(i int) {
	m.fields = append(m.fields[:i], m.fields[i+1:]...)
}

// ByName returns the first field with the given name and true, or the
// zero Field and false if none matches. Messages permit duplicate names;
// use Fields() and filter manually to see every match.
func (m *Message) ByName(name string) (Field, bool) {
	for _, f := range m.fields {
		if f.HasName() && *f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ByOrdinal returns the first field with the given ordinal and true, or
// the zero Field and false if none matches.
func (m *Message) ByOrdinal(ordinal int16) (Field, bool) {
	for _, f := range m.fields {
		if f.HasOrdinal() && *f.Ordinal == ordinal {
			return f, true
		}
	}
	return Field{}, false
}

func (m *Message) add(name *string, ordinal *int16, value interface{}) error {
	if err := m.checkCapacity(); err != nil {
		return err
	}
	id, resolved, err := resolveWireType(m.dict, value)
	if err != nil {
		return err
	}
	m.fields = append(m.fields, Field{Type: id, Value: resolved, Name: name, Ordinal: ordinal})
	return nil
}

func (m *Message) checkCapacity() error {
	if len(m.fields) >= MaxFields {
		return &CapacityExceeded{Reason: "message already holds the maximum of 32767 fields"}
	}
	return nil
}

// resolveWireType picks the wire type id for value and, for integers,
// returns value narrowed to the Go type matching that id so later codec
// lookups by Go type succeed.
func resolveWireType(dict *TypeDictionary, value interface{}) (wiretype.ID, interface{}, error) {
	if value == nil {
		return wiretype.Indicator, nil, nil
	}
	if v, ok := asInt64(value); ok {
		id := NarrowInt(v)
		return id, narrowedValue(id, v), nil
	}
	if b, ok := value.([]byte); ok {
		return dict.BestMatchByteArray(len(b)), value, nil
	}
	id, err := dict.ByGoType(value)
	if err != nil {
		return 0, nil, err
	}
	return id, value, nil
}

func narrowedValue(id wiretype.ID, v int64) interface{} {
	switch id {
	case wiretype.Byte:
		return int8(v)
	case wiretype.Short:
		return int16(v)
	case wiretype.Int:
		return int32(v)
	default:
		return v
	}
}
