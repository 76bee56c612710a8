package fudge

import "github.com/fudgemsg/fudge/wiretype"

// Field is an immutable field record: a wire type, its decoded value, and
// an optional name and/or ordinal. Name and Ordinal are pointers so that
// "absent" and "zero-valued" are distinguishable, matching the wire
// format's independent hasName/hasOrdinal bits.
type Field struct {
	Type    wiretype.ID
	Value   interface{}
	Name    *string
	Ordinal *int16

	// SubmessageID is set only for wiretype.MsgWithID fields (Value is a
	// *Message in that case too); it carries the 4-byte message id that
	// precedes the nested content on the wire.
	SubmessageID *int32

	// Unknown is set when the field was decoded under UnknownType recovery:
	// no codec was registered for Type, so Value holds the raw payload
	// bytes rather than a decoded native value.
	Unknown bool
}

// HasName reports whether the field carries a name on the wire.
func (f Field) HasName() bool { return f.Name != nil }

// HasOrdinal reports whether the field carries an ordinal on the wire.
func (f Field) HasOrdinal() bool { return f.Ordinal != nil }

// NameOrEmpty returns the field's name, or "" if it has none.
func (f Field) NameOrEmpty() string {
	if f.Name == nil {
		return ""
	}
	return *f.Name
}

// OrdinalOrZero returns the field's ordinal, or 0 if it has none.
func (f Field) OrdinalOrZero() int16 {
	if f.Ordinal == nil {
		return 0
	}
	return *f.Ordinal
}

// UnknownTypeError returns the error a caller would have seen had the
// reader not recovered from the missing codec, or nil for a known type.
func (f Field) UnknownTypeError() error {
	if !f.Unknown {
		return nil
	}
	return &UnknownType{TypeID: byte(f.Type)}
}

// StrPtr returns a pointer to a copy of s, for building Field literals.
func StrPtr(s string) *string { return &s }

// OrdinalPtr returns a pointer to a copy of o, for building Field literals.
func OrdinalPtr(o int16) *int16 { return &o }
