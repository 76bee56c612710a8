package fudge

import (
	"fmt"
	"reflect"

	"github.com/fudgemsg/fudge/wiretype"
)

// A Codec knows how to measure, write, and read the payload of a single
// wire type. Prefix bytes (type id, ordinal, name) are handled by the
// stream writer/reader; a Codec only ever sees the payload.
type Codec interface {
	// ID is the wire type id this codec serves.
	ID() wiretype.ID

	// Size returns the payload length in bytes for value. Sizes must be
	// computed without mutating value, since the writer calls Size before
	// Write to precompute frame lengths.
	Size(value interface{}) (int, error)

	// Write serializes value's payload (not the field prefix) onto buf.
	Write(buf []byte, value interface{}) ([]byte, error)

	// Read parses length bytes from data as this type's payload.
	Read(data []byte) (interface{}, error)
}

// TypeDictionary maps wire type ids to codecs and native Go value types to
// their best-matching wire type, mirroring org.fudgemsg's
// FudgeTypeDictionary. A Context owns exactly one TypeDictionary; there is
// no package-level singleton registry, per the "replace global state with
// context-scoped dictionaries" design note, but DefaultTypeDictionary
// returns a fully populated instance for callers who don't need a custom
// one.
type TypeDictionary struct {
	byID     map[wiretype.ID]Codec
	byGoType map[reflect.Type]wiretype.ID
}

// NewTypeDictionary returns an empty dictionary. Most callers want
// DefaultTypeDictionary instead.
func NewTypeDictionary() *TypeDictionary {
	return &TypeDictionary{
		byID:     make(map[wiretype.ID]Codec),
		byGoType: make(map[reflect.Type]wiretype.ID),
	}
}

// DefaultTypeDictionary returns a new dictionary pre-populated with every
// standard wire type in wiretype.
func DefaultTypeDictionary() *TypeDictionary {
	d := NewTypeDictionary()
	for _, c := range standardCodecs() {
		d.Register(c)
	}
	d.registerGoType(reflect.TypeOf(nil), wiretype.Indicator)
	d.registerGoType(reflect.TypeOf(false), wiretype.Boolean)
	d.registerGoType(reflect.TypeOf(int8(0)), wiretype.Byte)
	d.registerGoType(reflect.TypeOf(int16(0)), wiretype.Short)
	d.registerGoType(reflect.TypeOf(int32(0)), wiretype.Int)
	d.registerGoType(reflect.TypeOf(int64(0)), wiretype.Long)
	d.registerGoType(reflect.TypeOf(int(0)), wiretype.Long)
	d.registerGoType(reflect.TypeOf(float32(0)), wiretype.Float)
	d.registerGoType(reflect.TypeOf(float64(0)), wiretype.Double)
	d.registerGoType(reflect.TypeOf([]byte(nil)), wiretype.ByteArrayVar)
	d.registerGoType(reflect.TypeOf(""), wiretype.String)
	d.registerGoType(reflect.TypeOf([]int16(nil)), wiretype.ShortArray)
	d.registerGoType(reflect.TypeOf([]int32(nil)), wiretype.IntArray)
	d.registerGoType(reflect.TypeOf([]int64(nil)), wiretype.LongArray)
	d.registerGoType(reflect.TypeOf([]float32(nil)), wiretype.FloatArray)
	d.registerGoType(reflect.TypeOf([]float64(nil)), wiretype.DoubleArray)
	d.registerGoType(reflect.TypeOf((*Message)(nil)), wiretype.SubMessage)
	d.registerGoType(reflect.TypeOf(Date{}), wiretype.Date)
	d.registerGoType(reflect.TypeOf(Time{}), wiretype.Time)
	d.registerGoType(reflect.TypeOf(DateTime{}), wiretype.DateTime)
	return d
}

// Register adds or replaces the codec for its own id.
func (d *TypeDictionary) Register(c Codec) {
	d.byID[c.ID()] = c
}

func (d *TypeDictionary) registerGoType(t reflect.Type, id wiretype.ID) {
	d.byGoType[t] = id
}

// RegisterGoType associates a Go type with an already-registered wire type
// id, so that ByGoType resolves values of that type on encode. Used by
// hosts that add application-specific codecs above wiretype.ReservedMax.
func (d *TypeDictionary) RegisterGoType(t reflect.Type, id wiretype.ID) {
	d.registerGoType(t, id)
}

// Codec returns the codec registered for id, or nil if none is registered.
func (d *TypeDictionary) Codec(id wiretype.ID) Codec {
	return d.byID[id]
}

// ByGoType resolves a native value to its wire type id. Byte slices are
// narrowed to their best-matching fixed-length type first (see
// BestMatchByteArray); everything else is a direct type lookup.
func (d *TypeDictionary) ByGoType(value interface{}) (wiretype.ID, error) {
	if value == nil {
		return wiretype.Indicator, nil
	}
	if b, ok := value.([]byte); ok {
		return d.BestMatchByteArray(len(b)), nil
	}
	if id, ok := d.byGoType[reflect.TypeOf(value)]; ok {
		return id, nil
	}
	// Integers are accepted at any width and narrowed later by the message
	// container (see NarrowInt); a bare "int" literal from caller code
	// resolves the same way.
	switch value.(type) {
	case int8:
		return wiretype.Byte, nil
	case int16:
		return wiretype.Short, nil
	case int32:
		return wiretype.Int, nil
	case int64, int:
		return wiretype.Long, nil
	}
	return 0, &TypeMismatch{Value: value}
}

// BestMatchByteArray returns the fixed-length byte array wire type whose
// size equals length, falling back to the variable byte array type if
// length matches none of wiretype.FixedByteArraySizes exactly.
func (d *TypeDictionary) BestMatchByteArray(length int) wiretype.ID {
	if id, ok := wiretype.FixedByteArrayID(length); ok {
		return id
	}
	return wiretype.ByteArrayVar
}

// NarrowInt returns the narrowest standard integer wire type id that can
// losslessly hold v, per the invariant in DATA MODEL: integer fields are
// always written in the narrowest standard integer type.
func NarrowInt(v int64) wiretype.ID {
	switch {
	case v >= -128 && v <= 127:
		return wiretype.Byte
	case v >= -32768 && v <= 32767:
		return wiretype.Short
	case v >= -2147483648 && v <= 2147483647:
		return wiretype.Int
	default:
		return wiretype.Long
	}
}

func standardCodecs() []Codec {
	return []Codec{
		indicatorCodec{},
		booleanCodec{},
		byteCodec{},
		shortCodec{},
		intCodec{},
		longCodec{},
		floatCodec{},
		doubleCodec{},
		fixedByteArrayCodec{id: wiretype.ByteArray4, size: 4},
		fixedByteArrayCodec{id: wiretype.ByteArray8, size: 8},
		fixedByteArrayCodec{id: wiretype.ByteArray16, size: 16},
		fixedByteArrayCodec{id: wiretype.ByteArray20, size: 20},
		fixedByteArrayCodec{id: wiretype.ByteArray32, size: 32},
		fixedByteArrayCodec{id: wiretype.ByteArray64, size: 64},
		fixedByteArrayCodec{id: wiretype.ByteArray128, size: 128},
		fixedByteArrayCodec{id: wiretype.ByteArray256, size: 256},
		fixedByteArrayCodec{id: wiretype.ByteArray512, size: 512},
		varByteArrayCodec{},
		stringCodec{},
		shortArrayCodec{},
		intArrayCodec{},
		longArrayCodec{},
		floatArrayCodec{},
		doubleArrayCodec{},
		dateCodec{},
		timeCodec{},
		dateTimeCodec{},
	}
}

func wrongType(id wiretype.ID, value interface{}) error {
	return fmt.Errorf("fudge: wire type %d cannot encode %T", id, value)
}
