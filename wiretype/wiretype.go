// Package wiretype defines the standard Fudge wire type ids and the small
// set of predicates the encoder and decoder need to know about them. It is
// the Go analogue of the teacher library's codes package: a flat table of
// byte constants plus a handful of classification helpers, kept separate
// from the registry of codecs (fudge.TypeDictionary) that attaches
// behaviour to each id.
package wiretype

// ID is a Fudge wire type identifier, 0..255. Ids 0..31 are reserved for
// the standard types below; the dictionary may register additional ids
// above that range for application-specific types.
type ID uint8

// Standard wire type ids. The byte-array and numeric-array families each
// span more ids than a single contiguous run of the reserved range can
// hold alongside the fixed single-purpose ids (sub-message, fudge-msg-with-id,
// date/time); the two longest families (256 and 512 byte fixed arrays, and
// the double array) spill into the otherwise-unused tail of the reserved
// block (27..29) rather than colliding with 21/23/24/25/26. See DESIGN.md
// for the reasoning.
const (
	Indicator ID = 0
	Boolean   ID = 1
	Byte      ID = 2
	Short     ID = 3
	Int       ID = 4
	Long      ID = 5
	Float     ID = 6
	Double    ID = 7

	ByteArray4   ID = 8
	ByteArray8   ID = 9
	ByteArray16  ID = 10
	ByteArray20  ID = 11
	ByteArray32  ID = 12
	ByteArray64  ID = 13
	ByteArray128 ID = 14

	ByteArrayVar ID = 15
	String       ID = 16

	ShortArray ID = 17
	IntArray   ID = 18
	LongArray  ID = 19
	FloatArray ID = 20

	SubMessage ID = 21
	// 22 is intentionally unassigned, matching the gap in the wire format.
	MsgWithID ID = 23

	Date     ID = 24
	Time     ID = 25
	DateTime ID = 26

	ByteArray256 ID = 27
	ByteArray512 ID = 28
	DoubleArray  ID = 29

	// ReservedMax is the highest id reserved for standard types, including
	// the ids this package leaves unassigned; application-specific types
	// belong above it. TypeDictionary.Register does not check this and
	// accepts any id.
	ReservedMax ID = 31
)

// FixedByteArraySizes lists, in ascending order, the payload lengths that
// map to a dedicated fixed-length wire type rather than the variable byte
// array type.
var FixedByteArraySizes = []int{4, 8, 16, 20, 32, 64, 128, 256, 512}

// byteArrayIDBySize maps a fixed length to its wire type id.
var byteArrayIDBySize = map[int]ID{
	4:   ByteArray4,
	8:   ByteArray8,
	16:  ByteArray16,
	20:  ByteArray20,
	32:  ByteArray32,
	64:  ByteArray64,
	128: ByteArray128,
	256: ByteArray256,
	512: ByteArray512,
}

// ByteArraySizeByID is the inverse of byteArrayIDBySize, used by the
// decoder to recover a payload length from a fixed-array wire type id.
var ByteArraySizeByID = func() map[ID]int {
	m := make(map[ID]int, len(byteArrayIDBySize))
	for size, id := range byteArrayIDBySize {
		m[id] = size
	}
	return m
}()

// FixedByteArrayID returns the wire type id for a byte array of the given
// length and true, or (0, false) if no fixed-length type matches.
func FixedByteArrayID(length int) (ID, bool) {
	id, ok := byteArrayIDBySize[length]
	return id, ok
}

// IsFixedWidth reports whether a wire type's payload width is implicit
// from the type id alone (true for every standard scalar and fixed byte
// array, false for anything length-prefixed).
func IsFixedWidth(id ID) bool {
	switch id {
	case Indicator, Boolean, Byte, Short, Int, Long, Float, Double,
		ByteArray4, ByteArray8, ByteArray16, ByteArray20, ByteArray32,
		ByteArray64, ByteArray128, ByteArray256, ByteArray512,
		Date, Time, DateTime:
		return true
	default:
		return false
	}
}

// FixedSize returns the on-the-wire payload size in bytes for a fixed-width
// type id, or (0, false) if the type is not fixed-width (or not standard).
func FixedSize(id ID) (int, bool) {
	switch id {
	case Indicator:
		return 0, true
	case Boolean, Byte:
		return 1, true
	case Short:
		return 2, true
	case Int, Float:
		return 4, true
	case Long, Double:
		return 8, true
	case Date:
		return 4, true
	case Time:
		return 8, true
	case DateTime:
		return 12, true
	}
	if size, ok := ByteArraySizeByID[id]; ok {
		return size, true
	}
	return 0, false
}

// IsStandard reports whether id falls in the reserved standard-type range.
func IsStandard(id ID) bool {
	return id <= ReservedMax
}
