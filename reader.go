package fudge

import (
	"errors"
	"io"

	"github.com/fudgemsg/fudge/wiretype"
)

// StreamElement is one of the four events a Reader can emit from Next.
type StreamElement int

const (
	// NoElement is the zero value, meaning Next has not been called yet or
	// the stream has fully drained.
	NoElement StreamElement = iota
	MessageEnvelope
	SimpleField
	SubmessageFieldStart
	SubmessageFieldEnd
)

func (e StreamElement) String() string {
	switch e {
	case MessageEnvelope:
		return "MessageEnvelope"
	case SimpleField:
		return "SimpleField"
	case SubmessageFieldStart:
		return "SubmessageFieldStart"
	case SubmessageFieldEnd:
		return "SubmessageFieldEnd"
	default:
		return "NoElement"
	}
}

type readFrame struct {
	remaining int64
	withID    bool
	messageID int32
}

// Reader is the binary pull parser described in COMPONENT DESIGN §4.3. It
// reads one Fudge envelope at a time from an underlying io.Reader (and,
// once a message's outermost frame closes, is ready to read another
// envelope from the same stream, so a single Reader can walk a
// concatenated sequence of messages).
type Reader struct {
	src        io.Reader
	dict       *TypeDictionary
	taxonomies *TaxonomyResolver

	offset int64
	closed bool
	closer io.Closer

	started bool
	frames  []readFrame

	current              StreamElement
	fieldName            *string
	fieldOrdinal         *int16
	fieldType            wiretype.ID
	fieldValue           interface{}
	fieldUnknown         bool
	submessageID         *int32
	processingDirectives uint8
	schemaVersion        uint8
	taxonomyID           int16
	taxonomy             *Taxonomy
}

// NewReader builds a Reader over src using dict to resolve wire type ids
// and taxonomies (which may be nil) to back-fill names from ordinals.
func NewReader(src io.Reader, dict *TypeDictionary, taxonomies *TaxonomyResolver) *Reader {
	if dict == nil {
		dict = DefaultTypeDictionary()
	}
	r := &Reader{src: src, dict: dict, taxonomies: taxonomies}
	if c, ok := src.(io.Closer); ok {
		r.closer = c
	}
	return r
}

// HasNext reports whether the reader is positioned to attempt another
// envelope. Between messages this is optimistic: it returns true even at
// the true end of the stream, since checking for more data would require
// reading ahead. Callers must still treat io.EOF from Next/NextMessage as
// a clean, expected end of stream rather than an error.
func (r *Reader) HasNext() bool {
	if r.closed {
		return false
	}
	if !r.started {
		return true
	}
	return len(r.frames) > 0
}

// CurrentElement returns the element produced by the most recent Next
// call.
func (r *Reader) CurrentElement() StreamElement { return r.current }

// FieldName returns the current field's name (possibly back-filled from a
// taxonomy), or nil.
func (r *Reader) FieldName() *string { return r.fieldName }

// FieldOrdinal returns the current field's ordinal, or nil.
func (r *Reader) FieldOrdinal() *int16 { return r.fieldOrdinal }

// FieldType returns the current field's wire type id.
func (r *Reader) FieldType() wiretype.ID { return r.fieldType }

// FieldValue returns the current field's decoded value. For an unknown
// type this is the raw []byte payload (see FieldIsUnknownType).
func (r *Reader) FieldValue() interface{} { return r.fieldValue }

// FieldIsUnknownType reports whether the current SimpleField was decoded
// under UnknownType recovery (no codec registered for its wire type).
func (r *Reader) FieldIsUnknownType() bool { return r.fieldUnknown }

// SubmessageID returns the message id carried by a type-23
// "fudge msg with id" submessage start, or nil for an ordinary type-21
// sub-message.
func (r *Reader) SubmessageID() *int32 { return r.submessageID }

// ProcessingDirectives returns the current envelope's processing
// directive flags.
func (r *Reader) ProcessingDirectives() uint8 { return r.processingDirectives }

// SchemaVersion returns the current envelope's schema version.
func (r *Reader) SchemaVersion() uint8 { return r.schemaVersion }

// TaxonomyID returns the current envelope's taxonomy id (0 = none).
func (r *Reader) TaxonomyID() int16 { return r.taxonomyID }

// Taxonomy returns the resolved Taxonomy for the current envelope, or nil.
func (r *Reader) Taxonomy() *Taxonomy { return r.taxonomy }

// Close releases the underlying transport if it implements io.Closer.
// Double-close is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		if err := r.closer.Close(); err != nil {
			return &IOFailure{Op: "close", Err: err}
		}
	}
	return nil
}

// Next advances the parser by one element.
func (r *Reader) Next() (StreamElement, error) {
	if r.closed {
		return NoElement, errors.New("fudge: read from closed reader")
	}

	if !r.started {
		return r.readEnvelope()
	}

	if len(r.frames) == 0 {
		r.current = NoElement
		return NoElement, nil
	}

	top := &r.frames[len(r.frames)-1]
	if top.remaining == 0 {
		r.frames = r.frames[:len(r.frames)-1]
		if len(r.frames) == 0 {
			r.started = false
			r.current = NoElement
			return NoElement, nil
		}
		r.current = SubmessageFieldEnd
		r.fieldName = nil
		r.fieldOrdinal = nil
		r.submessageID = nil
		return SubmessageFieldEnd, nil
	}

	return r.readField(top)
}

func (r *Reader) readEnvelope() (StreamElement, error) {
	header := make([]byte, EnvelopeHeaderSize)
	read, err := io.ReadFull(r.src, header)
	r.offset += int64(read)
	if err != nil {
		if read == 0 && errors.Is(err, io.EOF) {
			return NoElement, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			r.terminate()
			return NoElement, &Truncated{Op: "reading envelope header", Wanted: EnvelopeHeaderSize, Got: read, Offset: r.offset}
		}
		return NoElement, &IOFailure{Op: "reading envelope header", Err: err}
	}
	directives := header[0]
	version := header[1]
	taxonomyID := int16(uint16(header[2])<<8 | uint16(header[3]))
	totalLength := readInt32(header[4:8])
	if totalLength < EnvelopeHeaderSize {
		return NoElement, &FramingViolation{
			Reason: "envelope total length smaller than the header itself",
			Offset: r.offset,
		}
	}

	r.processingDirectives = directives
	r.schemaVersion = version
	r.taxonomyID = taxonomyID
	if r.taxonomies != nil {
		r.taxonomy = r.taxonomies.Resolve(taxonomyID)
	} else {
		r.taxonomy = nil
	}
	r.started = true
	r.frames = []readFrame{{remaining: int64(totalLength) - EnvelopeHeaderSize}}
	r.current = MessageEnvelope
	r.fieldName = nil
	r.fieldOrdinal = nil
	return MessageEnvelope, nil
}

func (r *Reader) readField(top *readFrame) (StreamElement, error) {
	prefixStart := r.offset
	prefixBytes, err := r.readFull(1, "reading field prefix")
	if err != nil {
		return NoElement, err
	}
	prefix := prefixBytes[0]
	hasOrdinal := prefix&0x40 != 0
	hasName := prefix&0x20 != 0
	varWidthCode := (prefix >> 3) & 0x3

	typeByte, err := r.readFull(1, "reading field type id")
	if err != nil {
		return NoElement, err
	}
	id := wiretype.ID(typeByte[0])

	consumed := int64(2) // prefix + type id

	var ordinal *int16
	if hasOrdinal {
		b, err := r.readFull(2, "reading field ordinal")
		if err != nil {
			return NoElement, err
		}
		v := int16(uint16(b[0])<<8 | uint16(b[1]))
		ordinal = &v
		consumed += 2
	}

	var name *string
	if hasName {
		lb, err := r.readFull(1, "reading field name length")
		if err != nil {
			return NoElement, err
		}
		nameLen := int(lb[0])
		consumed++
		if nameLen > 0 {
			nb, err := r.readFull(nameLen, "reading field name")
			if err != nil {
				return NoElement, err
			}
			s := string(nb)
			name = &s
			consumed += int64(nameLen)
		} else {
			empty := ""
			name = &empty
		}
	}

	var varWidthBytes int
	switch varWidthCode {
	case 0:
		varWidthBytes = 0
	case 1:
		varWidthBytes = 1
	case 2:
		varWidthBytes = 2
	case 3:
		varWidthBytes = 4
	}

	var payloadLen int64
	if varWidthBytes == 0 {
		size, ok := wiretype.FixedSize(id)
		if !ok {
			return NoElement, &FramingViolation{
				Reason: "implicit-size field of unrecognized fixed-width type cannot be skipped safely",
				Offset: prefixStart,
			}
		}
		payloadLen = int64(size)
	} else {
		lb, err := r.readFull(varWidthBytes, "reading field payload length")
		if err != nil {
			return NoElement, err
		}
		consumed += int64(varWidthBytes)
		switch varWidthBytes {
		case 1:
			payloadLen = int64(lb[0])
		case 2:
			payloadLen = int64(uint16(lb[0])<<8 | uint16(lb[1]))
		case 4:
			payloadLen = int64(uint32(readInt32(lb)))
		}
	}

	totalFieldBytes := consumed + payloadLen
	if totalFieldBytes > top.remaining {
		return NoElement, &FramingViolation{
			Reason: "field payload length exceeds the bytes remaining in its enclosing frame",
			Offset: prefixStart,
		}
	}
	top.remaining -= totalFieldBytes

	if hasOrdinal && !hasName && r.taxonomy != nil {
		if resolvedName, ok := r.taxonomy.NameFor(*ordinal); ok {
			name = &resolvedName
		}
	}

	r.fieldName = name
	r.fieldOrdinal = ordinal
	r.fieldType = id

	if id == wiretype.SubMessage || id == wiretype.MsgWithID {
		remaining := payloadLen
		var msgID *int32
		if id == wiretype.MsgWithID {
			idBytes, err := r.readFull(4, "reading submessage id")
			if err != nil {
				return NoElement, err
			}
			v := readInt32(idBytes)
			msgID = &v
			remaining -= 4
			if remaining < 0 {
				return NoElement, &FramingViolation{
					Reason: "fudge-msg-with-id payload shorter than its embedded id",
					Offset: prefixStart,
				}
			}
		}
		r.frames = append(r.frames, readFrame{remaining: remaining, withID: msgID != nil})
		r.submessageID = msgID
		r.fieldValue = nil
		r.fieldUnknown = false
		r.current = SubmessageFieldStart
		return SubmessageFieldStart, nil
	}

	payload, err := r.readFull(int(payloadLen), "reading field payload")
	if err != nil {
		return NoElement, err
	}

	codec := r.dict.Codec(id)
	if codec == nil {
		r.fieldValue = payload
		r.fieldUnknown = true
	} else {
		value, err := codec.Read(payload)
		if err != nil {
			return NoElement, &FramingViolation{Reason: err.Error(), Offset: prefixStart}
		}
		r.fieldValue = value
		r.fieldUnknown = false
	}
	r.submessageID = nil
	r.current = SimpleField
	return SimpleField, nil
}

func (r *Reader) readFull(n int, op string) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(r.src, buf)
	r.offset += int64(read)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			r.terminate()
			return nil, &Truncated{Op: op, Wanted: n, Got: read, Offset: r.offset}
		}
		return nil, &IOFailure{Op: op, Err: err}
	}
	return buf, nil
}

// terminate puts the reader in its terminal state after a Truncated error:
// HasNext reports false and Next returns NoElement from then on.
func (r *Reader) terminate() {
	r.started = true
	r.frames = nil
	r.current = NoElement
}
