package fudge

import (
	"io"

	"github.com/fudgemsg/fudge/wiretype"
)

type writeFrame struct {
	declared  int64
	written   int64
}

// Writer is the binary stream writer described in COMPONENT DESIGN §4.4.
// It emits one field at a time; because framing is length-prefixed, the
// caller must know a sub-message's size before calling
// WriteSubmessageStart (see FieldSize / MessageSize), and the writer
// itself tracks a stack of declared-vs-written byte counts purely to
// catch a caller that writes the wrong number of bytes into a
// sub-message frame.
type Writer struct {
	dst      io.Writer
	dict     *TypeDictionary
	taxonomy *Taxonomy

	offset int64
	closed bool
	closer io.Closer
	frames []writeFrame
}

// NewWriter builds a Writer over dst. taxonomy, if non-nil, is consulted
// to substitute ordinals for names per §4.2; pass nil to write names
// verbatim.
func NewWriter(dst io.Writer, dict *TypeDictionary, taxonomy *Taxonomy) *Writer {
	if dict == nil {
		dict = DefaultTypeDictionary()
	}
	w := &Writer{dst: dst, dict: dict, taxonomy: taxonomy}
	if c, ok := dst.(io.Closer); ok {
		w.closer = c
	}
	return w
}

// WriteEnvelopeHeader writes the 8-byte envelope header. totalLength must
// be the full on-the-wire size of the envelope including this header
// (see EnvelopeHeaderSize + MessageSize).
func (w *Writer) WriteEnvelopeHeader(directives, version uint8, taxonomyID int16, totalLength int32) error {
	buf := make([]byte, 0, EnvelopeHeaderSize)
	buf = append(buf, directives, version, byte(uint16(taxonomyID)>>8), byte(uint16(taxonomyID)))
	buf = appendInt32(buf, totalLength)
	return w.write(buf)
}

// WriteField writes one non-sub-message field: prefix, type id, ordinal,
// name, payload length, and payload.
func (w *Writer) WriteField(id wiretype.ID, value interface{}, name *string, ordinal *int16) error {
	name, ordinal = substituteForSizing(name, ordinal, w.taxonomy)

	payload, err := w.encodePayload(id, value)
	if err != nil {
		return err
	}

	fixed := wiretype.IsFixedWidth(id)
	var varWidthBytes int
	if !fixed {
		varWidthBytes = varWidthBytesFor(len(payload))
	}

	if err := w.writeHeader(id, fixed, varWidthBytes, name, ordinal, len(payload)); err != nil {
		return err
	}
	if err := w.write(payload); err != nil {
		return err
	}
	w.accountBytes(int64(fieldHeaderSize(name, ordinal)) + int64(lengthFieldWidth(fixed, varWidthBytes)) + int64(len(payload)))
	return nil
}

// WriteSubmessageStart writes a type-21 sub-message field's header, whose
// declared payload size must equal the total bytes the caller writes
// before the matching WriteSubmessageEnd (computed ahead of time with
// MessageSize).
func (w *Writer) WriteSubmessageStart(size int, name *string, ordinal *int16) error {
	return w.writeSubmessageStart(wiretype.SubMessage, nil, size, name, ordinal)
}

// WriteSubmessageWithIDStart writes a type-23 "fudge msg with id" header.
func (w *Writer) WriteSubmessageWithIDStart(messageID int32, size int, name *string, ordinal *int16) error {
	return w.writeSubmessageStart(wiretype.MsgWithID, &messageID, size, name, ordinal)
}

func (w *Writer) writeSubmessageStart(id wiretype.ID, messageID *int32, size int, name *string, ordinal *int16) error {
	name, ordinal = substituteForSizing(name, ordinal, w.taxonomy)

	declaredPayload := size
	if messageID != nil {
		declaredPayload += 4
	}
	varWidthBytes := varWidthBytesFor(declaredPayload)
	if err := w.writeHeader(id, false, varWidthBytes, name, ordinal, declaredPayload); err != nil {
		return err
	}
	if messageID != nil {
		if err := w.write(appendInt32(nil, *messageID)); err != nil {
			return err
		}
	}
	w.accountBytes(int64(fieldHeaderSize(name, ordinal)) + int64(varWidthBytes) + int64(declaredPayload) - int64(size))
	w.frames = append(w.frames, writeFrame{declared: int64(size)})
	return nil
}

// WriteSubmessageEnd closes the most recently opened sub-message frame.
// It is an error to call this before exactly `size` bytes of fields
// (as passed to WriteSubmessageStart) have been written into the frame.
func (w *Writer) WriteSubmessageEnd() error {
	if len(w.frames) == 0 {
		return &FramingViolation{Reason: "WriteSubmessageEnd with no open sub-message frame"}
	}
	top := w.frames[len(w.frames)-1]
	w.frames = w.frames[:len(w.frames)-1]
	if top.written != top.declared {
		return &FramingViolation{Reason: "sub-message frame closed with the wrong number of bytes written"}
	}
	return nil
}

// Close releases the underlying transport if it implements io.Closer.
// Double-close is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.closer != nil {
		if err := w.closer.Close(); err != nil {
			return &IOFailure{Op: "close", Err: err}
		}
	}
	return nil
}

func lengthFieldWidth(fixed bool, varWidthBytes int) int {
	if fixed {
		return 0
	}
	return varWidthBytes
}

func (w *Writer) writeHeader(id wiretype.ID, fixed bool, varWidthBytes int, name *string, ordinal *int16, payloadLen int) error {
	prefix := byte(0)
	if fixed {
		prefix |= 0x80
	}
	if ordinal != nil {
		prefix |= 0x40
	}
	if name != nil {
		prefix |= 0x20
	}
	switch varWidthBytes {
	case 1:
		prefix |= 0x08
	case 2:
		prefix |= 0x10
	case 4:
		prefix |= 0x18
	}

	buf := make([]byte, 0, 8+len(stringOrEmpty(name)))
	buf = append(buf, prefix, byte(id))
	if ordinal != nil {
		u := uint16(*ordinal)
		buf = append(buf, byte(u>>8), byte(u))
	}
	if name != nil {
		buf = append(buf, byte(len(*name)))
		buf = append(buf, *name...)
	}
	switch varWidthBytes {
	case 1:
		buf = append(buf, byte(payloadLen))
	case 2:
		buf = append(buf, byte(payloadLen>>8), byte(payloadLen))
	case 4:
		buf = appendInt32(buf, int32(payloadLen))
	}
	return w.write(buf)
}

func (w *Writer) encodePayload(id wiretype.ID, value interface{}) ([]byte, error) {
	codec := w.dict.Codec(id)
	if codec == nil {
		b, ok := value.([]byte)
		if !ok {
			return nil, &TypeMismatch{Value: value}
		}
		return b, nil
	}
	return codec.Write(nil, value)
}

func (w *Writer) accountBytes(n int64) {
	for i := range w.frames {
		w.frames[i].written += n
	}
}

func (w *Writer) write(b []byte) error {
	n, err := w.dst.Write(b)
	w.offset += int64(n)
	if err != nil {
		return &IOFailure{Op: "write", Err: err}
	}
	return nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
