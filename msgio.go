package fudge

import (
	"io"

	"github.com/fudgemsg/fudge/wiretype"
)

// MessageReader is the tree-reassembling facade from COMPONENT DESIGN
// §4.5: it drives an underlying Reader and hands back whole message trees
// instead of a stream of events.
type MessageReader struct {
	r *Reader
}

// NewMessageReader builds a MessageReader over src.
func NewMessageReader(src io.Reader, dict *TypeDictionary, taxonomies *TaxonomyResolver) *MessageReader {
	return &MessageReader{r: NewReader(src, dict, taxonomies)}
}

// HasNext reports whether another envelope remains to be read.
func (mr *MessageReader) HasNext() bool { return mr.r.HasNext() }

// Close closes the underlying Reader.
func (mr *MessageReader) Close() error { return mr.r.Close() }

// NextMessage consumes stream events until a full envelope has been
// reassembled into a Message tree, returning io.EOF once the underlying
// stream has no more envelopes.
func (mr *MessageReader) NextMessage() (*Envelope, error) {
	if !mr.r.HasNext() {
		return nil, io.EOF
	}
	elem, err := mr.r.Next()
	if err != nil {
		return nil, err
	}
	if elem != MessageEnvelope {
		return nil, &FramingViolation{Reason: "expected a MessageEnvelope as the first element of a message"}
	}

	root := NewMessage(mr.r.dict)
	stack := []*Message{root}

	for {
		elem, err := mr.r.Next()
		if err != nil {
			return nil, err
		}
		switch elem {
		case SimpleField:
			current := stack[len(stack)-1]
			if err := current.AddField(Field{
				Type:    mr.r.FieldType(),
				Value:   mr.r.FieldValue(),
				Name:    mr.r.FieldName(),
				Ordinal: mr.r.FieldOrdinal(),
				Unknown: mr.r.FieldIsUnknownType(),
			}); err != nil {
				return nil, err
			}
		case SubmessageFieldStart:
			child := NewMessage(mr.r.dict)
			current := stack[len(stack)-1]
			if err := current.AddField(Field{
				Type:         mr.r.FieldType(),
				Value:        child,
				Name:         mr.r.FieldName(),
				Ordinal:      mr.r.FieldOrdinal(),
				SubmessageID: mr.r.SubmessageID(),
			}); err != nil {
				return nil, err
			}
			stack = append(stack, child)
		case SubmessageFieldEnd:
			stack = stack[:len(stack)-1]
		case NoElement:
			return &Envelope{
				Message:              root,
				ProcessingDirectives: mr.r.ProcessingDirectives(),
				SchemaVersion:        mr.r.SchemaVersion(),
				TaxonomyID:           mr.r.TaxonomyID(),
			}, nil
		}
	}
}

// MessageWriter is the tree-flattening facade from COMPONENT DESIGN §4.5:
// it wraps a Message tree in an envelope and drives an underlying Writer
// to emit it.
type MessageWriter struct {
	dst        io.Writer
	dict       *TypeDictionary
	taxonomy   *Taxonomy
	taxonomyID int16
}

// NewMessageWriter builds a MessageWriter over dst. taxonomyID is written
// into the envelope header by WriteMessage (WriteEnvelope uses the
// envelope's own TaxonomyID); taxonomy (which may be nil) is the table used
// to substitute names with ordinals while writing.
func NewMessageWriter(dst io.Writer, dict *TypeDictionary, taxonomyID int16, taxonomy *Taxonomy) *MessageWriter {
	if dict == nil {
		dict = DefaultTypeDictionary()
	}
	return &MessageWriter{dst: dst, dict: dict, taxonomy: taxonomy, taxonomyID: taxonomyID}
}

// WriteMessage wraps msg in an envelope with the given version and zero
// processing directives, and writes it in full.
func (mw *MessageWriter) WriteMessage(msg *Message, version uint8) error {
	return mw.WriteEnvelope(&Envelope{Message: msg, SchemaVersion: version, TaxonomyID: mw.taxonomyID})
}

// WriteEnvelope writes env in full, including its processing directives.
func (mw *MessageWriter) WriteEnvelope(env *Envelope) error {
	payloadLen, err := MessageSize(mw.dict, env.Message, mw.taxonomy)
	if err != nil {
		return err
	}
	w := NewWriter(mw.dst, mw.dict, mw.taxonomy)
	if err := w.WriteEnvelopeHeader(env.ProcessingDirectives, env.SchemaVersion, env.TaxonomyID, int32(EnvelopeHeaderSize+payloadLen)); err != nil {
		return err
	}
	return writeFields(w, env.Message)
}

func writeFields(w *Writer, msg *Message) error {
	for _, f := range msg.Fields() {
		if f.Type == wiretype.SubMessage || f.Type == wiretype.MsgWithID {
			sub, ok := f.Value.(*Message)
			if !ok {
				return &TypeMismatch{Value: f.Value}
			}
			size, err := MessageSize(w.dict, sub, w.taxonomy)
			if err != nil {
				return err
			}
			if f.Type == wiretype.SubMessage {
				if err := w.WriteSubmessageStart(size, f.Name, f.Ordinal); err != nil {
					return err
				}
			} else {
				if f.SubmessageID == nil {
					return &FramingViolation{Reason: "fudge-msg-with-id field is missing its message id"}
				}
				if err := w.WriteSubmessageWithIDStart(*f.SubmessageID, size, f.Name, f.Ordinal); err != nil {
					return err
				}
			}
			if err := writeFields(w, sub); err != nil {
				return err
			}
			if err := w.WriteSubmessageEnd(); err != nil {
				return err
			}
			continue
		}
		if err := w.WriteField(f.Type, f.Value, f.Name, f.Ordinal); err != nil {
			return err
		}
	}
	return nil
}
