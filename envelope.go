package fudge

import "fmt"

// EnvelopeHeaderSize is the fixed size, in bytes, of the envelope header
// that precedes every top-level Fudge stream: 1 (processing directives) +
// 1 (schema version) + 2 (taxonomy id) + 4 (total length).
const EnvelopeHeaderSize = 8

// Envelope wraps the top-level message in a Fudge stream, per
// org.fudgemsg.FudgeMsgEnvelope. An envelope appears only at the stream
// root; sub-messages use the type-21 field framing instead.
type Envelope struct {
	Message              *Message
	ProcessingDirectives uint8
	SchemaVersion        uint8
	TaxonomyID           int16
}

// NewEnvelope wraps message with the given version and zero processing
// directives, matching the single-argument Java constructor's defaults.
func NewEnvelope(message *Message, version uint8) *Envelope {
	return &Envelope{Message: message, SchemaVersion: version}
}

// String renders a debugging summary, not the wire form.
func (e *Envelope) String() string {
	return fmt.Sprintf("Envelope[version=%d,processing=%d,taxonomy=%d,fields=%d]",
		e.SchemaVersion, e.ProcessingDirectives, e.TaxonomyID, e.Message.NumFields())
}
