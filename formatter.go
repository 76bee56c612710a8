package fudge

import (
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/fudgemsg/fudge/wiretype"
)

// Formatter is the textual dump described in COMPONENT DESIGN §4.7: one
// line per field, indented by nesting depth, with no round-trip
// requirement. It exists purely for diagnostics.
type Formatter struct {
	w io.Writer
}

// NewFormatter builds a Formatter writing to w.
func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

// FormatEnvelope writes env's header and the full field tree.
func (f *Formatter) FormatEnvelope(env *Envelope) error {
	if _, err := fmt.Fprintf(f.w, "envelope version=%d processing=%d taxonomy=%d\n",
		env.SchemaVersion, env.ProcessingDirectives, env.TaxonomyID); err != nil {
		return &IOFailure{Op: "writing formatted envelope header", Err: err}
	}
	return f.FormatMessage(env.Message, 0)
}

// FormatMessage writes one line per field of msg, recursing into
// sub-messages with depth+1.
func (f *Formatter) FormatMessage(msg *Message, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, field := range msg.Fields() {
		ordinal := "-"
		if field.HasOrdinal() {
			ordinal = fmt.Sprintf("%d", *field.Ordinal)
		}
		name := "-"
		if field.HasName() {
			name = *field.Name
		}

		if sub, ok := field.Value.(*Message); ok {
			if _, err := fmt.Fprintf(f.w, "%s%s, %s, type=%d, submessage\n", indent, ordinal, name, field.Type); err != nil {
				return &IOFailure{Op: "writing formatted field", Err: err}
			}
			if err := f.FormatMessage(sub, depth+1); err != nil {
				return err
			}
			continue
		}

		value := formatValue(field)
		if _, err := fmt.Fprintf(f.w, "%s%s, %s, type=%d, %s\n", indent, ordinal, name, field.Type, value); err != nil {
			return &IOFailure{Op: "writing formatted field", Err: err}
		}
	}
	return nil
}

// formatValue renders an opaque unknown-type payload as a hex dump via
// go-spew, since it has no native Go type the formatter otherwise knows
// how to render tersely; every other value uses its default %v form.
func formatValue(field Field) string {
	if b, ok := field.Value.([]byte); ok && (field.Unknown || !wiretype.IsStandard(field.Type)) {
		return spew.Sdump(b)
	}
	return fmt.Sprintf("%v", field.Value)
}
