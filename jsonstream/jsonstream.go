// Package jsonstream implements the JSON rendering of a Fudge message tree
// described in COMPONENT DESIGN §4.6: a message becomes a JSON object,
// envelope metadata lives under configurable keys, and JSON arrays are
// either decoded as a homogeneous primitive array or expanded into a
// repeated field, one emitted field per element.
package jsonstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fudgemsg/fudge"
	"github.com/fudgemsg/fudge/wiretype"
)

// EnvelopeKeys names the JSON object keys under which envelope metadata is
// read and written. The zero value is not usable; use DefaultEnvelopeKeys.
type EnvelopeKeys struct {
	ProcessingDirectives string
	SchemaVersion        string
	Taxonomy             string
}

// DefaultEnvelopeKeys returns the standard key names.
func DefaultEnvelopeKeys() EnvelopeKeys {
	return EnvelopeKeys{
		ProcessingDirectives: "fudgeProcessingDirectives",
		SchemaVersion:        "fudgeSchemaVersion",
		Taxonomy:             "fudgeTaxonomy",
	}
}

type config struct {
	keys       EnvelopeKeys
	useSIMD    bool
	dict       *fudge.TypeDictionary
	taxonomies *fudge.TaxonomyResolver
}

// Option configures Decode and Encode.
type Option func(*config)

// WithEnvelopeKeys overrides the default envelope metadata key names.
func WithEnvelopeKeys(keys EnvelopeKeys) Option {
	return func(c *config) { c.keys = keys }
}

// WithDictionary overrides the type dictionary used to resolve native Go
// values. The default is fudge.DefaultTypeDictionary().
func WithDictionary(dict *fudge.TypeDictionary) Option {
	return func(c *config) { c.dict = dict }
}

// WithTaxonomies attaches a taxonomy resolver so a decoded envelope's
// taxonomy id backfills the names of ordinal-keyed fields. Only the object
// that carries the taxonomy key is backfilled: fields of nested objects are
// not, unless the nested object carries its own taxonomy key.
func WithTaxonomies(resolver *fudge.TaxonomyResolver) Option {
	return func(c *config) { c.taxonomies = resolver }
}

// WithSIMDTokenizer swaps the default encoding/json-based tokenizer for one
// backed by github.com/minio/simdjson-go, intended for large payloads. The
// parsed document is walked with the same entry-ordering and
// repeated-field logic as the default backend.
func WithSIMDTokenizer() Option {
	return func(c *config) { c.useSIMD = true }
}

func newConfig(opts []Option) *config {
	c := &config{keys: DefaultEnvelopeKeys(), dict: fudge.DefaultTypeDictionary()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// entry is one key/raw-value pair from a JSON object, in source order.
type entry struct {
	key string
	raw json.RawMessage
}

// Decode reads one JSON-rendered Fudge envelope from data and reassembles
// it into a *fudge.Envelope, mirroring fudge.MessageReader.NextMessage for
// the JSON surface.
func Decode(data []byte, opts ...Option) (*fudge.Envelope, error) {
	c := newConfig(opts)
	entries, err := orderedEntries(data, c)
	if err != nil {
		return nil, err
	}

	env := &fudge.Envelope{}
	var taxonomy *fudge.Taxonomy
	fields := make([]entry, 0, len(entries))
	for _, e := range entries {
		switch e.key {
		case c.keys.ProcessingDirectives:
			var v uint8
			if err := json.Unmarshal(e.raw, &v); err != nil {
				return nil, &fudge.FramingViolation{Reason: "fudgeProcessingDirectives is not a number: " + err.Error()}
			}
			env.ProcessingDirectives = v
		case c.keys.SchemaVersion:
			var v uint8
			if err := json.Unmarshal(e.raw, &v); err != nil {
				return nil, &fudge.FramingViolation{Reason: "fudgeSchemaVersion is not a number: " + err.Error()}
			}
			env.SchemaVersion = v
		case c.keys.Taxonomy:
			var v int16
			if err := json.Unmarshal(e.raw, &v); err != nil {
				return nil, &fudge.FramingViolation{Reason: "fudgeTaxonomy is not a number: " + err.Error()}
			}
			env.TaxonomyID = v
			if c.taxonomies != nil {
				taxonomy = c.taxonomies.Resolve(v)
			}
		default:
			fields = append(fields, e)
		}
	}

	msg := fudge.NewMessage(c.dict)
	for _, e := range fields {
		if err := decodeEntry(msg, e, c, taxonomy); err != nil {
			return nil, err
		}
	}
	env.Message = msg
	return env, nil
}

func decodeEntry(msg *fudge.Message, e entry, c *config, taxonomy *fudge.Taxonomy) error {
	name, ordinal := fieldKey(e.key, taxonomy)

	trimmed := bytes.TrimSpace(e.raw)
	if len(trimmed) == 0 {
		return &fudge.FramingViolation{Reason: "empty JSON value for field " + e.key}
	}

	switch trimmed[0] {
	case '{':
		sub, err := decodeObject(trimmed, c)
		if err != nil {
			return err
		}
		return addField(msg, wiretype.SubMessage, sub, name, ordinal)
	case '[':
		return decodeArray(msg, trimmed, name, ordinal, c)
	case 'n':
		return addField(msg, wiretype.Indicator, nil, name, ordinal)
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return &fudge.FramingViolation{Reason: err.Error()}
		}
		return addField(msg, wiretype.String, s, name, ordinal)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return &fudge.FramingViolation{Reason: err.Error()}
		}
		return addField(msg, wiretype.Boolean, b, name, ordinal)
	default:
		return decodeNumberField(msg, trimmed, name, ordinal)
	}
}

func decodeNumberField(msg *fudge.Message, raw json.RawMessage, name *string, ordinal *int16) error {
	id, value, err := decodeNumber(raw)
	if err != nil {
		return err
	}
	return addField(msg, id, value, name, ordinal)
}

func decodeNumber(raw json.RawMessage) (wiretype.ID, interface{}, error) {
	var i int64
	if err := json.Unmarshal(raw, &i); err == nil {
		return fudge.NarrowInt(i), i, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, nil, &fudge.FramingViolation{Reason: "value is not a JSON number: " + err.Error()}
	}
	return wiretype.Double, f, nil
}

func decodeObject(raw json.RawMessage, c *config) (*fudge.Message, error) {
	env, err := Decode(raw, func(cc *config) {
		cc.keys = c.keys
		cc.dict = c.dict
		cc.taxonomies = c.taxonomies
		cc.useSIMD = c.useSIMD
	})
	if err != nil {
		return nil, err
	}
	return env.Message, nil
}

// decodeArray implements the homogeneous-numeric-array vs.
// repeated-field-expansion rule from COMPONENT DESIGN §4.6.
func decodeArray(msg *fudge.Message, raw json.RawMessage, name *string, ordinal *int16, c *config) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return &fudge.FramingViolation{Reason: err.Error()}
	}
	if len(elems) == 0 {
		return addField(msg, wiretype.IntArray, []int32{}, name, ordinal)
	}

	if allNumbers(elems) {
		id, value, err := narrowestNumericArray(elems)
		if err == nil {
			return addField(msg, id, value, name, ordinal)
		}
	}

	// Heterogeneous (or otherwise unrecognized) array: expand into a
	// repeated field, one element per emitted field, all sharing name and
	// ordinal, in array order.
	for _, elem := range elems {
		if err := decodeEntry(msg, entry{key: keyOf(name, ordinal), raw: elem}, c, nil); err != nil {
			return fallbackToSourceString(msg, raw, name, ordinal)
		}
		fixupLastField(msg, name, ordinal)
	}
	return nil
}

func fallbackToSourceString(msg *fudge.Message, raw json.RawMessage, name *string, ordinal *int16) error {
	return addField(msg, wiretype.String, string(raw), name, ordinal)
}

func keyOf(name *string, ordinal *int16) string {
	if name != nil {
		return *name
	}
	if ordinal != nil {
		return strconv.FormatInt(int64(*ordinal), 10)
	}
	return ""
}

// fixupLastField re-stamps the field most recently appended by decodeEntry
// with the repeated field's own name/ordinal, since decodeEntry always
// derives its key from fieldKey(e.key, ...) for the synthetic single-field
// recursion above.
func fixupLastField(msg *fudge.Message, name *string, ordinal *int16) {
	fields := msg.Fields()
	if len(fields) == 0 {
		return
	}
	last := fields[len(fields)-1]
	last.Name = name
	last.Ordinal = ordinal
	msg.RemoveAt(len(fields) - 1)
	_ = msg.AddField(last)
}

func allNumbers(elems []json.RawMessage) bool {
	for _, e := range elems {
		t := bytes.TrimSpace(e)
		if len(t) == 0 {
			return false
		}
		c := t[0]
		if c != '-' && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// narrowestNumericArray decodes elems as the narrowest of int32, int64, or
// float64 arrays that represents every element losslessly, per the
// "int -> long -> double" rule.
func narrowestNumericArray(elems []json.RawMessage) (wiretype.ID, interface{}, error) {
	ints := make([]int64, 0, len(elems))
	allIntegral := true
	for _, e := range elems {
		var i int64
		if err := json.Unmarshal(e, &i); err != nil {
			allIntegral = false
			break
		}
		ints = append(ints, i)
	}
	if allIntegral {
		fitsInt32 := true
		for _, v := range ints {
			if v < -2147483648 || v > 2147483647 {
				fitsInt32 = false
				break
			}
		}
		if fitsInt32 {
			out := make([]int32, len(ints))
			for i, v := range ints {
				out[i] = int32(v)
			}
			return wiretype.IntArray, out, nil
		}
		return wiretype.LongArray, ints, nil
	}

	floats := make([]float64, 0, len(elems))
	for _, e := range elems {
		var f float64
		if err := json.Unmarshal(e, &f); err != nil {
			return 0, nil, &fudge.FramingViolation{Reason: err.Error()}
		}
		floats = append(floats, f)
	}
	return wiretype.DoubleArray, floats, nil
}

func addField(msg *fudge.Message, id wiretype.ID, value interface{}, name *string, ordinal *int16) error {
	return msg.AddField(fudge.Field{Type: id, Value: value, Name: name, Ordinal: ordinal})
}

// fieldKey derives a field's name/ordinal from its JSON object key: a
// decimal key is treated as an ordinal unless a taxonomy backfills a name
// for it.
func fieldKey(key string, taxonomy *fudge.Taxonomy) (*string, *int16) {
	if ord, err := strconv.ParseInt(key, 10, 16); err == nil {
		o := int16(ord)
		if taxonomy != nil {
			if n, ok := taxonomy.NameFor(o); ok {
				return &n, &o
			}
		}
		return nil, &o
	}
	k := key
	return &k, nil
}

// orderedEntries walks the top-level JSON object in data preserving source
// key order, which is what lets envelope keys be recognized by name at any
// position without disturbing the relative order of the data fields that
// surround them.
func orderedEntries(data []byte, c *config) ([]entry, error) {
	if c.useSIMD {
		return simdOrderedEntries(data)
	}
	return stdOrderedEntries(data)
}

func stdOrderedEntries(data []byte) ([]entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, &fudge.FramingViolation{Reason: err.Error()}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &fudge.FramingViolation{Reason: "top-level JSON value is not an object"}
	}

	var entries []entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &fudge.FramingViolation{Reason: err.Error()}
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, &fudge.FramingViolation{Reason: fmt.Sprintf("object key token %v is not a string", keyTok)}
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, &fudge.FramingViolation{Reason: err.Error()}
		}
		entries = append(entries, entry{key: key, raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, &fudge.FramingViolation{Reason: err.Error()}
	}
	return entries, nil
}
