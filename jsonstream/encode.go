package jsonstream

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/fudgemsg/fudge"
	"github.com/fudgemsg/fudge/wiretype"
)

// Encode renders env as JSON, the inverse of Decode: envelope metadata goes
// under the configured key names, and consecutive fields sharing the same
// name/ordinal are collapsed back into a single JSON array.
func Encode(env *fudge.Envelope, opts ...Option) ([]byte, error) {
	c := newConfig(opts)
	var buf bytes.Buffer
	if err := encodeEnvelope(&buf, env, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeEnvelope(buf *bytes.Buffer, env *fudge.Envelope, c *config) error {
	buf.WriteByte('{')
	first := true
	writeKey := func(key string) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		encodeJSONString(buf, key)
		buf.WriteByte(':')
	}

	writeKey(c.keys.ProcessingDirectives)
	buf.WriteString(strconv.Itoa(int(env.ProcessingDirectives)))
	writeKey(c.keys.SchemaVersion)
	buf.WriteString(strconv.Itoa(int(env.SchemaVersion)))
	writeKey(c.keys.Taxonomy)
	buf.WriteString(strconv.Itoa(int(env.TaxonomyID)))

	if err := encodeFields(buf, env.Message.Fields(), &first, c); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func encodeFields(buf *bytes.Buffer, fields []fudge.Field, first *bool, c *config) error {
	i := 0
	writeKey := func(key string) {
		if !*first {
			buf.WriteByte(',')
		}
		*first = false
		encodeJSONString(buf, key)
		buf.WriteByte(':')
	}

	for i < len(fields) {
		f := fields[i]
		run := []fudge.Field{f}
		j := i + 1
		for j < len(fields) && sameKey(fields[j], f) {
			run = append(run, fields[j])
			j++
		}

		writeKey(jsonKeyFor(f))
		if len(run) == 1 {
			if err := encodeValue(buf, f, c); err != nil {
				return err
			}
		} else {
			buf.WriteByte('[')
			for k, elem := range run {
				if k > 0 {
					buf.WriteByte(',')
				}
				if err := encodeValue(buf, elem, c); err != nil {
					return err
				}
			}
			buf.WriteByte(']')
		}
		i = j
	}
	return nil
}

func sameKey(a, b fudge.Field) bool {
	if a.HasName() != b.HasName() || a.HasOrdinal() != b.HasOrdinal() {
		return false
	}
	if a.HasName() && a.NameOrEmpty() != b.NameOrEmpty() {
		return false
	}
	if a.HasOrdinal() && a.OrdinalOrZero() != b.OrdinalOrZero() {
		return false
	}
	return true
}

func jsonKeyFor(f fudge.Field) string {
	if f.HasName() {
		return f.NameOrEmpty()
	}
	if f.HasOrdinal() {
		return strconv.FormatInt(int64(f.OrdinalOrZero()), 10)
	}
	return ""
}

func encodeValue(buf *bytes.Buffer, f fudge.Field, c *config) error {
	if f.Type == wiretype.SubMessage || f.Type == wiretype.MsgWithID {
		sub, ok := f.Value.(*fudge.Message)
		if !ok {
			return &fudge.TypeMismatch{Value: f.Value}
		}
		buf.WriteByte('{')
		first := true
		if err := encodeFields(buf, sub.Fields(), &first, c); err != nil {
			return err
		}
		buf.WriteByte('}')
		return nil
	}
	if f.Value == nil {
		buf.WriteString("null")
		return nil
	}
	b, err := json.Marshal(f.Value)
	if err != nil {
		return &fudge.TypeMismatch{Value: f.Value}
	}
	buf.Write(b)
	return nil
}

func encodeJSONString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
