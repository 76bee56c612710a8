// Package mapping fixes the Go-side boundary for serializing arbitrary
// values to and from *fudge.Message trees. It does not implement a
// reflection engine: Serializer, Deserializer, and Builder are the
// collaborator interfaces a bean mapper would sit behind, plus the struct
// tag grammar such a mapper would read.
package mapping

import (
	"github.com/vmihailenco/tagparser"

	"github.com/fudgemsg/fudge"
)

// Serializer turns an arbitrary Go value into a Fudge message.
type Serializer interface {
	Serialize(v interface{}) (*fudge.Message, error)
}

// Deserializer populates out from a Fudge message.
type Deserializer interface {
	Deserialize(msg *fudge.Message, out interface{}) error
}

// Builder composes a Serializer or Deserializer to convert between a
// concrete Go type and a message tree, the role org.fudgemsg.mapping's
// FudgeBuilder plays for a single registered class.
type Builder interface {
	BuildMessage(s Serializer, v interface{}) (*fudge.Message, error)
	BuildObject(d Deserializer, msg *fudge.Message) (interface{}, error)
}

// FieldTag is a parsed `fudge:"name,ordinal=NN"` struct tag.
type FieldTag struct {
	Name    string
	Ordinal *int16
	Skip    bool
}

// ParseTag parses a struct field's fudge tag using the same tag-option
// grammar vmihailenco/tagparser gives msgpack struct tags: a bare leading
// name followed by comma-separated key=value options.
func ParseTag(tag string) FieldTag {
	if tag == "-" {
		return FieldTag{Skip: true}
	}
	parsed := tagparser.Parse(tag)
	ft := FieldTag{Name: parsed.Name}
	if ord, ok := parsed.Options["ordinal"]; ok {
		if v, ok2 := parseOrdinal(ord); ok2 {
			ft.Ordinal = &v
		}
	}
	return ft
}

func parseOrdinal(s string) (int16, bool) {
	var v int16
	var neg bool
	i := 0
	if len(s) > 0 && s[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(s) {
		return 0, false
	}
	for ; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int16(c-'0')
	}
	if neg {
		v = -v
	}
	return v, true
}
