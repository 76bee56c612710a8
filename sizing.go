package fudge

import "github.com/fudgemsg/fudge/wiretype"

// fieldHeaderSize returns the number of bytes the field prefix, type id,
// ordinal, and name occupy for a field with the given name/ordinal
// presence, before the payload-length field and payload themselves.
func fieldHeaderSize(name *string, ordinal *int16) int {
	size := 2 // prefix byte + type id
	if ordinal != nil {
		size += 2
	}
	if name != nil {
		size += 1 + len(*name)
	}
	return size
}

func varWidthBytesFor(payloadLen int) int {
	switch {
	case payloadLen <= 0xff:
		return 1
	case payloadLen <= 0xffff:
		return 2
	default:
		return 4
	}
}

// FieldSize computes the total on-the-wire size of a field, recursing
// into sub-messages. It is the Go analogue of
// FudgeFieldType.getSize(Object, FudgeTaxonomy): the writer calls this
// before emitting a field's prefix so a sub-message's length is known in
// advance.
func FieldSize(dict *TypeDictionary, f Field, taxonomy *Taxonomy) (int, error) {
	name, ordinal := substituteForSizing(f.Name, f.Ordinal, taxonomy)
	header := fieldHeaderSize(name, ordinal)

	if f.Type == wiretype.SubMessage || f.Type == wiretype.MsgWithID {
		sub, ok := f.Value.(*Message)
		if !ok {
			return 0, &TypeMismatch{Value: f.Value}
		}
		payloadLen, err := MessageSize(dict, sub, taxonomy)
		if err != nil {
			return 0, err
		}
		if f.Type == wiretype.MsgWithID {
			payloadLen += 4
		}
		return header + varWidthBytesFor(payloadLen) + payloadLen, nil
	}

	payloadLen, err := payloadSize(dict, f.Type, f.Value)
	if err != nil {
		return 0, err
	}
	if wiretype.IsFixedWidth(f.Type) {
		return header + payloadLen, nil
	}
	return header + varWidthBytesFor(payloadLen) + payloadLen, nil
}

func payloadSize(dict *TypeDictionary, id wiretype.ID, value interface{}) (int, error) {
	codec := dict.Codec(id)
	if codec == nil {
		b, ok := value.([]byte)
		if !ok {
			return 0, &TypeMismatch{Value: value}
		}
		return len(b), nil
	}
	return codec.Size(value)
}

// MessageSize sums FieldSize over every field of msg.
func MessageSize(dict *TypeDictionary, msg *Message, taxonomy *Taxonomy) (int, error) {
	total := 0
	for _, f := range msg.Fields() {
		n, err := FieldSize(dict, f, taxonomy)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// substituteForSizing mirrors the writer's name->ordinal taxonomy
// substitution so size computation and the actual write agree.
func substituteForSizing(name *string, ordinal *int16, taxonomy *Taxonomy) (*string, *int16) {
	if name != nil && ordinal == nil && taxonomy != nil {
		if ord, ok := taxonomy.OrdinalFor(*name); ok {
			return nil, &ord
		}
	}
	return name, ordinal
}
