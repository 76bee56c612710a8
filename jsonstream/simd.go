package jsonstream

import (
	"encoding/json"

	"github.com/minio/simdjson-go"

	"github.com/fudgemsg/fudge"
)

// simdOrderedEntries is the WithSIMDTokenizer backend: it parses data once
// into simdjson-go's tape representation and walks the root object's
// entries in tape order, which matches source order the same way the
// default encoding/json token stream does.
func simdOrderedEntries(data []byte) ([]entry, error) {
	if !simdjson.SupportedCPU() {
		return stdOrderedEntries(data)
	}

	parsed, err := simdjson.Parse(data, nil)
	if err != nil {
		return nil, &fudge.IOFailure{Op: "simdjson parse", Err: err}
	}

	rootIter := parsed.Iter()
	var root simdjson.Iter
	if _, _, err := rootIter.Root(&root); err != nil {
		return nil, &fudge.IOFailure{Op: "simdjson root", Err: err}
	}
	if root.Type() != simdjson.TypeObject {
		return nil, &fudge.FramingViolation{Reason: "top-level JSON value is not an object"}
	}

	obj, err := root.Object(nil)
	if err != nil {
		return nil, &fudge.IOFailure{Op: "simdjson object", Err: err}
	}

	var entries []entry
	var elem simdjson.Iter
	for {
		name, typ, err := obj.NextElement(&elem)
		if err != nil {
			return nil, &fudge.IOFailure{Op: "simdjson next element", Err: err}
		}
		if typ == simdjson.TypeNone {
			break
		}
		value, err := elem.Interface()
		if err != nil {
			return nil, &fudge.IOFailure{Op: "simdjson decode value", Err: err}
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, &fudge.IOFailure{Op: "re-encode simdjson value", Err: err}
		}
		entries = append(entries, entry{key: name, raw: raw})
	}
	return entries, nil
}
