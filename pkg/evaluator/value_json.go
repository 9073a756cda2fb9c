package evaluator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ValueToJSON marshals a value to JSON bytes.
// Hashes keep insertion order. Integers print without a decimal point.
func ValueToJSON(v Value) ([]byte, error) {
	raw, err := valueToRaw(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

// ValueToJSONString is a convenience that returns a string.
func ValueToJSONString(v Value) string {
	b, err := ValueToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func valueToRaw(v Value) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch val := v.(type) {
	case Null:
		return nil, nil

	case Boolean:
		return val.Value, nil

	case Integer:
		return val.Value, nil

	case Number:
		return val.Value, nil

	case String:
		return val.Value, nil

	case *Array:
		items := make([]any, len(val.Elements))
		for i, item := range val.Elements {
			raw, err := valueToRaw(item)
			if err != nil {
				return nil, err
			}
			items[i] = raw
		}
		return items, nil

	case *Hash:
		return &orderedHash{pairs: val.Pairs()}, nil
	}

	return nil, fmt.Errorf("cannot convert %s to JSON", v.Type())
}

// orderedHash preserves key order in JSON output.
type orderedHash struct {
	pairs []HashPair
}

func (o *orderedHash) MarshalJSON() ([]byte, error) {
	if len(o.pairs) == 0 {
		return []byte("{}"), nil
	}

	buf := []byte{'{'}
	for i, p := range o.pairs {
		if i > 0 {
			buf = append(buf, ',')
		}
		// JSON object keys are always strings
		key := p.Key.Inspect()
		keyBytes, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf = append(buf, keyBytes...)
		buf = append(buf, ':')

		raw, err := valueToRaw(p.Value)
		if err != nil {
			return nil, err
		}
		valBytes, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		buf = append(buf, valBytes...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// ParseJSON converts a JSON document to a value. Objects become hashes with
// String keys in document order; whole numbers become Integers.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	val, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return val, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return NULL, nil
	case bool:
		return NativeBool(t), nil
	case string:
		return String{Value: t}, nil
	case json.Number:
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return Integer{Value: i}, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return Number{Value: f}, nil
	case json.Delim:
		switch t {
		case '[':
			arr := &Array{Elements: []Value{}}
			for dec.More() {
				el, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr.Elements = append(arr.Elements, el)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			hash := NewHash()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("invalid object key %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				hash.Set(String{Value: key}, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return hash, nil
		}
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}
