// api/value.go
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Kind is the JSON type held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a decoded JSON document of unknown schema.
// The zero Value is JSON null.
type Value struct {
	kind    Kind
	boolean bool
	number  json.Number
	text    string
	items   []Value
	members []member
}

type member struct {
	key   string
	value Value
}

// MaxDepth is how deeply arrays and objects may nest in a parsed document.
const MaxDepth = 10000

// ParseValue decodes exactly one JSON value from r. Anything other than
// whitespace after that value is an error.
func ParseValue(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := parseValue(dec, 0)
	if err != nil {
		return Value{}, err
	}

	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return Value{}, errors.New("invalid data after top-level JSON value")
		}
		return Value{}, err
	}
	return v, nil
}

func parseValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Value{}, nil
	case bool:
		return Value{kind: Bool, boolean: t}, nil
	case json.Number:
		return Value{kind: Number, number: t}, nil
	case string:
		return Value{kind: String, text: t}, nil
	case json.Delim:
		if depth >= MaxDepth {
			return Value{}, fmt.Errorf("JSON nested deeper than %d levels", MaxDepth)
		}
		switch t {
		case '[':
			v := Value{kind: Array, items: []Value{}}
			for dec.More() {
				item, err := parseValue(dec, depth+1)
				if err != nil {
					return Value{}, err
				}
				v.items = append(v.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return v, nil
		case '{':
			v := Value{kind: Object, members: []member{}}
			// Duplicate keys keep the position of the first occurrence
			// and the value of the last.
			index := make(map[string]int)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("invalid object key %v", keyTok)
				}
				item, err := parseValue(dec, depth+1)
				if err != nil {
					return Value{}, err
				}
				if i, seen := index[key]; seen {
					v.members[i].value = item
					continue
				}
				index[key] = len(v.members)
				v.members = append(v.members, member{key: key, value: item})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return v, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected JSON token %v", tok)
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

// Bool returns the boolean and whether v is a JSON boolean.
func (v Value) Bool() (bool, bool) {
	return v.boolean, v.kind == Bool
}

// Number returns the number literal as it appeared in the document.
func (v Value) Number() (json.Number, bool) {
	return v.number, v.kind == Number
}

func (v Value) Int64() (int64, bool) {
	if v.kind != Number {
		return 0, false
	}
	i, err := v.number.Int64()
	return i, err == nil
}

func (v Value) Float64() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	f, err := v.number.Float64()
	return f, err == nil
}

// Text returns the string and whether v is a JSON string.
func (v Value) Text() (string, bool) {
	return v.text, v.kind == String
}

// Len returns the number of array elements or object members, 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		return len(v.members)
	}
	return 0
}

// Index returns the i-th array element, or null when out of range.
func (v Value) Index(i int) Value {
	if v.kind != Array || i < 0 || i >= len(v.items) {
		return Value{}
	}
	return v.items[i]
}

// Get looks up an object member.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.key == key {
			return m.value, true
		}
	}
	return Value{}, false
}

// Keys returns object member names in document order.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.key
	}
	return keys
}

// Interface converts v to the types encoding/json produces with UseNumber:
// nil, bool, json.Number, string, []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.boolean
	case Number:
		return v.number
	case String:
		return v.text
	case Array:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			out[m.key] = m.value.Interface()
		}
		return out
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case Number:
		buf.WriteString(v.number.String())
	case String:
		b, err := json.Marshal(v.text)
		if err != nil {
			return err
		}
		buf.Write(b)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(m.key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := m.value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot encode JSON value of %s", v.kind)
	}
	return nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// String renders v as compact JSON.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return "<invalid JSON value>"
	}
	return string(b)
}
