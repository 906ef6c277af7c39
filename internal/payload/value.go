// Package payload models the loosely structured JSON document embedded in a
// listing page. A Value wraps a decoded JSON node and exposes typed accessors
// that report whether the node has the expected shape instead of panicking.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Kind identifies the JSON type held by a Value.
type Kind int

// Value kinds. Missing is the zero Value returned by failed lookups.
const (
	Missing Kind = iota
	Null
	Bool
	Number
	String
	List
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
	case List:
		return "list"
	case Object:
		return "object"
	default:
		return "missing"
	}
}

// Value is an immutable view over one JSON node.
type Value struct {
	node    any
	present bool
}

// Parse decodes data into a Value. Numbers keep their literal text.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var node any
	if err := dec.Decode(&node); err != nil {
		return Value{}, fmt.Errorf("decode payload: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("decode payload: unexpected data after top-level value")
	}
	return Value{node: node, present: true}, nil
}

// Of wraps an already decoded node (as produced by encoding/json).
func Of(node any) Value {
	return Value{node: node, present: true}
}

// Kind reports the JSON type of v.
func (v Value) Kind() Kind {
	if !v.present {
		return Missing
	}
	switch v.node.(type) {
	case nil:
		return Null
	case bool:
		return Bool
	case json.Number, float64:
		return Number
	case string:
		return String
	case []any:
		return List
	case map[string]any:
		return Object
	default:
		return Missing
	}
}

// Exists reports whether v refers to a node, including JSON null.
func (v Value) Exists() bool {
	return v.present
}

// Get returns the member key of an object.
func (v Value) Get(key string) (Value, bool) {
	obj, ok := v.node.(map[string]any)
	if !ok || !v.present {
		return Value{}, false
	}
	node, ok := obj[key]
	if !ok {
		return Value{}, false
	}
	return Value{node: node, present: true}, true
}

// Path walks nested objects by key.
func (v Value) Path(keys ...string) (Value, bool) {
	cur := v
	for _, key := range keys {
		next, ok := cur.Get(key)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur, cur.present
}

// IsObject reports whether v is a JSON object.
func (v Value) IsObject() bool {
	return v.Kind() == Object
}

// AsList returns the elements of a JSON array.
func (v Value) AsList() ([]Value, bool) {
	items, ok := v.node.([]any)
	if !ok || !v.present {
		return nil, false
	}
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = Value{node: item, present: true}
	}
	return out, true
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	s, ok := v.node.(string)
	return s, ok && v.present
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.node.(bool)
	return b, ok && v.present
}

// Text renders a string or number as text. Other kinds report false.
func (v Value) Text() (string, bool) {
	if !v.present {
		return "", false
	}
	switch n := v.node.(type) {
	case string:
		return n, true
	case json.Number:
		return n.String(), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	default:
		return "", false
	}
}

// Field is shorthand for Get followed by AsString.
func (v Value) Field(key string) (string, bool) {
	member, ok := v.Get(key)
	if !ok {
		return "", false
	}
	return member.AsString()
}

// Flag is shorthand for Get followed by AsBool; absent or non-bool members are false.
func (v Value) Flag(key string) bool {
	member, ok := v.Get(key)
	if !ok {
		return false
	}
	b, _ := member.AsBool()
	return b
}
