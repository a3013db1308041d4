// Package tree implements the recursive value model shared by input
// documents and FHIR-shaped documents: a value is one of a scalar, an
// ordered list, or an insertion-ordered keyed map.
package tree

import (
	"bytes"
	"encoding/json"
)

// Kind tags which alternative of the Value sum type is populated.
type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindMap
)

// Value is the tagged sum scalar | list[Value] | map[string]Value. Map
// values preserve insertion order so that output key order is
// deterministic and depends only on the order fields were written.
type Value struct {
	kind   Kind
	scalar interface{}
	list   []*Value
	keys   []string
	fields map[string]*Value
}

// Missing is the sentinel returned by reads that find nothing. It is a nil
// *Value; callers distinguish "missing" from "present but null" by checking
// for a nil *Value versus a Scalar value wrapping nil.
var Missing *Value = nil

// NewScalar wraps a scalar (string, number, bool, or nil) as a Value.
func NewScalar(v interface{}) *Value {
	return &Value{kind: KindScalar, scalar: v}
}

// NewList creates an empty ordered list Value.
func NewList() *Value {
	return &Value{kind: KindList}
}

// NewMap creates an empty insertion-ordered map Value.
func NewMap() *Value {
	return &Value{kind: KindMap, fields: make(map[string]*Value)}
}

func (v *Value) Kind() Kind {
	if v == nil {
		return KindScalar
	}
	return v.kind
}

func (v *Value) IsScalar() bool { return v != nil && v.kind == KindScalar }
func (v *Value) IsList() bool   { return v != nil && v.kind == KindList }
func (v *Value) IsMap() bool    { return v != nil && v.kind == KindMap }

// Scalar returns the wrapped scalar value, or nil if v is not a scalar.
func (v *Value) Scalar() interface{} {
	if v == nil || v.kind != KindScalar {
		return nil
	}
	return v.scalar
}

// Len returns the list length, or 0 if v is not a list.
func (v *Value) Len() int {
	if v == nil || v.kind != KindList {
		return 0
	}
	return len(v.list)
}

// Index returns the element at position i in a list, or Missing if v is not
// a list or i is out of range.
func (v *Value) Index(i int) *Value {
	if v == nil || v.kind != KindList || i < 0 || i >= len(v.list) {
		return Missing
	}
	return v.list[i]
}

// Append adds an element to the end of a list in place.
func (v *Value) Append(e *Value) {
	v.list = append(v.list, e)
}

// SetIndex grows the list with nil placeholders until it has at least i+1
// elements, then assigns position i. Existing placeholders hold a nil
// scalar Value, matching the "null placeholder" boundary behaviour.
func (v *Value) SetIndex(i int, e *Value) {
	for len(v.list) <= i {
		v.list = append(v.list, NewScalar(nil))
	}
	v.list[i] = e
}

// Keys returns the map's keys in insertion order, or nil if v is not a map.
func (v *Value) Keys() []string {
	if v == nil || v.kind != KindMap {
		return nil
	}
	return v.keys
}

// Get returns the map entry for key, or Missing if absent or v is not a map.
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != KindMap {
		return Missing
	}
	e, ok := v.fields[key]
	if !ok {
		return Missing
	}
	return e
}

// Set assigns a map entry, preserving first-insertion order for the key.
func (v *Value) Set(key string, e *Value) {
	if v.fields == nil {
		v.fields = make(map[string]*Value)
	}
	if _, exists := v.fields[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = e
}

// FromNative converts a generic Go value produced by encoding/json.Unmarshal
// (map[string]interface{}, []interface{}, or a scalar) into a Value tree.
// Since Go maps are unordered, a FromNative map's key order follows Go's
// randomized map iteration; callers that need deterministic ordering from
// raw JSON should use Decode instead.
func FromNative(v interface{}) *Value {
	switch t := v.(type) {
	case nil:
		return NewScalar(nil)
	case map[string]interface{}:
		m := NewMap()
		for k, val := range t {
			m.Set(k, FromNative(val))
		}
		return m
	case []interface{}:
		l := NewList()
		for _, val := range t {
			l.Append(FromNative(val))
		}
		return l
	default:
		return NewScalar(t)
	}
}

// ToNative converts a Value tree back into generic Go values suitable for
// encoding/json.Marshal.
func (v *Value) ToNative() interface{} {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindList:
		out := make([]interface{}, len(v.list))
		for i, e := range v.list {
			out[i] = e.ToNative()
		}
		return out
	case KindMap:
		out := make(map[string]interface{}, len(v.keys))
		for _, k := range v.keys {
			out[k] = v.fields[k].ToNative()
		}
		return out
	}
	return nil
}

// Decode parses JSON bytes into a Value tree, preserving object key order
// from the source document (unlike FromNative on a map[string]interface{}).
func Decode(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// decodeValue reads one JSON value (object, array, or scalar) from dec,
// building a Value tree that preserves object key order as encountered in
// the token stream.
func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return m, nil
		case '[':
			l := NewList()
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				l.Append(val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return l, nil
		}
		return nil, nil
	case json.Number:
		return NewScalar(t), nil
	default:
		return NewScalar(t), nil
	}
}

// Encode marshals a Value tree to JSON, preserving map key insertion order.
func (v *Value) Encode() ([]byte, error) {
	return json.Marshal(&orderedMarshaler{v})
}

type orderedMarshaler struct{ v *Value }

func (m *orderedMarshaler) MarshalJSON() ([]byte, error) {
	return marshalOrdered(m.v)
}

func marshalOrdered(v *Value) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	switch v.kind {
	case KindScalar:
		return json.Marshal(v.scalar)
	case KindList:
		buf := []byte("[")
		for i, e := range v.list {
			if i > 0 {
				buf = append(buf, ',')
			}
			eb, err := marshalOrdered(e)
			if err != nil {
				return nil, err
			}
			buf = append(buf, eb...)
		}
		buf = append(buf, ']')
		return buf, nil
	case KindMap:
		buf := []byte("{")
		for i, k := range v.keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, kb...)
			buf = append(buf, ':')
			vb, err := marshalOrdered(v.fields[k])
			if err != nil {
				return nil, err
			}
			buf = append(buf, vb...)
		}
		buf = append(buf, '}')
		return buf, nil
	}
	return []byte("null"), nil
}
