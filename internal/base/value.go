// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"encoding/hex"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

// The values of Kind are persisted in snapshot files as the leading tag byte
// of every encoded Value. They must not be renumbered.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindBytes
	KindList
	KindMap
	numKinds
)

var kindNames = [numKinds]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindBytes:  "bytes",
	KindList:   "list",
	KindMap:    "map",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is the payload stored against a key. The zero Value is null.
type Value struct {
	kind Kind
	// bits holds the bool, int and float payloads.
	bits uint64
	// str holds the string and bytes payloads.
	str    string
	list   []Value
	fields map[string]Value
}

// MakeNull returns the null Value.
func MakeNull() Value {
	return Value{}
}

// MakeBool returns a bool Value.
func MakeBool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.bits = 1
	}
	return v
}

// MakeInt returns an int Value.
func MakeInt(i int64) Value {
	return Value{kind: KindInt, bits: uint64(i)}
}

// MakeFloat returns a float Value.
func MakeFloat(f float64) Value {
	return Value{kind: KindFloat, bits: math.Float64bits(f)}
}

// MakeString returns a string Value.
func MakeString(s string) Value {
	return Value{kind: KindString, str: s}
}

// MakeBytes returns a bytes Value holding a copy of b.
func MakeBytes(b []byte) Value {
	return Value{kind: KindBytes, str: string(b)}
}

// MakeList returns a list Value holding a copy of elems.
func MakeList(elems ...Value) Value {
	return Value{kind: KindList, list: slices.Clone(elems)}
}

// MakeMap returns a map Value holding a copy of fields.
func MakeMap(fields map[string]Value) Value {
	return Value{kind: KindMap, fields: maps.Clone(fields)}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull returns true if v is the null Value.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the bool held by v, and false if v is not a bool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.bits != 0, true
}

// AsInt returns the int64 held by v, and false if v is not an int.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return int64(v.bits), true
}

// AsFloat returns the float64 held by v, and false if v is not a float.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return math.Float64frombits(v.bits), true
}

// AsString returns the string held by v, and false if v is not a string.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsBytes returns a copy of the bytes held by v, and false if v is not a
// bytes Value.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return []byte(v.str), true
}

// AsList returns a copy of the elements of v, and false if v is not a list.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return slices.Clone(v.list), true
}

// AsMap returns a copy of the fields of v, and false if v is not a map.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return maps.Clone(v.fields), true
}

// Field returns the named field of a map Value.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	f, ok := v.fields[name]
	return f, ok
}

// Len returns the length of a string or bytes Value, the number of elements
// of a list or the number of fields of a map. It returns 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindString, KindBytes:
		return len(v.str)
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.fields)
	}
	return 0
}

// Equal returns true if v and o hold the same variant and contents. Floats
// compare by bit pattern, so a NaN equals itself.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool, KindInt, KindFloat:
		return v.bits == o.bits
	case KindString, KindBytes:
		return v.str == o.str
	case KindList:
		return slices.EqualFunc(v.list, o.list, Value.Equal)
	case KindMap:
		if len(v.fields) != len(o.fields) {
			return false
		}
		for k, f := range v.fields {
			of, ok := o.fields[k]
			if !ok || !f.Equal(of) {
				return false
			}
		}
		return true
	}
	return false
}

// String implements fmt.Stringer. The output is JSON-like with map fields in
// ascending order; bytes are rendered as hex:<digits>.
func (v Value) String() string {
	var b strings.Builder
	v.format(&b)
	return b.String()
}

func (v Value) format(b *strings.Builder) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString(strconv.FormatBool(v.bits != 0))
	case KindInt:
		b.WriteString(strconv.FormatInt(int64(v.bits), 10))
	case KindFloat:
		b.WriteString(strconv.FormatFloat(math.Float64frombits(v.bits), 'g', -1, 64))
	case KindString:
		b.WriteString(strconv.Quote(v.str))
	case KindBytes:
		b.WriteString("hex:")
		b.WriteString(hex.EncodeToString([]byte(v.str)))
	case KindList:
		b.WriteByte('[')
		for i := range v.list {
			if i > 0 {
				b.WriteByte(',')
			}
			v.list[i].format(b)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, k := range v.sortedFieldNames() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(k))
			b.WriteByte(':')
			v.fields[k].format(b)
		}
		b.WriteByte('}')
	default:
		fmt.Fprintf(b, "<%s>", v.kind)
	}
}

func (v Value) sortedFieldNames() []string {
	return slices.Sorted(maps.Keys(v.fields))
}
