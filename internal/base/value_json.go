// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
)

// MarshalJSON implements json.Marshaler. Bytes are rendered as base64
// strings and floats with an integral value as JSON integers, so the mapping
// does not round-trip those two variants.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.toInterface())
}

// UnmarshalJSON implements json.Unmarshaler. JSON numbers that parse as an
// int64 become int Values; all other numbers become floats.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var x interface{}
	if err := dec.Decode(&x); err != nil {
		return errors.Wrap(err, "sbtkv: decoding JSON value")
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("sbtkv: trailing data after JSON value")
	}
	parsed, err := fromInterface(x)
	if err != nil {
		return err
	}
	if err := parsed.CheckDepth(); err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseJSON parses s as a JSON document and returns the equivalent Value.
func ParseJSON(s string) (Value, error) {
	var v Value
	if err := v.UnmarshalJSON([]byte(s)); err != nil {
		return Value{}, err
	}
	return v, nil
}

func (v Value) toInterface() interface{} {
	switch v.kind {
	case KindBool:
		return v.bits != 0
	case KindInt:
		i, _ := v.AsInt()
		return i
	case KindFloat:
		f, _ := v.AsFloat()
		return f
	case KindString:
		return v.str
	case KindBytes:
		return []byte(v.str)
	case KindList:
		l := make([]interface{}, len(v.list))
		for i := range v.list {
			l[i] = v.list[i].toInterface()
		}
		return l
	case KindMap:
		m := make(map[string]interface{}, len(v.fields))
		for k, f := range v.fields {
			m[k] = f.toInterface()
		}
		return m
	}
	return nil
}

func fromInterface(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return MakeNull(), nil
	case bool:
		return MakeBool(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return MakeInt(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, errors.Wrapf(err, "sbtkv: invalid number %q", t)
		}
		return MakeFloat(f), nil
	case string:
		return MakeString(t), nil
	case []interface{}:
		l := make([]Value, len(t))
		for i := range t {
			var err error
			if l[i], err = fromInterface(t[i]); err != nil {
				return Value{}, err
			}
		}
		return Value{kind: KindList, list: l}, nil
	case map[string]interface{}:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			f, err := fromInterface(e)
			if err != nil {
				return Value{}, err
			}
			m[k] = f
		}
		return Value{kind: KindMap, fields: m}, nil
	}
	return Value{}, errors.AssertionFailedf("sbtkv: unexpected JSON type %T", x)
}
