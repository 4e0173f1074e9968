// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleValue() Value {
	return MakeMap(map[string]Value{
		"name":    MakeString("laptop"),
		"price":   MakeInt(5999),
		"ratio":   MakeFloat(0.25),
		"instock": MakeBool(true),
		"tags":    MakeList(MakeString("a"), MakeNull(), MakeInt(-3)),
		"blob":    MakeBytes([]byte{0xde, 0xad}),
		"nested":  MakeMap(map[string]Value{"z": MakeList()}),
	})
}

func TestValueAccessors(t *testing.T) {
	b, ok := MakeBool(true).AsBool()
	require.True(t, ok)
	require.True(t, b)
	_, ok = MakeInt(1).AsBool()
	require.False(t, ok)

	i, ok := MakeInt(-42).AsInt()
	require.True(t, ok)
	require.Equal(t, int64(-42), i)

	f, ok := MakeFloat(1.5).AsFloat()
	require.True(t, ok)
	require.Equal(t, 1.5, f)

	s, ok := MakeString("x").AsString()
	require.True(t, ok)
	require.Equal(t, "x", s)
	_, ok = MakeBytes([]byte("x")).AsString()
	require.False(t, ok)

	require.True(t, MakeNull().IsNull())
	require.True(t, Value{}.IsNull())
	require.Equal(t, KindMap, sampleValue().Kind())
	require.Equal(t, 7, sampleValue().Len())

	price, ok := sampleValue().Field("price")
	require.True(t, ok)
	require.True(t, price.Equal(MakeInt(5999)))
	_, ok = sampleValue().Field("missing")
	require.False(t, ok)
	_, ok = MakeInt(1).Field("price")
	require.False(t, ok)
}

func TestValueImmutable(t *testing.T) {
	raw := []byte("abc")
	v := MakeBytes(raw)
	raw[0] = 'z'
	got, _ := v.AsBytes()
	require.Equal(t, []byte("abc"), got)
	got[1] = 'z'
	got, _ = v.AsBytes()
	require.Equal(t, []byte("abc"), got)

	fields := map[string]Value{"a": MakeInt(1)}
	m := MakeMap(fields)
	fields["b"] = MakeInt(2)
	require.Equal(t, 1, m.Len())
	copied, _ := m.AsMap()
	copied["c"] = MakeInt(3)
	require.Equal(t, 1, m.Len())

	elems := []Value{MakeInt(1)}
	l := MakeList(elems...)
	elems[0] = MakeInt(9)
	first, _ := l.AsList()
	require.True(t, first[0].Equal(MakeInt(1)))
}

func TestValueEqual(t *testing.T) {
	require.True(t, sampleValue().Equal(sampleValue()))
	require.False(t, MakeInt(1).Equal(MakeFloat(1)))
	require.False(t, MakeString("a").Equal(MakeBytes([]byte("a"))))
	require.True(t, MakeFloat(math.NaN()).Equal(MakeFloat(math.NaN())))
	require.False(t, MakeList(MakeInt(1)).Equal(MakeList(MakeInt(1), MakeInt(2))))
	require.False(t, MakeMap(map[string]Value{"a": MakeInt(1)}).Equal(
		MakeMap(map[string]Value{"b": MakeInt(1)})))
	require.True(t, MakeMap(nil).Equal(MakeMap(map[string]Value{})))
}

func TestValueString(t *testing.T) {
	require.Equal(t, `null`, MakeNull().String())
	require.Equal(t, `{"age":26}`, MakeMap(map[string]Value{"age": MakeInt(26)}).String())
	require.Equal(t,
		`{"blob":hex:dead,"instock":true,"name":"laptop","nested":{"z":[]},"price":5999,"ratio":0.25,"tags":["a",null,-3]}`,
		sampleValue().String())
	require.Equal(t, "kind(99)", Kind(99).String())
}

func TestValueEncodeDecode(t *testing.T) {
	v := sampleValue()
	buf := v.AppendEncoded([]byte("prefix"))
	require.Equal(t, "prefix", string(buf[:6]))

	// Trailing bytes are returned untouched.
	buf = append(buf, 0xff)
	got, rest, err := DecodeValue(buf[6:])
	require.NoError(t, err)
	require.Equal(t, []byte{0xff}, rest)
	require.True(t, v.Equal(got), "got %s, want %s", got, v)

	// Equal maps encode identically regardless of construction order.
	a := MakeMap(map[string]Value{"x": MakeInt(1), "y": MakeInt(2), "z": MakeInt(3)})
	b := MakeMap(map[string]Value{"z": MakeInt(3), "x": MakeInt(1), "y": MakeInt(2)})
	require.Equal(t, a.AppendEncoded(nil), b.AppendEncoded(nil))
}

func TestValueDecodeCorruption(t *testing.T) {
	valid := sampleValue().AppendEncoded(nil)
	testCases := map[string][]byte{
		"empty":          nil,
		"unknown kind":   {0x42},
		"bad bool":       {byte(KindBool), 7},
		"truncated int":  {byte(KindInt), 0x80},
		"short float":    {byte(KindFloat), 1, 2, 3},
		"long string":    {byte(KindString), 10, 'a'},
		"huge list":      {byte(KindList), 0xff, 0xff, 0x03},
		"huge map":       {byte(KindMap), 4, 0, 0},
		"truncated body": valid[:len(valid)-1],
		// {"b":null,"a":null}
		"unordered map": {byte(KindMap), 2, 1, 'b', byte(KindNull), 1, 'a', byte(KindNull)},
	}

	for name, b := range testCases {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeValue(b)
			require.Error(t, err)
			require.True(t, IsCorruptionError(err), "%+v", err)
		})
	}
}

func nestedList(depth int) Value {
	v := MakeInt(1)
	for i := 0; i < depth; i++ {
		v = MakeList(v)
	}
	return v
}

func TestValueDecodeDepth(t *testing.T) {
	v := nestedList(MaxValueDepth + 1)
	require.ErrorContains(t, v.CheckDepth(), "nested deeper than 256")
	_, _, err := DecodeValue(v.AppendEncoded(nil))
	require.True(t, IsCorruptionError(err))

	// Anything CheckDepth accepts decodes.
	v = nestedList(MaxValueDepth)
	require.NoError(t, v.CheckDepth())
	got, rest, err := DecodeValue(v.AppendEncoded(nil))
	require.NoError(t, err)
	require.Empty(t, rest)
	require.True(t, v.Equal(got))

	deepMap := MakeMap(map[string]Value{"a": nestedList(MaxValueDepth)})
	require.Error(t, deepMap.CheckDepth())
}

func TestValueJSONDepth(t *testing.T) {
	_, err := ParseJSON(strings.Repeat("[", MaxValueDepth+1) + "1" + strings.Repeat("]", MaxValueDepth+1))
	require.ErrorContains(t, err, "nested deeper than 256")

	v, err := ParseJSON(strings.Repeat("[", MaxValueDepth) + "1" + strings.Repeat("]", MaxValueDepth))
	require.NoError(t, err)
	require.True(t, nestedList(MaxValueDepth).Equal(v))
}

func TestValueJSON(t *testing.T) {
	v, err := ParseJSON(`{"name":"张三","age":25,"score":9.5,"ok":false,"tags":["a",null]}`)
	require.NoError(t, err)
	want := MakeMap(map[string]Value{
		"name":  MakeString("张三"),
		"age":   MakeInt(25),
		"score": MakeFloat(9.5),
		"ok":    MakeBool(false),
		"tags":  MakeList(MakeString("a"), MakeNull()),
	})
	require.True(t, want.Equal(v), "got %s", v)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"张三","age":25,"score":9.5,"ok":false,"tags":["a",null]}`, string(out))

	// Values nested in Go structures marshal through MarshalJSON.
	out, err = json.Marshal(map[string]Value{"v": MakeBytes([]byte("hi"))})
	require.NoError(t, err)
	require.Equal(t, `{"v":"aGk="}`, string(out))

	_, err = ParseJSON(`{"a":`)
	require.Error(t, err)
	_, err = ParseJSON(`1 2`)
	require.Error(t, err)
	_, err = ParseJSON(`1e400`)
	require.Error(t, err)
}
