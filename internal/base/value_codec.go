// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// MaxValueDepth bounds the nesting of lists and maps. DecodeValue rejects
// deeper values, so they must never be encoded.
const MaxValueDepth = 256

// CheckDepth returns an error if v nests lists and maps more deeply than
// MaxValueDepth.
func (v Value) CheckDepth() error {
	return v.checkDepth(0)
}

func (v Value) checkDepth(depth int) error {
	if depth > MaxValueDepth {
		return errors.Newf("sbtkv: value nested deeper than %d", MaxValueDepth)
	}
	for i := range v.list {
		if err := v.list[i].checkDepth(depth + 1); err != nil {
			return err
		}
	}
	for _, f := range v.fields {
		if err := f.checkDepth(depth + 1); err != nil {
			return err
		}
	}
	return nil
}

// AppendEncoded appends the binary encoding of v to dst and returns the
// extended buffer. The encoding is a Kind tag byte followed by:
//
//	null          nothing
//	bool          one byte, 0 or 1
//	int           zig-zag varint
//	float         8 bytes, little-endian IEEE 754 bits
//	string/bytes  uvarint length, then the bytes
//	list          uvarint count, then count encoded values
//	map           uvarint count, then count {uvarint len, name, value}
//	              entries in strictly ascending name order
//
// Callers must reject values that fail CheckDepth before encoding them.
func (v Value) AppendEncoded(dst []byte) []byte {
	dst = append(dst, byte(v.kind))
	switch v.kind {
	case KindBool:
		dst = append(dst, byte(v.bits))
	case KindInt:
		dst = binary.AppendVarint(dst, int64(v.bits))
	case KindFloat:
		dst = binary.LittleEndian.AppendUint64(dst, v.bits)
	case KindString, KindBytes:
		dst = binary.AppendUvarint(dst, uint64(len(v.str)))
		dst = append(dst, v.str...)
	case KindList:
		dst = binary.AppendUvarint(dst, uint64(len(v.list)))
		for i := range v.list {
			dst = v.list[i].AppendEncoded(dst)
		}
	case KindMap:
		dst = binary.AppendUvarint(dst, uint64(len(v.fields)))
		for _, k := range v.sortedFieldNames() {
			dst = binary.AppendUvarint(dst, uint64(len(k)))
			dst = append(dst, k...)
			dst = v.fields[k].AppendEncoded(dst)
		}
	}
	return dst
}

// DecodeValue decodes a Value encoded by AppendEncoded from the front of b and
// returns it along with the remaining bytes. Malformed input yields an error
// marked with ErrCorruption.
func DecodeValue(b []byte) (Value, []byte, error) {
	return decodeValue(b, 0)
}

func decodeValue(b []byte, depth int) (Value, []byte, error) {
	if depth > MaxValueDepth {
		return Value{}, nil, CorruptionErrorf("sbtkv: value nested deeper than %d", MaxValueDepth)
	}
	if len(b) == 0 {
		return Value{}, nil, CorruptionErrorf("sbtkv: truncated value")
	}
	v := Value{kind: Kind(b[0])}
	b = b[1:]
	switch v.kind {
	case KindNull:
		return v, b, nil

	case KindBool:
		if len(b) < 1 || b[0] > 1 {
			return Value{}, nil, CorruptionErrorf("sbtkv: invalid bool value")
		}
		v.bits = uint64(b[0])
		return v, b[1:], nil

	case KindInt:
		i, n := binary.Varint(b)
		if n <= 0 {
			return Value{}, nil, CorruptionErrorf("sbtkv: invalid int value")
		}
		v.bits = uint64(i)
		return v, b[n:], nil

	case KindFloat:
		if len(b) < 8 {
			return Value{}, nil, CorruptionErrorf("sbtkv: truncated float value")
		}
		v.bits = binary.LittleEndian.Uint64(b)
		return v, b[8:], nil

	case KindString, KindBytes:
		s, rest, err := decodeString(b)
		if err != nil {
			return Value{}, nil, err
		}
		v.str = s
		return v, rest, nil

	case KindList:
		count, n := binary.Uvarint(b)
		// Every encoded value occupies at least one byte.
		if n <= 0 || count > uint64(len(b)-n) {
			return Value{}, nil, CorruptionErrorf("sbtkv: invalid list length")
		}
		b = b[n:]
		v.list = make([]Value, count)
		for i := range v.list {
			var err error
			if v.list[i], b, err = decodeValue(b, depth+1); err != nil {
				return Value{}, nil, err
			}
		}
		return v, b, nil

	case KindMap:
		count, n := binary.Uvarint(b)
		// Every entry occupies at least two bytes: a name length and a tag.
		if n <= 0 || count > uint64(len(b)-n)/2 {
			return Value{}, nil, CorruptionErrorf("sbtkv: invalid map length")
		}
		b = b[n:]
		v.fields = make(map[string]Value, count)
		var prev string
		for i := uint64(0); i < count; i++ {
			name, rest, err := decodeString(b)
			if err != nil {
				return Value{}, nil, err
			}
			if i > 0 && name <= prev {
				return Value{}, nil, CorruptionErrorf("sbtkv: map fields out of order: %q after %q", name, prev)
			}
			var f Value
			if f, b, err = decodeValue(rest, depth+1); err != nil {
				return Value{}, nil, err
			}
			v.fields[name] = f
			prev = name
		}
		return v, b, nil
	}
	return Value{}, nil, CorruptionErrorf("sbtkv: unknown value kind %d", uint8(v.kind))
}

func decodeString(b []byte) (string, []byte, error) {
	l, n := binary.Uvarint(b)
	if n <= 0 || l > uint64(len(b)-n) {
		return "", nil, CorruptionErrorf("sbtkv: invalid string length")
	}
	b = b[n:]
	return string(b[:l]), b[l:], nil
}
