// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package snapshot implements the on-disk format of a full store snapshot: the
// complete, ascending sequence of key/value pairs held by the store at the
// time it was written.
//
// The format is
//
//	+----------+---------+----------+---------+----------+------+----------+
//	| magic    | version | compress | count   | body len | body | checksum |
//	| 8 bytes  | 1 byte  | 1 byte   | uvarint | uvarint  |      | 8 bytes  |
//	+----------+---------+----------+---------+----------+------+----------+
//
// The body, before compression, is count entries of
//
//	uvarint key length | key | encoded value
//
// where values use the encoding of base.Value.AppendEncoded. The checksum is
// the little-endian xxhash64 of every preceding byte. A snapshot is written by
// overwriting the previous file in place, so a crash during the write can
// leave a truncated file behind; the checksum makes such a file fail to
// decode rather than silently load a prefix.
package snapshot

import (
	"encoding/binary"
	"iter"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/sbtkv/internal/base"
)

const (
	magic         = "sbtkvsnp"
	formatVersion = 1
	// headerMinLen is the size of the fixed portion of the header plus the
	// smallest possible count and body length varints.
	headerMinLen = len(magic) + 2 + 2
	checksumLen  = 8
)

// Pair is a single entry of a snapshot.
type Pair struct {
	Key   string
	Value base.Value
}

// Header describes a decoded snapshot.
type Header struct {
	Version     uint8
	Compression Compression
	// Count is the number of pairs in the snapshot.
	Count uint64
	// BodyLen is the length of the stored, possibly compressed, body.
	BodyLen uint64
}

// Encode serializes the pairs produced by seq, which must be in strictly
// ascending key order, into a complete snapshot compressed with c.
func Encode(c Compression, seq iter.Seq2[string, base.Value]) ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	var body []byte
	var count uint64
	var prev string
	for k, v := range seq {
		if count > 0 && k <= prev {
			return nil, errors.AssertionFailedf("sbtkv: snapshot keys out of order: %q after %q", k, prev)
		}
		if err := v.CheckDepth(); err != nil {
			return nil, errors.Wrapf(err, "encoding key %q", k)
		}
		body = binary.AppendUvarint(body, uint64(len(k)))
		body = append(body, k...)
		body = v.AppendEncoded(body)
		prev = k
		count++
	}
	stored, err := c.compress(body)
	if err != nil {
		return nil, err
	}
	return frame(c, count, stored), nil
}

// frame wraps an already compressed body with the header and checksum.
func frame(c Compression, count uint64, stored []byte) []byte {
	buf := make([]byte, 0, headerMinLen+2*binary.MaxVarintLen64+len(stored)+checksumLen)
	buf = append(buf, magic...)
	buf = append(buf, formatVersion, byte(c))
	buf = binary.AppendUvarint(buf, count)
	buf = binary.AppendUvarint(buf, uint64(len(stored)))
	buf = append(buf, stored...)
	return binary.LittleEndian.AppendUint64(buf, xxhash.Sum64(buf))
}

// DecodeHeader verifies the checksum of data and decodes its header. It
// returns the header and the stored body.
func DecodeHeader(data []byte) (Header, []byte, error) {
	if len(data) < headerMinLen+checksumLen {
		return Header{}, nil, base.CorruptionErrorf("sbtkv: snapshot too short: %d bytes", len(data))
	}
	payload, trailer := data[:len(data)-checksumLen], data[len(data)-checksumLen:]
	if want, got := binary.LittleEndian.Uint64(trailer), xxhash.Sum64(payload); want != got {
		return Header{}, nil, base.CorruptionErrorf("sbtkv: snapshot checksum mismatch: stored %016x, computed %016x", want, got)
	}
	if string(payload[:len(magic)]) != magic {
		return Header{}, nil, base.CorruptionErrorf("sbtkv: not a snapshot file: bad magic %q", payload[:len(magic)])
	}
	b := payload[len(magic):]
	h := Header{Version: b[0], Compression: Compression(b[1])}
	if h.Version != formatVersion {
		return Header{}, nil, base.CorruptionErrorf("sbtkv: unsupported snapshot version %d", h.Version)
	}
	if err := h.Compression.Validate(); err != nil {
		return Header{}, nil, base.MarkCorruptionError(err)
	}
	b = b[2:]
	var n int
	if h.Count, n = binary.Uvarint(b); n <= 0 {
		return Header{}, nil, base.CorruptionErrorf("sbtkv: invalid snapshot count")
	}
	b = b[n:]
	if h.BodyLen, n = binary.Uvarint(b); n <= 0 {
		return Header{}, nil, base.CorruptionErrorf("sbtkv: invalid snapshot body length")
	}
	b = b[n:]
	if h.BodyLen != uint64(len(b)) {
		return Header{}, nil, base.CorruptionErrorf("sbtkv: snapshot body length %d, found %d bytes", h.BodyLen, len(b))
	}
	return h, b, nil
}

// Decode verifies and decodes a snapshot produced by Encode. Any structural
// problem is reported as an error marked with base.ErrCorruption.
func Decode(data []byte) (Header, []Pair, error) {
	h, stored, err := DecodeHeader(data)
	if err != nil {
		return Header{}, nil, err
	}
	body, err := h.Compression.decompress(stored)
	if err != nil {
		return Header{}, nil, base.MarkCorruptionError(err)
	}
	// Every pair occupies at least two bytes: a key length and a value tag.
	if h.Count > uint64(len(body))/2 {
		return Header{}, nil, base.CorruptionErrorf("sbtkv: snapshot count %d exceeds body of %d bytes", h.Count, len(body))
	}
	pairs := make([]Pair, h.Count)
	for i := range pairs {
		l, n := binary.Uvarint(body)
		if n <= 0 || l > uint64(len(body)-n) {
			return Header{}, nil, base.CorruptionErrorf("sbtkv: invalid key length in pair %d", i)
		}
		body = body[n:]
		pairs[i].Key = string(body[:l])
		if i > 0 && pairs[i].Key <= pairs[i-1].Key {
			return Header{}, nil, base.CorruptionErrorf("sbtkv: snapshot keys out of order: %q after %q",
				pairs[i].Key, pairs[i-1].Key)
		}
		if pairs[i].Value, body, err = base.DecodeValue(body[l:]); err != nil {
			return Header{}, nil, errors.Wrapf(err, "pair %d", i)
		}
	}
	if len(body) != 0 {
		return Header{}, nil, base.CorruptionErrorf("sbtkv: %d trailing bytes after snapshot pairs", len(body))
	}
	return h, pairs, nil
}
