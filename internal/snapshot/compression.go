// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package snapshot

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
	"github.com/minio/minlz"
)

// Compression is the algorithm used to compress a snapshot body. Values are
// persisted in the snapshot header.
type Compression uint8

// The available compression algorithms.
const (
	NoCompression Compression = iota
	SnappyCompression
	ZstdCompression
	MinLZCompression
	nCompression
)

var compressionNames = [nCompression]string{
	NoCompression:     "none",
	SnappyCompression: "snappy",
	ZstdCompression:   "zstd",
	MinLZCompression:  "minlz",
}

// String implements fmt.Stringer.
func (c Compression) String() string {
	if c < nCompression {
		return compressionNames[c]
	}
	return "unknown"
}

// ParseCompression parses the name of a compression algorithm as printed by
// Compression.String.
func ParseCompression(s string) (Compression, error) {
	for c, name := range compressionNames {
		if strings.EqualFold(s, name) {
			return Compression(c), nil
		}
	}
	return 0, errors.Newf("sbtkv: unknown compression %q", s)
}

// Validate returns an error if c is not a known algorithm.
func (c Compression) Validate() error {
	if c >= nCompression {
		return errors.Newf("sbtkv: unknown compression %d", uint8(c))
	}
	return nil
}

func (c Compression) compress(b []byte) ([]byte, error) {
	switch c {
	case NoCompression:
		return b, nil
	case SnappyCompression:
		return snappy.Encode(nil, b), nil
	case ZstdCompression:
		return zstdCompress(b)
	case MinLZCompression:
		if len(b) == 0 {
			return b, nil
		}
		// MinLZ cannot encode blocks larger than MaxBlockSize, but it decodes
		// snappy blocks, so large bodies fall back to snappy.
		if len(b) > minlz.MaxBlockSize {
			return snappy.Encode(nil, b), nil
		}
		encoded, err := minlz.Encode(nil, b, minlz.LevelBalanced)
		return encoded, errors.Wrap(err, "sbtkv: minlz")
	}
	return nil, c.Validate()
}

func (c Compression) decompress(b []byte) ([]byte, error) {
	switch c {
	case NoCompression:
		return b, nil
	case SnappyCompression:
		decoded, err := snappy.Decode(nil, b)
		return decoded, errors.Wrap(err, "sbtkv: snappy")
	case ZstdCompression:
		decoded, err := zstdDecompress(b)
		return decoded, errors.Wrap(err, "sbtkv: zstd")
	case MinLZCompression:
		if len(b) == 0 {
			return b, nil
		}
		decoded, err := minlz.Decode(nil, b)
		return decoded, errors.Wrap(err, "sbtkv: minlz")
	}
	return nil, c.Validate()
}
