// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

//go:build cgo

package snapshot

import "github.com/DataDog/zstd"

// UseStandardZstdLib indicates whether the zstd implementation is a port of
// the official one in the facebook/zstd repository.
const UseStandardZstdLib = true

func zstdCompress(b []byte) ([]byte, error) {
	return zstd.Compress(nil, b)
}

func zstdDecompress(b []byte) ([]byte, error) {
	return zstd.Decompress(nil, b)
}
