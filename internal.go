// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sbtkv

import (
	"github.com/cockroachdb/sbtkv/internal/base"
	"github.com/cockroachdb/sbtkv/internal/snapshot"
)

// Value is an immutable, self-describing value stored under a key.
type Value = base.Value

// Kind identifies the type held by a Value.
type Kind = base.Kind

// The kinds of Value.
const (
	KindNull   = base.KindNull
	KindBool   = base.KindBool
	KindInt    = base.KindInt
	KindFloat  = base.KindFloat
	KindString = base.KindString
	KindBytes  = base.KindBytes
	KindList   = base.KindList
	KindMap    = base.KindMap
)

// Value constructors.
var (
	MakeNull   = base.MakeNull
	MakeBool   = base.MakeBool
	MakeInt    = base.MakeInt
	MakeFloat  = base.MakeFloat
	MakeString = base.MakeString
	MakeBytes  = base.MakeBytes
	MakeList   = base.MakeList
	MakeMap    = base.MakeMap
)

// ParseJSON parses a JSON document into a Value.
func ParseJSON(s string) (Value, error) {
	return base.ParseJSON(s)
}

// Logger defines an interface for writing log messages.
type Logger = base.Logger

// DefaultLogger logs to the Go stdlib logs.
type DefaultLogger = base.DefaultLogger

// NoopLogger discards all log messages.
type NoopLogger = base.NoopLogger

// ErrNotFound means that a get, update or delete call did not find the
// requested key.
var ErrNotFound = base.ErrNotFound

// ErrCorruption is a marker to indicate that data in a snapshot file is
// corrupted.
var ErrCorruption = base.ErrCorruption

// IsCorruptionError returns true if the given error indicates corruption.
func IsCorruptionError(err error) bool {
	return base.IsCorruptionError(err)
}

// Compression is the algorithm used to compress snapshot files.
type Compression = snapshot.Compression

// The supported snapshot compression algorithms.
const (
	NoCompression     = snapshot.NoCompression
	SnappyCompression = snapshot.SnappyCompression
	ZstdCompression   = snapshot.ZstdCompression
	MinLZCompression  = snapshot.MinLZCompression
)
