// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package base defines fundamental types used across sbtkv: the Value payload
// stored against every key, the Logger interface and the sentinel errors.
//
// # Values
//
// A [Value] is a tagged union over null, bool, int64, float64, string, bytes,
// list and map variants. Values are immutable once constructed: constructors
// copy their inputs and accessors return copies of composite contents, so a
// Value held by the tree cannot be mutated through a caller's alias.
//
// Every Value has a deterministic binary encoding (see [Value.AppendEncoded]
// and [DecodeValue]) used by the snapshot codec. Map entries are encoded in
// ascending key order so that equal values always encode to equal bytes.
package base
