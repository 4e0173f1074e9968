// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sbtkv

// KV is a key/value pair returned by GetAll.
type KV struct {
	Key   string
	Value Value
}

// Reader is a readable key/value store.
type Reader interface {
	// Search returns the value stored under key, and whether it exists.
	Search(key string) (Value, bool)

	// GetAll returns every pair in ascending key order.
	GetAll() []KV

	// Size returns the number of keys.
	Size() int
}

// Writer is a writable key/value store. Every successful mutation is durable
// by the time the call returns, unless writing the snapshot failed; such
// failures are logged and do not roll back the mutation.
type Writer interface {
	// Insert stores value under key, overwriting any existing value.
	Insert(key string, value Value)

	// Delete removes key and reports whether it existed.
	Delete(key string) bool

	// Update overwrites the value of an existing key and reports whether the
	// key existed. It never creates a key.
	Update(key string, value Value) bool

	// Clear removes every key and the backing file.
	Clear()
}

// Store is the combined read and write interface implemented by *DB and
// *Adapter.
type Store interface {
	Reader
	Writer
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*Adapter)(nil)
)
