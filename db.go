// Copyright 2012 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package sbtkv provides an ordered key/value store held in memory by a
// size-balanced tree and persisted as a full snapshot file after every
// mutation.
//
// A DB is owned by a single goroutine: none of its methods may be called
// concurrently. Snapshot failures never surface to callers of the mutating
// methods; they are logged and reported through the EventListener, and the
// in-memory state keeps the mutation.
package sbtkv // import "github.com/cockroachdb/sbtkv"

import (
	"iter"

	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/sbtkv/internal/base"
	"github.com/cockroachdb/sbtkv/internal/invariants"
	"github.com/cockroachdb/sbtkv/internal/sbt"
	"github.com/cockroachdb/sbtkv/internal/snapshot"
)

// DB provides an ordered key/value store backed by a single snapshot file.
type DB struct {
	path    string
	opts    *Options
	tree    *sbt.Tree[Value]
	metrics dbMetrics
}

// Path returns the backing file of the DB.
func (d *DB) Path() string {
	return d.path
}

// Insert stores value under key, overwriting any existing value, and writes a
// snapshot.
func (d *DB) Insert(key string, value Value) {
	d.tree.Insert(key, value)
	d.metrics.inserts.Add(1)
	d.save()
}

// Delete removes key and reports whether it existed. A snapshot is written
// only if the key existed.
func (d *DB) Delete(key string) bool {
	if !d.tree.Delete(key) {
		return false
	}
	d.metrics.deletes.Add(1)
	d.save()
	return true
}

// Update overwrites the value of an existing key and reports whether the key
// existed. A snapshot is written only if the key existed.
func (d *DB) Update(key string, value Value) bool {
	if !d.tree.Update(key, value) {
		return false
	}
	d.metrics.updates.Add(1)
	d.save()
	return true
}

// Search returns the value stored under key, and whether it exists.
func (d *DB) Search(key string) (Value, bool) {
	return d.tree.Search(key)
}

// Get returns the value stored under key, or an error marked with
// ErrNotFound.
func (d *DB) Get(key string) (Value, error) {
	v, ok := d.tree.Search(key)
	if !ok {
		return Value{}, ErrNotFound
	}
	return v, nil
}

// GetAll returns every pair in ascending key order.
func (d *DB) GetAll() []KV {
	kvs := make([]KV, 0, d.tree.Len())
	for k, v := range d.tree.All() {
		kvs = append(kvs, KV{Key: k, Value: v})
	}
	return kvs
}

// All returns an iterator over every pair in ascending key order. The DB must
// not be mutated while iterating.
func (d *DB) All() iter.Seq2[string, Value] {
	return d.tree.All()
}

// Size returns the number of keys.
func (d *DB) Size() int {
	return d.tree.Len()
}

// Clear removes every key and the backing file. A missing backing file is not
// an error.
func (d *DB) Clear() {
	info := SnapshotRemoveInfo{Path: d.path, Keys: d.tree.Len()}
	d.tree.Clear()
	d.metrics.clears.Add(1)
	d.metrics.keys.Store(0)

	err := d.opts.FS.Remove(d.path)
	switch {
	case err == nil:
		info.Existed = true
	case !isNotExist(err):
		info.Err = errors.Wrapf(err, "removing %q", d.path)
	}
	d.opts.EventListener.SnapshotRemoved(info)
}

// Metrics returns metrics about the DB.
func (d *DB) Metrics() *Metrics {
	m := d.metrics.load()
	return &m
}

// CheckInvariants verifies the ordering, size and balance invariants of the
// in-memory tree.
func (d *DB) CheckInvariants() error {
	return d.tree.CheckInvariants()
}

// save writes the full contents of the tree to the backing file, replacing
// the previous snapshot. Failures are reported, never returned.
func (d *DB) save() {
	d.metrics.keys.Store(int64(d.tree.Len()))
	start := crtime.NowMono()
	info := SnapshotWriteInfo{Path: d.path, Keys: d.tree.Len()}

	buf, err := snapshot.Encode(d.opts.Compression, d.tree.All())
	if err == nil {
		err = d.writeFile(buf)
	}
	info.Duration = start.Elapsed()
	if err != nil {
		info.Err = err
		d.metrics.snapshotWriteFailures.Add(1)
		d.opts.EventListener.SnapshotWriteFailed(info)
		return
	}
	info.Size = int64(len(buf))
	d.metrics.snapshotWrites.Add(1)
	d.metrics.snapshotBytesWritten.Add(info.Size)
	d.metrics.snapshotLastSize.Store(info.Size)
	d.opts.SnapshotWriteLatency.Observe(info.Duration.Seconds())
	d.opts.EventListener.SnapshotWritten(info)

	if invariants.Enabled && invariants.Sometimes(10) {
		if _, pairs, err := snapshot.Decode(buf); err != nil || len(pairs) != d.tree.Len() {
			panic(errors.AssertionFailedf("snapshot of %d keys does not decode: %d pairs, %v",
				d.tree.Len(), len(pairs), err))
		}
	}
}

// tempSuffix names the file a snapshot is written to before it is renamed over
// the backing file.
const tempSuffix = ".dbtmp"

func (d *DB) tempPath() string {
	return d.path + tempSuffix
}

// writeFile writes buf to a temporary file and renames it over the backing
// file, so a failed write leaves the previous snapshot in place.
func (d *DB) writeFile(buf []byte) error {
	tmp := d.tempPath()
	if err := d.writeTemp(tmp, buf); err != nil {
		_ = d.opts.FS.Remove(tmp)
		return err
	}
	if err := d.opts.FS.Rename(tmp, d.path); err != nil {
		_ = d.opts.FS.Remove(tmp)
		return errors.Wrapf(err, "renaming %q to %q", tmp, d.path)
	}
	return nil
}

func (d *DB) writeTemp(tmp string, buf []byte) error {
	f, err := d.opts.FS.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "creating %q", tmp)
	}
	closer := base.CloseHelper(f)
	defer closer.Close()
	if _, err := f.Write(buf); err != nil {
		return errors.Wrapf(err, "writing %q", tmp)
	}
	if err := f.Sync(); err != nil {
		return errors.Wrapf(err, "syncing %q", tmp)
	}
	return errors.Wrapf(closer.Close(), "closing %q", tmp)
}
