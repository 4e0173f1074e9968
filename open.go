// Copyright 2012 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sbtkv

import (
	"io"

	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/oserror"
	"github.com/cockroachdb/sbtkv/internal/sbt"
	"github.com/cockroachdb/sbtkv/internal/snapshot"
)

// Open opens a DB whose state is persisted in the file at path, loading the
// snapshot there if one exists. A nil opts is equivalent to an empty Options.
//
// A missing file yields an empty DB. A snapshot that exists but cannot be
// read or decoded is reported through the EventListener and also yields an
// empty DB; the next mutation then overwrites it. Open only fails for invalid
// arguments.
func Open(path string, opts *Options) (*DB, error) {
	if path == "" {
		return nil, errors.New("sbtkv: empty snapshot path")
	}
	// Make a copy of the options so that we don't mutate the passed in options.
	opts = opts.Clone().EnsureDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	d := &DB{
		path: path,
		opts: opts,
		tree: sbt.New[Value](),
	}
	d.removeStaleTemp()
	d.load()
	return d, nil
}

// removeStaleTemp removes a temporary snapshot left behind by a write that
// was interrupted before its rename.
func (d *DB) removeStaleTemp() {
	fs := d.opts.FS
	dir := fs.PathDir(d.path)
	names, err := fs.List(dir)
	if err != nil {
		if !isNotExist(err) {
			d.opts.Logger.Errorf("listing %q: %v", dir, err)
		}
		return
	}
	want := fs.PathBase(d.tempPath())
	for _, name := range names {
		if name != want {
			continue
		}
		tmp := fs.PathJoin(dir, name)
		if err := fs.Remove(tmp); err != nil {
			d.opts.Logger.Errorf("removing stale snapshot %q: %v", tmp, err)
		}
	}
}

func (d *DB) load() {
	start := crtime.NowMono()
	info := SnapshotLoadInfo{Path: d.path}
	tree, err := d.readSnapshot(&info)
	info.Duration = start.Elapsed()
	if err != nil {
		if isNotExist(err) {
			return
		}
		info.Err = err
		d.metrics.snapshotLoadFailures.Add(1)
		d.opts.EventListener.SnapshotLoadFailed(info)
		return
	}
	d.tree = tree
	info.Keys = tree.Len()
	d.metrics.keys.Store(int64(info.Keys))
	d.metrics.snapshotLoads.Add(1)
	d.opts.EventListener.SnapshotLoaded(info)
}

// readSnapshot reads and decodes the backing file in full before building a
// tree, so that a damaged snapshot never yields a partially loaded DB.
func (d *DB) readSnapshot(info *SnapshotLoadInfo) (*sbt.Tree[Value], error) {
	fi, err := d.opts.FS.Stat(d.path)
	if err != nil {
		return nil, err
	}
	f, err := d.opts.FS.Open(d.path)
	if err != nil {
		return nil, err
	}
	data := make([]byte, fi.Size())
	_, err = io.ReadFull(f, data)
	if err = errors.CombineErrors(err, f.Close()); err != nil {
		return nil, errors.Wrapf(err, "reading %q", d.path)
	}
	info.Size = int64(len(data))
	h, pairs, err := snapshot.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %q", d.path)
	}
	info.Compression = h.Compression
	tree := sbt.New[Value]()
	for _, p := range pairs {
		tree.Insert(p.Key, p.Value)
	}
	return tree, nil
}

func isNotExist(err error) bool {
	return oserror.IsNotExist(err)
}
