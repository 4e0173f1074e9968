// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sbtkv

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/sbtkv/vfs"
)

// Adapter is a Store that adds file-level backup and restore of the backing
// snapshot to a DB. Restore replaces the underlying DB, so callers should
// hold on to the Adapter rather than to the DB it wraps.
type Adapter struct {
	db   *DB
	opts *Options
}

// NewAdapter opens a DB at path and wraps it in an Adapter.
func NewAdapter(path string, opts *Options) (*Adapter, error) {
	opts = opts.Clone().EnsureDefaults()
	db, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	return &Adapter{db: db, opts: opts}, nil
}

// DB returns the currently open DB.
func (a *Adapter) DB() *DB { return a.db }

// Insert implements Writer.
func (a *Adapter) Insert(key string, value Value) { a.db.Insert(key, value) }

// Delete implements Writer.
func (a *Adapter) Delete(key string) bool { return a.db.Delete(key) }

// Update implements Writer.
func (a *Adapter) Update(key string, value Value) bool { return a.db.Update(key, value) }

// Clear implements Writer.
func (a *Adapter) Clear() { a.db.Clear() }

// Search implements Reader.
func (a *Adapter) Search(key string) (Value, bool) { return a.db.Search(key) }

// GetAll implements Reader.
func (a *Adapter) GetAll() []KV { return a.db.GetAll() }

// Size implements Reader.
func (a *Adapter) Size() int { return a.db.Size() }

// Backup copies the backing file to dst, creating the directory holding dst
// if necessary. It fails if nothing has been persisted yet.
func (a *Adapter) Backup(dst string) error {
	n, err := a.backup(dst)
	if err != nil {
		err = errors.Wrapf(err, "sbtkv: backing up %q to %q", a.db.path, dst)
	}
	a.opts.EventListener.BackupCreated(BackupInfo{Source: a.db.path, Dest: dst, Size: n, Err: err})
	return err
}

func (a *Adapter) backup(dst string) (int64, error) {
	fs := a.opts.FS
	if _, err := fs.Stat(a.db.path); err != nil {
		return 0, err
	}
	if err := fs.MkdirAll(fs.PathDir(dst), 0755); err != nil {
		return 0, err
	}
	return vfs.Copy(fs, a.db.path, dst)
}

// Restore copies src over the backing file and reopens the DB from it,
// replacing the in-memory state. The copy goes through a temporary file, so if
// src cannot be copied both the current DB and its backing file are left
// untouched.
//
// A src that copies successfully but does not decode yields an empty DB, as
// with Open. Cumulative metrics carry over to the reopened DB.
func (a *Adapter) Restore(src string) error {
	info := RestoreInfo{Source: src, Dest: a.db.path}
	if err := a.restore(src); err != nil {
		info.Err = errors.Wrapf(err, "sbtkv: restoring %q from %q", a.db.path, src)
		a.opts.EventListener.Restored(info)
		return info.Err
	}
	db, err := Open(a.db.path, a.opts)
	if err != nil {
		info.Err = errors.Wrapf(err, "sbtkv: reopening %q", a.db.path)
		a.opts.EventListener.Restored(info)
		return info.Err
	}
	db.metrics.inherit(&a.db.metrics)
	a.db = db
	info.Keys = db.Size()
	a.opts.EventListener.Restored(info)
	return nil
}

func (a *Adapter) restore(src string) error {
	fs := a.opts.FS
	tmp := a.db.tempPath()
	if _, err := vfs.Copy(fs, src, tmp); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	if err := fs.Rename(tmp, a.db.path); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	return nil
}

// Metrics returns the metrics of the currently open DB.
func (a *Adapter) Metrics() *Metrics { return a.db.Metrics() }
