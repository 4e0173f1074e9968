// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package tool implements the sbtkv command line tools: reading and writing
// individual keys of a snapshot file, inspecting its tree shape, backing it
// up and benchmarking it.
package tool

import (
	"github.com/cockroachdb/sbtkv"
	"github.com/cockroachdb/sbtkv/vfs"
	"github.com/spf13/cobra"
)

// T is the container for all of the introspection tools.
type T struct {
	Commands []*cobra.Command
	db       *dbT
	snapshot *snapshotT
	opts     sbtkv.Options
}

// An Option configures the tools returned by New.
type Option func(*T)

// FS sets the filesystem that snapshot files are read from and written to.
// The default is vfs.Default.
func FS(fs vfs.FS) Option {
	return func(t *T) {
		t.opts.FS = fs
	}
}

// Logger sets the logger used by the DBs the tools open. The default writes
// to stderr.
func Logger(logger sbtkv.Logger) Option {
	return func(t *T) {
		t.opts.Logger = logger
	}
}

// New creates a new introspection tool.
func New(opts ...Option) *T {
	t := &T{
		opts: sbtkv.Options{
			FS:     vfs.Default,
			Logger: stderrLogger{},
		},
	}
	for _, opt := range opts {
		opt(t)
	}

	t.db = newDB(&t.opts)
	t.snapshot = newSnapshot(&t.opts)
	t.Commands = []*cobra.Command{
		t.db.Root,
		t.snapshot.Root,
	}
	return t
}
