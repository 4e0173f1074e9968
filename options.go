// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sbtkv

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/sbtkv/vfs"
	"github.com/prometheus/client_golang/prometheus"
)

// Options holds the optional parameters for configuring sbtkv. These options
// apply to the DB at Open time.
type Options struct {
	// FS provides the interface for persistent file storage.
	//
	// The default value uses the underlying operating system's file system.
	FS vfs.FS

	// Logger used to write log messages.
	//
	// The default logger uses the Go standard library log package.
	Logger Logger

	// EventListener provides hooks to listening to significant DB events such
	// as snapshot writes and load failures. Failure hooks left nil log through
	// Logger.
	EventListener *EventListener

	// Compression is the algorithm used to compress snapshot files. Any
	// algorithm can be read back regardless of this setting.
	Compression Compression

	// SnapshotWriteLatency, if set, observes the duration in seconds of every
	// successful snapshot write. It is not registered with any registry; the
	// caller does that if it wants it exported.
	SnapshotWriteLatency prometheus.Histogram
}

// EnsureDefaults ensures that the default values for all options are set if a
// valid value was not already specified. Returns the new options.
func (o *Options) EnsureDefaults() *Options {
	if o == nil {
		o = &Options{}
	}
	if o.FS == nil {
		o.FS = vfs.Default
	}
	if o.Logger == nil {
		o.Logger = DefaultLogger{}
	}
	if o.EventListener == nil {
		o.EventListener = &EventListener{}
	}
	o.EventListener.EnsureDefaults(o.Logger)
	if o.SnapshotWriteLatency == nil {
		o.SnapshotWriteLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sbtkv",
			Name:      "snapshot_write_latency_seconds",
			Help:      "Latency of writing a full snapshot.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 2, 20),
		})
	}
	return o
}

// Clone creates a shallow copy of the Options. The EventListener is copied
// too, so that filling in its defaults does not modify the caller's.
func (o *Options) Clone() *Options {
	n := &Options{}
	if o != nil {
		*n = *o
		if o.EventListener != nil {
			l := *o.EventListener
			n.EventListener = &l
		}
	}
	return n
}

// Validate verifies that the options are mutually consistent.
func (o *Options) Validate() error {
	return errors.Wrap(o.Compression.Validate(), "invalid options")
}
