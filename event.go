// Copyright 2018 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sbtkv

import (
	"time"

	"github.com/cockroachdb/redact"
)

// SnapshotLoadInfo contains the info for a snapshot load event.
type SnapshotLoadInfo struct {
	// Path is the backing file.
	Path string
	// Keys is the number of keys restored.
	Keys int
	// Size is the size of the snapshot file in bytes.
	Size int64
	// Compression is the algorithm the snapshot was written with.
	Compression Compression
	// Duration is the time spent reading and decoding the snapshot.
	Duration time.Duration
	// Err is set if the snapshot could not be loaded. The DB then starts
	// empty.
	Err error
}

func (i SnapshotLoadInfo) String() string {
	return redact.StringWithoutMarkers(i)
}

// SafeFormat implements redact.SafeFormatter.
func (i SnapshotLoadInfo) SafeFormat(w redact.SafePrinter, _ rune) {
	if i.Err != nil {
		w.Printf("[sbtkv] loading snapshot %s failed; starting empty: %v", redact.Safe(i.Path), i.Err)
		return
	}
	w.Printf("[sbtkv] loaded snapshot %s: %d keys, %d bytes (%s) in %.3fs",
		redact.Safe(i.Path), redact.Safe(i.Keys), redact.Safe(i.Size),
		redact.Safe(i.Compression.String()), redact.Safe(i.Duration.Seconds()))
}

// SnapshotWriteInfo contains the info for a snapshot write event.
type SnapshotWriteInfo struct {
	// Path is the backing file.
	Path string
	// Keys is the number of keys written.
	Keys int
	// Size is the number of bytes written.
	Size int64
	// Duration is the time spent encoding and writing the snapshot.
	Duration time.Duration
	// Err is set if the snapshot could not be written. The in-memory state
	// keeps the mutation that triggered the write.
	Err error
}

func (i SnapshotWriteInfo) String() string {
	return redact.StringWithoutMarkers(i)
}

// SafeFormat implements redact.SafeFormatter.
func (i SnapshotWriteInfo) SafeFormat(w redact.SafePrinter, _ rune) {
	if i.Err != nil {
		w.Printf("[sbtkv] writing snapshot %s failed: %v", redact.Safe(i.Path), i.Err)
		return
	}
	w.Printf("[sbtkv] wrote snapshot %s: %d keys, %d bytes in %.3fs",
		redact.Safe(i.Path), redact.Safe(i.Keys), redact.Safe(i.Size), redact.Safe(i.Duration.Seconds()))
}

// SnapshotRemoveInfo contains the info for the removal of the backing file
// when the DB is cleared.
type SnapshotRemoveInfo struct {
	Path string
	// Keys is the number of keys dropped from memory.
	Keys int
	// Existed is true if a backing file was present and removed.
	Existed bool
	Err     error
}

func (i SnapshotRemoveInfo) String() string {
	return redact.StringWithoutMarkers(i)
}

// SafeFormat implements redact.SafeFormatter.
func (i SnapshotRemoveInfo) SafeFormat(w redact.SafePrinter, _ rune) {
	if i.Err != nil {
		w.Printf("[sbtkv] cleared %d keys; removing snapshot %s failed: %v",
			redact.Safe(i.Keys), redact.Safe(i.Path), i.Err)
		return
	}
	if !i.Existed {
		w.Printf("[sbtkv] cleared %d keys; no snapshot at %s", redact.Safe(i.Keys), redact.Safe(i.Path))
		return
	}
	w.Printf("[sbtkv] cleared %d keys; removed snapshot %s", redact.Safe(i.Keys), redact.Safe(i.Path))
}

// BackupInfo contains the info for a backup event.
type BackupInfo struct {
	// Source is the backing file that was copied.
	Source string
	// Dest is the backup path.
	Dest string
	// Size is the number of bytes copied.
	Size int64
	Err  error
}

func (i BackupInfo) String() string {
	return redact.StringWithoutMarkers(i)
}

// SafeFormat implements redact.SafeFormatter.
func (i BackupInfo) SafeFormat(w redact.SafePrinter, _ rune) {
	if i.Err != nil {
		w.Printf("[sbtkv] backup of %s to %s failed: %v", redact.Safe(i.Source), redact.Safe(i.Dest), i.Err)
		return
	}
	w.Printf("[sbtkv] backed up %s to %s: %d bytes", redact.Safe(i.Source), redact.Safe(i.Dest), redact.Safe(i.Size))
}

// RestoreInfo contains the info for a restore event.
type RestoreInfo struct {
	// Source is the backup that was copied over the backing file.
	Source string
	// Dest is the backing file.
	Dest string
	// Keys is the number of keys loaded after the restore.
	Keys int
	Err  error
}

func (i RestoreInfo) String() string {
	return redact.StringWithoutMarkers(i)
}

// SafeFormat implements redact.SafeFormatter.
func (i RestoreInfo) SafeFormat(w redact.SafePrinter, _ rune) {
	if i.Err != nil {
		w.Printf("[sbtkv] restore of %s from %s failed: %v", redact.Safe(i.Dest), redact.Safe(i.Source), i.Err)
		return
	}
	w.Printf("[sbtkv] restored %s from %s: %d keys", redact.Safe(i.Dest), redact.Safe(i.Source), redact.Safe(i.Keys))
}

// EventListener contains a set of functions that will be invoked when various
// significant DB events occur. Note that the functions should not run for an
// excessive amount of time as they are invoked synchronously by the DB and may
// block the operation that triggered them.
type EventListener struct {
	// SnapshotLoaded is invoked after the snapshot was read at Open time.
	SnapshotLoaded func(SnapshotLoadInfo)

	// SnapshotLoadFailed is invoked when an existing snapshot could not be
	// read or decoded.
	SnapshotLoadFailed func(SnapshotLoadInfo)

	// SnapshotWritten is invoked after every successful snapshot write.
	SnapshotWritten func(SnapshotWriteInfo)

	// SnapshotWriteFailed is invoked when a snapshot could not be written.
	SnapshotWriteFailed func(SnapshotWriteInfo)

	// SnapshotRemoved is invoked when Clear removes, or fails to remove, the
	// backing file.
	SnapshotRemoved func(SnapshotRemoveInfo)

	// BackupCreated is invoked after a backup attempt; Err is set on failure.
	BackupCreated func(BackupInfo)

	// Restored is invoked after a restore attempt; Err is set on failure.
	Restored func(RestoreInfo)
}

// EnsureDefaults ensures that event listener callbacks are non-nil. Failure
// callbacks left unset log through logger, the others do nothing.
func (l *EventListener) EnsureDefaults(logger Logger) {
	if l.SnapshotLoaded == nil {
		l.SnapshotLoaded = func(SnapshotLoadInfo) {}
	}
	if l.SnapshotLoadFailed == nil {
		l.SnapshotLoadFailed = func(info SnapshotLoadInfo) {
			logger.Errorf("%s", info)
		}
	}
	if l.SnapshotWritten == nil {
		l.SnapshotWritten = func(SnapshotWriteInfo) {}
	}
	if l.SnapshotWriteFailed == nil {
		l.SnapshotWriteFailed = func(info SnapshotWriteInfo) {
			logger.Errorf("%s", info)
		}
	}
	if l.SnapshotRemoved == nil {
		l.SnapshotRemoved = func(info SnapshotRemoveInfo) {
			if info.Err != nil {
				logger.Errorf("%s", info)
			}
		}
	}
	if l.BackupCreated == nil {
		l.BackupCreated = func(info BackupInfo) {
			if info.Err != nil {
				logger.Errorf("%s", info)
			}
		}
	}
	if l.Restored == nil {
		l.Restored = func(info RestoreInfo) {
			if info.Err != nil {
				logger.Errorf("%s", info)
			}
		}
	}
}

// MakeLoggingEventListener creates an EventListener that logs all events to
// the specified logger.
func MakeLoggingEventListener(logger Logger) EventListener {
	if logger == nil {
		logger = DefaultLogger{}
	}
	logf := func(err error, info redact.SafeFormatter) {
		if err != nil {
			logger.Errorf("%s", info)
		} else {
			logger.Infof("%s", info)
		}
	}
	return EventListener{
		SnapshotLoaded:      func(info SnapshotLoadInfo) { logf(nil, info) },
		SnapshotLoadFailed:  func(info SnapshotLoadInfo) { logf(info.Err, info) },
		SnapshotWritten:     func(info SnapshotWriteInfo) { logf(nil, info) },
		SnapshotWriteFailed: func(info SnapshotWriteInfo) { logf(info.Err, info) },
		SnapshotRemoved:     func(info SnapshotRemoveInfo) { logf(info.Err, info) },
		BackupCreated:       func(info BackupInfo) { logf(info.Err, info) },
		Restored:            func(info RestoreInfo) { logf(info.Err, info) },
	}
}

// TeeEventListener wraps two EventListeners, forwarding all events to both.
func TeeEventListener(a, b EventListener) EventListener {
	a.EnsureDefaults(NoopLogger{})
	b.EnsureDefaults(NoopLogger{})
	return EventListener{
		SnapshotLoaded: func(info SnapshotLoadInfo) {
			a.SnapshotLoaded(info)
			b.SnapshotLoaded(info)
		},
		SnapshotLoadFailed: func(info SnapshotLoadInfo) {
			a.SnapshotLoadFailed(info)
			b.SnapshotLoadFailed(info)
		},
		SnapshotWritten: func(info SnapshotWriteInfo) {
			a.SnapshotWritten(info)
			b.SnapshotWritten(info)
		},
		SnapshotWriteFailed: func(info SnapshotWriteInfo) {
			a.SnapshotWriteFailed(info)
			b.SnapshotWriteFailed(info)
		},
		SnapshotRemoved: func(info SnapshotRemoveInfo) {
			a.SnapshotRemoved(info)
			b.SnapshotRemoved(info)
		},
		BackupCreated: func(info BackupInfo) {
			a.BackupCreated(info)
			b.BackupCreated(info)
		},
		Restored: func(info RestoreInfo) {
			a.Restored(info)
			b.Restored(info)
		},
	}
}
