// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sbtkv

import (
	"sync/atomic"

	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/redact"
)

// Metrics holds metrics for various subsystems of the DB such as the tree and
// snapshot persistence.
type Metrics struct {
	// Keys is the number of keys currently stored.
	Keys int64

	Ops struct {
		// The number of Insert calls, including overwrites.
		Inserts int64
		// The number of successful Update calls.
		Updates int64
		// The number of successful Delete calls.
		Deletes int64
		// The number of Clear calls.
		Clears int64
	}

	Snapshot struct {
		// The number of snapshots successfully loaded at Open.
		Loads int64
		// The number of snapshots that existed but could not be loaded.
		LoadFailures int64
		// The number of snapshots successfully written.
		Writes int64
		// The number of snapshot writes that failed.
		WriteFailures int64
		// The total number of bytes of snapshots written.
		BytesWritten int64
		// The size of the most recently written snapshot.
		LastSize int64
	}
}

// dbMetrics holds the live counters behind Metrics. They are atomic so that a
// Collector may read them while the owning goroutine mutates the DB.
type dbMetrics struct {
	keys                  atomic.Int64
	inserts               atomic.Int64
	updates               atomic.Int64
	deletes               atomic.Int64
	clears                atomic.Int64
	snapshotLoads         atomic.Int64
	snapshotLoadFailures  atomic.Int64
	snapshotWrites        atomic.Int64
	snapshotWriteFailures atomic.Int64
	snapshotBytesWritten  atomic.Int64
	snapshotLastSize      atomic.Int64
}

// inherit adds the cumulative counters of prev to m, so that counters exported
// by a Collector never decrease when an Adapter reopens its DB. Keys and the
// last snapshot size describe the current DB and are not inherited.
func (m *dbMetrics) inherit(prev *dbMetrics) {
	m.inserts.Add(prev.inserts.Load())
	m.updates.Add(prev.updates.Load())
	m.deletes.Add(prev.deletes.Load())
	m.clears.Add(prev.clears.Load())
	m.snapshotLoads.Add(prev.snapshotLoads.Load())
	m.snapshotLoadFailures.Add(prev.snapshotLoadFailures.Load())
	m.snapshotWrites.Add(prev.snapshotWrites.Load())
	m.snapshotWriteFailures.Add(prev.snapshotWriteFailures.Load())
	m.snapshotBytesWritten.Add(prev.snapshotBytesWritten.Load())
}

func (m *dbMetrics) load() Metrics {
	var r Metrics
	r.Keys = m.keys.Load()
	r.Ops.Inserts = m.inserts.Load()
	r.Ops.Updates = m.updates.Load()
	r.Ops.Deletes = m.deletes.Load()
	r.Ops.Clears = m.clears.Load()
	r.Snapshot.Loads = m.snapshotLoads.Load()
	r.Snapshot.LoadFailures = m.snapshotLoadFailures.Load()
	r.Snapshot.Writes = m.snapshotWrites.Load()
	r.Snapshot.WriteFailures = m.snapshotWriteFailures.Load()
	r.Snapshot.BytesWritten = m.snapshotBytesWritten.Load()
	r.Snapshot.LastSize = m.snapshotLastSize.Load()
	return r
}

// String pretty-prints the metrics.
func (m *Metrics) String() string {
	return redact.StringWithoutMarkers(m)
}

var _ redact.SafeFormatter = &Metrics{}

// SafeFormat implements redact.SafeFormatter.
func (m *Metrics) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("keys: %d\n", redact.Safe(m.Keys))
	w.Printf("ops: %d inserts, %d updates, %d deletes, %d clears\n",
		redact.Safe(m.Ops.Inserts), redact.Safe(m.Ops.Updates),
		redact.Safe(m.Ops.Deletes), redact.Safe(m.Ops.Clears))
	w.Printf("snapshot writes: %d ok, %d failed, %s written, last %s\n",
		redact.Safe(m.Snapshot.Writes), redact.Safe(m.Snapshot.WriteFailures),
		crhumanize.Bytes(m.Snapshot.BytesWritten, crhumanize.Compact, crhumanize.OmitI),
		crhumanize.Bytes(m.Snapshot.LastSize, crhumanize.Compact, crhumanize.OmitI))
	w.Printf("snapshot loads: %d ok, %d failed\n",
		redact.Safe(m.Snapshot.Loads), redact.Safe(m.Snapshot.LoadFailures))
}
