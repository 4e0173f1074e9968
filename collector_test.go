// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sbtkv

import (
	"strings"
	"testing"

	"github.com/cockroachdb/sbtkv/internal/base"
	"github.com/cockroachdb/sbtkv/vfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_latency"})
	a, err := NewAdapter("db.sbt", &Options{
		FS:                   vfs.NewMem(),
		Logger:               base.NoopLogger{},
		SnapshotWriteLatency: latency,
	})
	require.NoError(t, err)
	a.Insert("a", MakeInt(1))
	a.Insert("b", MakeInt(2))
	a.Insert("c", MakeInt(3))
	require.True(t, a.Update("a", MakeInt(4)))
	require.True(t, a.Delete("b"))
	require.False(t, a.Delete("b"))

	c := NewCollector(a)
	const want = `
# HELP sbtkv_keys Number of keys stored.
# TYPE sbtkv_keys gauge
sbtkv_keys 2
# HELP sbtkv_operations_total Number of applied mutations by operation.
# TYPE sbtkv_operations_total counter
sbtkv_operations_total{op="clear"} 0
sbtkv_operations_total{op="delete"} 1
sbtkv_operations_total{op="insert"} 3
sbtkv_operations_total{op="update"} 1
# HELP sbtkv_snapshot_loads_total Number of snapshot loads by result.
# TYPE sbtkv_snapshot_loads_total counter
sbtkv_snapshot_loads_total{result="failed"} 0
sbtkv_snapshot_loads_total{result="ok"} 0
# HELP sbtkv_snapshot_writes_total Number of snapshot writes by result.
# TYPE sbtkv_snapshot_writes_total counter
sbtkv_snapshot_writes_total{result="failed"} 0
sbtkv_snapshot_writes_total{result="ok"} 5
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(want),
		"sbtkv_keys", "sbtkv_operations_total", "sbtkv_snapshot_loads_total", "sbtkv_snapshot_writes_total"))
	require.Equal(t, 11, testutil.CollectAndCount(c))

	var m dto.Metric
	require.NoError(t, latency.Write(&m))
	require.Equal(t, uint64(5), m.GetHistogram().GetSampleCount())

	// The collector follows the adapter across a restore.
	require.NoError(t, a.Backup("backup.sbt"))
	require.NoError(t, a.Restore("backup.sbt"))
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(`
# HELP sbtkv_snapshot_loads_total Number of snapshot loads by result.
# TYPE sbtkv_snapshot_loads_total counter
sbtkv_snapshot_loads_total{result="failed"} 0
sbtkv_snapshot_loads_total{result="ok"} 1
`), "sbtkv_snapshot_loads_total"))
}

func TestMetricsString(t *testing.T) {
	d, err := Open("db.sbt", &Options{FS: vfs.NewMem(), Logger: base.NoopLogger{}})
	require.NoError(t, err)
	d.Insert("a", MakeInt(1))
	d.Insert("b", MakeInt(1))
	d.Delete("a")
	s := d.Metrics().String()
	require.Contains(t, s, "keys: 1\n")
	require.Contains(t, s, "ops: 2 inserts, 0 updates, 1 deletes, 0 clears\n")
	require.Contains(t, s, "snapshot writes: 3 ok, 0 failed")
	require.Contains(t, s, "snapshot loads: 0 ok, 0 failed\n")
}
