// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sbtkv

import "github.com/prometheus/client_golang/prometheus"

// MetricsSource is implemented by *DB and *Adapter.
type MetricsSource interface {
	Metrics() *Metrics
}

// Collector exports the Metrics of a DB to Prometheus. It only reads atomic
// counters, so it may be scraped concurrently with the goroutine that owns the
// DB.
type Collector struct {
	src MetricsSource

	keys         *prometheus.Desc
	ops          *prometheus.Desc
	snapWrites   *prometheus.Desc
	snapLoads    *prometheus.Desc
	bytesWritten *prometheus.Desc
	lastSnapshot *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector returns a Collector reporting the metrics of src.
func NewCollector(src MetricsSource) *Collector {
	return &Collector{
		src: src,
		keys: prometheus.NewDesc("sbtkv_keys",
			"Number of keys stored.", nil, nil),
		ops: prometheus.NewDesc("sbtkv_operations_total",
			"Number of applied mutations by operation.", []string{"op"}, nil),
		snapWrites: prometheus.NewDesc("sbtkv_snapshot_writes_total",
			"Number of snapshot writes by result.", []string{"result"}, nil),
		snapLoads: prometheus.NewDesc("sbtkv_snapshot_loads_total",
			"Number of snapshot loads by result.", []string{"result"}, nil),
		bytesWritten: prometheus.NewDesc("sbtkv_snapshot_bytes_written_total",
			"Total bytes of snapshots written.", nil, nil),
		lastSnapshot: prometheus.NewDesc("sbtkv_snapshot_size_bytes",
			"Size of the most recently written snapshot.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
	ch <- c.ops
	ch <- c.snapWrites
	ch <- c.snapLoads
	ch <- c.bytesWritten
	ch <- c.lastSnapshot
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.src.Metrics()
	counter := func(d *prometheus.Desc, v int64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	gauge := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v))
	}
	gauge(c.keys, m.Keys)
	counter(c.ops, m.Ops.Inserts, "insert")
	counter(c.ops, m.Ops.Updates, "update")
	counter(c.ops, m.Ops.Deletes, "delete")
	counter(c.ops, m.Ops.Clears, "clear")
	counter(c.snapWrites, m.Snapshot.Writes, "ok")
	counter(c.snapWrites, m.Snapshot.WriteFailures, "failed")
	counter(c.snapLoads, m.Snapshot.Loads, "ok")
	counter(c.snapLoads, m.Snapshot.LoadFailures, "failed")
	counter(c.bytesWritten, m.Snapshot.BytesWritten)
	gauge(c.lastSnapshot, m.Snapshot.LastSize)
}
