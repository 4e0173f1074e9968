// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/cockroachdb/crlib/crhumanize"
	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/sbtkv"
	"github.com/cockroachdb/tokenbucket"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

const (
	minLatency = 100 * time.Nanosecond
	maxLatency = 10 * time.Second

	// plotWidth is the maximum number of points in the insert latency plot.
	plotWidth = 60
)

type benchConfig struct {
	numOps    int
	seed      uint64
	valueSize int
	// rate limits inserts per second; 0 means unlimited.
	rate float64
}

func clampLatency(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if d > max {
		return max
	}
	return d
}

func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(minLatency.Nanoseconds(), maxLatency.Nanoseconds(), 2)
}

type benchResult struct {
	name    string
	elapsed time.Duration
	hist    *hdrhistogram.Histogram
}

func (d *dbT) runBench(cmd *cobra.Command, args []string) {
	cfg := d.bench
	if cfg.numOps <= 0 {
		fmt.Fprintf(stderr, "bench: --num-ops must be positive\n")
		osExit(1)
		return
	}
	if cfg.valueSize < 0 {
		fmt.Fprintf(stderr, "bench: --value must not be negative\n")
		osExit(1)
		return
	}
	if cfg.rate < 0 {
		fmt.Fprintf(stderr, "bench: --rate must not be negative\n")
		osExit(1)
		return
	}
	db, err := d.openDB(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	fmt.Fprintf(stdout, "file %s\nexisting keys %d\n", args[0], db.Size())
	var limiter *tokenbucket.TokenBucket
	if cfg.rate > 0 {
		limiter = &tokenbucket.TokenBucket{}
		rate := tokenbucket.TokensPerSecond(cfg.rate)
		limiter.Init(rate, tokenbucket.Tokens(max(1, rate*0.1)))
		fmt.Fprintf(stdout, "limiting inserts to %.1f/s\n", cfg.rate)
	}

	rng := rand.New(rand.NewSource(cfg.seed))
	keys := make([]string, cfg.numOps)
	for i := range keys {
		keys[i] = fmt.Sprintf("bench-%016x", rng.Uint64())
	}
	value := make([]byte, cfg.valueSize)
	for i := 0; i < len(value); i += 8 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], rng.Uint64())
		copy(value[i:], buf[:])
	}

	// Insert latency is also averaged over consecutive groups of keys to show
	// how the cost of rewriting the snapshot grows.
	groupSize := (cfg.numOps + plotWidth - 1) / plotWidth
	var plot []float64
	var groupTotal time.Duration

	inserts := benchResult{name: "insert", hist: newHistogram()}
	start := crtime.NowMono()
	for i, k := range keys {
		if limiter != nil {
			limiter.Wait(1)
		}
		opStart := crtime.NowMono()
		db.Insert(k, sbtkv.MakeBytes(value))
		lat := opStart.Elapsed()
		_ = inserts.hist.RecordValue(clampLatency(lat, minLatency, maxLatency).Nanoseconds())
		groupTotal += lat
		if (i+1)%groupSize == 0 || i == len(keys)-1 {
			n := i%groupSize + 1
			plot = append(plot, float64(groupTotal.Microseconds())/float64(n))
			groupTotal = 0
		}
	}
	inserts.elapsed = start.Elapsed()

	searches := benchResult{name: "search", hist: newHistogram()}
	start = crtime.NowMono()
	for _, i := range rng.Perm(len(keys)) {
		opStart := crtime.NowMono()
		if _, ok := db.Search(keys[i]); !ok {
			fmt.Fprintf(stderr, "bench: inserted key %s not found\n", keys[i])
			osExit(1)
			return
		}
		_ = searches.hist.RecordValue(clampLatency(opStart.Elapsed(), minLatency, maxLatency).Nanoseconds())
	}
	searches.elapsed = start.Elapsed()

	fmt.Fprintln(stdout, "\n____optype__elapsed_____ops(total)___ops/sec(cum)__avg(ms)__p50(ms)__p95(ms)__p99(ms)_pMax(ms)")
	for _, r := range []benchResult{inserts, searches} {
		h := r.hist
		fmt.Fprintf(stdout, "%10s %7.1fs %14d %14.1f %8.3f %8.3f %8.3f %8.3f %8.3f\n",
			r.name, r.elapsed.Seconds(), h.TotalCount(),
			float64(h.TotalCount())/r.elapsed.Seconds(),
			time.Duration(h.Mean()).Seconds()*1000,
			time.Duration(h.ValueAtQuantile(50)).Seconds()*1000,
			time.Duration(h.ValueAtQuantile(95)).Seconds()*1000,
			time.Duration(h.ValueAtQuantile(99)).Seconds()*1000,
			time.Duration(h.ValueAtQuantile(100)).Seconds()*1000)
	}

	m := db.Metrics()
	fmt.Fprintf(stdout, "\nkeys %d, last snapshot %s, %s written\n\n", m.Keys,
		crhumanize.Bytes(m.Snapshot.LastSize, crhumanize.Compact, crhumanize.OmitI),
		crhumanize.Bytes(m.Snapshot.BytesWritten, crhumanize.Compact, crhumanize.OmitI))
	fmt.Fprintln(stdout, asciigraph.Plot(plot,
		asciigraph.Height(10),
		asciigraph.Caption(fmt.Sprintf("insert latency (µs), averaged over groups of %d keys", groupSize))))
}
