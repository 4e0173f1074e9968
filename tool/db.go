// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"fmt"

	"github.com/cockroachdb/sbtkv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// dbT implements db-level tools, including both configuration state and the
// commands themselves.
type dbT struct {
	Root    *cobra.Command
	Insert  *cobra.Command
	Get     *cobra.Command
	Update  *cobra.Command
	Delete  *cobra.Command
	Scan    *cobra.Command
	Size    *cobra.Command
	Clear   *cobra.Command
	Backup  *cobra.Command
	Restore *cobra.Command
	Bench   *cobra.Command

	// Configuration.
	opts        *sbtkv.Options
	compression sbtkv.Compression
	json        bool
	bench       benchConfig
}

func newDB(opts *sbtkv.Options) *dbT {
	d := &dbT{opts: opts}

	d.Root = &cobra.Command{
		Use:   "db",
		Short: "DB introspection tools",
	}
	d.Insert = &cobra.Command{
		Use:   "insert <file> <key> <value>",
		Short: "insert or overwrite a key",
		Long: `
Insert a key, overwriting any existing value. The value is given as JSON. Keys
may be prefixed with hex: or raw:.
`,
		Args: cobra.ExactArgs(3),
		Run:  d.runInsert,
	}
	d.Get = &cobra.Command{
		Use:   "get <file> <key>",
		Short: "print the value of a key",
		Args:  cobra.ExactArgs(2),
		Run:   d.runGet,
	}
	d.Update = &cobra.Command{
		Use:   "update <file> <key> <value>",
		Short: "overwrite an existing key",
		Long: `
Overwrite the value of an existing key. Fails if the key does not exist.
`,
		Args: cobra.ExactArgs(3),
		Run:  d.runUpdate,
	}
	d.Delete = &cobra.Command{
		Use:   "delete <file> <key>",
		Short: "delete a key",
		Args:  cobra.ExactArgs(2),
		Run:   d.runDelete,
	}
	d.Scan = &cobra.Command{
		Use:   "scan <file>",
		Short: "print all records in key order",
		Args:  cobra.ExactArgs(1),
		Run:   d.runScan,
	}
	d.Size = &cobra.Command{
		Use:   "size <file>",
		Short: "print the number of keys",
		Args:  cobra.ExactArgs(1),
		Run:   d.runSize,
	}
	d.Clear = &cobra.Command{
		Use:   "clear <file>",
		Short: "remove every key and the snapshot file",
		Args:  cobra.ExactArgs(1),
		Run:   d.runClear,
	}
	d.Backup = &cobra.Command{
		Use:   "backup <file> <dest>",
		Short: "copy the snapshot file to dest",
		Args:  cobra.ExactArgs(2),
		Run:   d.runBackup,
	}
	d.Restore = &cobra.Command{
		Use:   "restore <file> <source>",
		Short: "replace the snapshot file with a backup",
		Long: `
Copy source over the snapshot file and load it. A source that is not a valid
snapshot leaves an empty DB.
`,
		Args: cobra.ExactArgs(2),
		Run:  d.runRestore,
	}
	d.Bench = &cobra.Command{
		Use:   "bench <file>",
		Short: "measure insert and search latency",
		Long: `
Insert random keys into the DB one at a time, then search for each of them,
and print latency percentiles for both. Every insert rewrites the snapshot, so
insert latency grows with the number of keys; the growth is plotted.
`,
		Args: cobra.ExactArgs(1),
		Run:  d.runBench,
	}

	d.Root.AddCommand(d.Insert, d.Get, d.Update, d.Delete, d.Scan, d.Size, d.Clear,
		d.Backup, d.Restore, d.Bench)

	for _, cmd := range []*cobra.Command{d.Insert, d.Update, d.Delete, d.Restore, d.Bench} {
		cmd.Flags().Var(
			compressionFlag{&d.compression}, "compression",
			"compression of rewritten snapshots (none, snappy, zstd or minlz)")
	}
	d.Get.Flags().BoolVar(
		&d.json, "json", false, "print the value as JSON")
	d.Scan.Flags().BoolVar(
		&d.json, "json", false, "print values as JSON")
	d.Bench.Flags().IntVarP(
		&d.bench.numOps, "num-ops", "n", 1000, "number of keys to insert")
	d.Bench.Flags().Uint64Var(
		&d.bench.seed, "seed", 1, "random seed for keys and values")
	d.Bench.Flags().IntVar(
		&d.bench.valueSize, "value", 16, "size of the inserted values in bytes")
	d.Bench.Flags().Float64Var(
		&d.bench.rate, "rate", 0, "maximum inserts per second (0 for unlimited)")
	return d
}

func (d *dbT) openDB(path string) (*sbtkv.DB, error) {
	opts := d.opts.Clone()
	opts.Compression = d.compression
	return sbtkv.Open(path, opts)
}

func (d *dbT) formatValue(v sbtkv.Value) string {
	if !d.json {
		return v.String()
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s>", err)
	}
	return string(b)
}

func (d *dbT) runInsert(cmd *cobra.Command, args []string) {
	db, err := d.openDB(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	key, err := parseKey(args[1])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	val, err := parseValue(args[2])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	db.Insert(key, val)
}

func (d *dbT) runGet(cmd *cobra.Command, args []string) {
	db, err := d.openDB(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	key, err := parseKey(args[1])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	v, err := db.Get(key)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %s\n", formatKey(key), err)
		osExit(1)
		return
	}
	fmt.Fprintf(stdout, "%s\n", d.formatValue(v))
}

func (d *dbT) runUpdate(cmd *cobra.Command, args []string) {
	db, err := d.openDB(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	key, err := parseKey(args[1])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	val, err := parseValue(args[2])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	if !db.Update(key, val) {
		fmt.Fprintf(stderr, "%s: %s\n", formatKey(key), sbtkv.ErrNotFound)
		osExit(1)
	}
}

func (d *dbT) runDelete(cmd *cobra.Command, args []string) {
	db, err := d.openDB(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	key, err := parseKey(args[1])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	if !db.Delete(key) {
		fmt.Fprintf(stderr, "%s: %s\n", formatKey(key), sbtkv.ErrNotFound)
		osExit(1)
	}
}

func (d *dbT) runScan(cmd *cobra.Command, args []string) {
	db, err := d.openDB(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}

	tbl := tablewriter.NewWriter(stdout)
	tbl.SetAutoFormatHeaders(false)
	tbl.SetAutoWrapText(false)
	tbl.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	tbl.SetAlignment(tablewriter.ALIGN_LEFT)
	tbl.SetHeader([]string{"KEY", "KIND", "VALUE"})
	for k, v := range db.All() {
		tbl.Append([]string{formatKey(k), v.Kind().String(), d.formatValue(v)})
	}
	tbl.Render()
	fmt.Fprintf(stdout, "%d keys\n", db.Size())
}

func (d *dbT) runSize(cmd *cobra.Command, args []string) {
	db, err := d.openDB(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	fmt.Fprintf(stdout, "%d\n", db.Size())
}

func (d *dbT) runClear(cmd *cobra.Command, args []string) {
	db, err := d.openDB(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	n := db.Size()
	db.Clear()
	fmt.Fprintf(stdout, "cleared %d keys\n", n)
}

func (d *dbT) openAdapter(path string) (*sbtkv.Adapter, error) {
	opts := d.opts.Clone()
	opts.Compression = d.compression
	return sbtkv.NewAdapter(path, opts)
}

func (d *dbT) runBackup(cmd *cobra.Command, args []string) {
	a, err := d.openAdapter(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	if err := a.Backup(args[1]); err != nil {
		osExit(1)
		return
	}
	fmt.Fprintf(stdout, "backed up %d keys to %s\n", a.Size(), args[1])
}

func (d *dbT) runRestore(cmd *cobra.Command, args []string) {
	a, err := d.openAdapter(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return
	}
	if err := a.Restore(args[1]); err != nil {
		osExit(1)
		return
	}
	fmt.Fprintf(stdout, "restored %d keys from %s\n", a.Size(), args[1])
}
