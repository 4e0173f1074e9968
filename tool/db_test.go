// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"bytes"
	"os"
	"testing"

	"github.com/cockroachdb/sbtkv"
	"github.com/cockroachdb/sbtkv/internal/base"
	"github.com/cockroachdb/sbtkv/vfs"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestDB(t *testing.T) {
	runTests(t, "testdata/db")
}

func TestSnapshot(t *testing.T) {
	runTests(t, "testdata/snapshot")
}

// run executes a single tool invocation and returns its combined output and
// the exit code it requested, or -1 if it did not call osExit.
func run(t *testing.T, tool *T, args ...string) (string, int) {
	var buf bytes.Buffer
	stdout = &buf
	stderr = &buf
	code := -1
	osExit = func(c int) { code = c }
	defer func() {
		stdout = os.Stdout
		stderr = os.Stderr
		osExit = os.Exit
	}()

	c := &cobra.Command{}
	c.AddCommand(tool.Commands...)
	c.SetArgs(args)
	c.SetOutput(&buf)
	require.NoError(t, c.Execute())
	return buf.String(), code
}

func TestBackupRestoreFailures(t *testing.T) {
	fs := vfs.NewMem()
	log := &base.InMemLogger{}

	// Nothing has been written yet, so there is nothing to back up.
	out, code := run(t, New(FS(fs), Logger(log)), "db", "backup", "t.sbt", "t.bak")
	require.Equal(t, 1, code)
	require.Empty(t, out)
	require.Contains(t, log.String(), "backup of t.sbt to t.bak failed")

	_, code = run(t, New(FS(fs), Logger(log)), "db", "insert", "t.sbt", "k", `"v"`)
	require.Equal(t, -1, code)

	log.Reset()
	_, code = run(t, New(FS(fs), Logger(log)), "db", "restore", "t.sbt", "missing.bak")
	require.Equal(t, 1, code)
	require.Contains(t, log.String(), "restore of t.sbt from missing.bak failed")

	// The failed restore left the existing snapshot in place.
	out, _ = run(t, New(FS(fs), Logger(log)), "db", "get", "t.sbt", "k")
	require.Equal(t, "\"v\"\n", out)
}

func TestRestoreUndecodableBackup(t *testing.T) {
	fs := vfs.NewMem()
	log := &base.InMemLogger{}
	f, err := fs.Create("garbage")
	require.NoError(t, err)
	_, err = f.Write([]byte("this is not a snapshot file at all"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, code := run(t, New(FS(fs), Logger(log)), "db", "insert", "t.sbt", "k", "1")
	require.Equal(t, -1, code)
	out, code := run(t, New(FS(fs), Logger(log)), "db", "restore", "t.sbt", "garbage")
	require.Equal(t, -1, code)
	require.Equal(t, "restored 0 keys from garbage\n", out)
	require.Contains(t, log.String(), "loading snapshot t.sbt failed; starting empty")
}

func TestInvalidArguments(t *testing.T) {
	fs := vfs.NewMem()
	out, _ := run(t, New(FS(fs)), "db", "insert", "t.sbt", "hex:zz", "1")
	require.Contains(t, out, `invalid key "hex:zz"`)
	out, _ = run(t, New(FS(fs)), "db", "insert", "t.sbt", "k", "{oops")
	require.Contains(t, out, `invalid value "{oops"`)
	out, _ = run(t, New(FS(fs)), "db", "size", "t.sbt")
	require.Equal(t, "0\n", out)
}

func TestCompressionFlag(t *testing.T) {
	fs := vfs.NewMem()
	for _, c := range []string{"none", "snappy", "zstd", "minlz"} {
		_, code := run(t, New(FS(fs)), "db", "insert", "t.sbt", "k-"+c, "[1,2,3]", "--compression", c)
		require.Equal(t, -1, code)
		out, _ := run(t, New(FS(fs)), "snapshot", "check", "t.sbt")
		require.Contains(t, out, c+" compression")
		require.Contains(t, out, "OK\n")
	}
	out, _ := run(t, New(FS(fs)), "db", "size", "t.sbt")
	require.Equal(t, "4\n", out)

	var buf bytes.Buffer
	c := &cobra.Command{}
	c.AddCommand(New(FS(fs)).Commands...)
	c.SetArgs([]string{"db", "insert", "t.sbt", "k", "1", "--compression", "lz4"})
	c.SetOutput(&buf)
	require.ErrorContains(t, c.Execute(), `unknown compression "lz4"`)
}

func TestBench(t *testing.T) {
	fs := vfs.NewMem()
	out, code := run(t, New(FS(fs)), "db", "bench", "b.sbt", "-n", "200", "--value", "10")
	require.Equal(t, -1, code, out)
	require.Contains(t, out, "existing keys 0\n")
	require.Contains(t, out, "____optype__elapsed")
	require.Contains(t, out, "    insert ")
	require.Contains(t, out, "    search ")
	require.Contains(t, out, "keys 200, last snapshot ")
	require.Contains(t, out, "averaged over groups of 4 keys")

	db, err := sbtkv.Open("b.sbt", &sbtkv.Options{FS: fs, Logger: base.NoopLogger{}})
	require.NoError(t, err)
	require.Equal(t, 200, db.Size())
	require.NoError(t, db.CheckInvariants())

	out, code = run(t, New(FS(fs)), "db", "bench", "b.sbt", "-n", "0")
	require.Equal(t, 1, code)
	require.Contains(t, out, "--num-ops must be positive")

	out, code = run(t, New(FS(fs)), "db", "bench", "r.sbt", "-n", "20", "--rate", "100000")
	require.Equal(t, -1, code, out)
	require.Contains(t, out, "limiting inserts to 100000.0/s\n")
	require.Contains(t, out, "averaged over groups of 1 keys")

	out, code = run(t, New(FS(fs)), "db", "bench", "r.sbt", "--rate", "-1")
	require.Equal(t, 1, code)
	require.Contains(t, out, "--rate must not be negative")

	out, code = run(t, New(FS(fs)), "db", "bench", "v.sbt", "-n", "5", "--value", "-1")
	require.Equal(t, 1, code)
	require.Contains(t, out, "--value must not be negative")
	require.NotContains(t, out, "existing keys")
}

func TestKeyFormatting(t *testing.T) {
	for _, k := range []string{"a", "user:1", "", "\x00\xff", "two words", "hex:41", "raw:x", "日本"} {
		s := formatKey(k)
		got, err := parseKey(s)
		require.NoError(t, err)
		require.Equal(t, k, got, "formatted as %q", s)
	}
	require.Equal(t, "hex:00ff", formatKey("\x00\xff"))
	require.Equal(t, "raw:raw:x", formatKey("raw:x"))

	got, err := parseKey("raw:hex:41")
	require.NoError(t, err)
	require.Equal(t, "hex:41", got)
}
