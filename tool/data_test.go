// Copyright 2019 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/sbtkv/vfs"
	"github.com/spf13/cobra"
)

// runTests runs the datadriven files matching path. Each file gets its own
// in-memory filesystem that persists across its commands. Every command is a
// tool invocation whose arguments are the command arguments followed by the
// whitespace-separated input, except for:
//
//	truncate <file> <n>   truncate file to n bytes
func runTests(t *testing.T, path string) {
	paths, err := filepath.Glob(path)
	if err != nil {
		t.Fatal(err)
	}
	root := filepath.Dir(path)
	for {
		next := filepath.Dir(root)
		if next == "." {
			break
		}
		root = next
	}

	for _, path := range paths {
		name, err := filepath.Rel(root, path)
		if err != nil {
			t.Fatal(err)
		}
		t.Run(name, func(t *testing.T) {
			fs := vfs.NewMem()
			datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
				args := []string{d.Cmd}
				for _, arg := range d.CmdArgs {
					args = append(args, arg.String())
				}
				args = append(args, strings.Fields(d.Input)...)

				if d.Cmd == "truncate" {
					return truncate(t, fs, args[1:])
				}

				var buf bytes.Buffer
				stdout = &buf
				stderr = &buf
				osExit = func(int) {}

				defer func() {
					stdout = os.Stdout
					stderr = os.Stderr
					osExit = os.Exit
				}()

				c := &cobra.Command{}
				c.AddCommand(New(FS(fs)).Commands...)
				c.SetArgs(args)
				c.SetOutput(&buf)
				if err := c.Execute(); err != nil {
					return err.Error()
				}
				return buf.String()
			})
		})
	}
}

func truncate(t *testing.T, fs vfs.FS, args []string) string {
	if len(args) != 2 {
		t.Fatalf("truncate <file> <n>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		t.Fatal(err)
	}
	data, err := readFile(fs, args[0])
	if err != nil {
		return err.Error()
	}
	f, err := fs.Create(args[0])
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write(data[:min(n, len(data))]); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return fmt.Sprintf("%d -> %d bytes\n", len(data), min(n, len(data)))
}
