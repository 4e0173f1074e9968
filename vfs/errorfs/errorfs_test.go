// Copyright 2023 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package errorfs

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/cockroachdb/crlib/crstrings"
	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/sbtkv/vfs"
	"github.com/stretchr/testify/require"
)

func TestInjectors(t *testing.T) {
	var sb strings.Builder
	datadriven.RunTest(t, "testdata/injectors", func(t *testing.T, td *datadriven.TestData) string {
		sb.Reset()
		switch td.Cmd {
		case "inject":
			dsl, ops, _ := strings.Cut(td.Input, "\n")
			inj, err := ParseInjectorFromDSL(dsl)
			if err != nil {
				return fmt.Sprintf("parse error: %s\n", err)
			}
			for l := range crstrings.LinesSeq(ops) {
				kind, path, _ := strings.Cut(l, " ")
				if err := inj.MaybeError(Op{Kind: parseOpKind(kind), Path: path}); err != nil {
					fmt.Fprintf(&sb, "%s %s: %s\n", kind, path, err)
				} else {
					fmt.Fprintf(&sb, "%s %s: ok\n", kind, path)
				}
			}
			return sb.String()
		default:
			return fmt.Sprintf("unrecognized command %q", td.Cmd)
		}
	})
}

func TestWrap(t *testing.T) {
	mem := vfs.NewMem()
	toggle := &Toggle{Injector: Writes(Always())}
	fs := Wrap(mem, toggle)
	require.Equal(t, vfs.FS(mem), fs.Unwrap())

	write := func(name, contents string) error {
		f, err := fs.Create(name)
		if err != nil {
			return err
		}
		if _, err := f.Write([]byte(contents)); err != nil {
			return errors.CombineErrors(err, f.Close())
		}
		return errors.CombineErrors(f.Sync(), f.Close())
	}

	require.NoError(t, write("a", "hello"))

	toggle.On()
	err := write("b", "world")
	require.ErrorIs(t, err, ErrInjected)
	_, err = mem.Stat("b")
	require.Error(t, err, "create should not have reached the wrapped FS")
	require.ErrorIs(t, fs.Remove("a"), ErrInjected)
	require.ErrorIs(t, fs.MkdirAll("dir", 0755), ErrInjected)

	// Reads still succeed.
	f, err := fs.Open("a")
	require.NoError(t, err)
	b, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.Equal(t, "hello", string(b))

	toggle.Off()
	require.NoError(t, fs.Rename("a", "c"))
	names, err := fs.List("")
	require.NoError(t, err)
	require.Equal(t, []string{"c"}, names)
}

func TestFailedWriteLeavesTruncatedFile(t *testing.T) {
	mem := vfs.NewMem()
	fs := Wrap(mem, Kinds(Always(), OpFileWrite))
	f, err := fs.Create("snap")
	require.NoError(t, err)
	_, err = f.Write([]byte("data"))
	require.ErrorIs(t, err, ErrInjected)
	require.NoError(t, f.Close())

	fi, err := mem.Stat("snap")
	require.NoError(t, err)
	require.Zero(t, fi.Size())
}

func TestOnIndex(t *testing.T) {
	ii := OnIndex(1, Always())
	require.Equal(t, int32(1), ii.Index())
	require.NoError(t, ii.MaybeError(Op{Kind: OpOpen}))
	require.ErrorIs(t, ii.MaybeError(Op{Kind: OpOpen}), ErrInjected)
	require.NoError(t, ii.MaybeError(Op{Kind: OpOpen}))
	require.Equal(t, "sync", OpFileSync.String())
	require.Equal(t, "OpKind(99)", OpKind(99).String())
}
