// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package tool

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/sbtkv"
	"github.com/cockroachdb/sbtkv/internal/base"
	"github.com/cockroachdb/sbtkv/internal/sbt"
	"github.com/cockroachdb/sbtkv/internal/snapshot"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"
)

// snapshotT implements snapshot-file-level tools, including both configuration
// state and the commands themselves.
type snapshotT struct {
	Root  *cobra.Command
	Check *cobra.Command
	Dump  *cobra.Command

	// Configuration.
	opts   *sbtkv.Options
	values bool
}

func newSnapshot(opts *sbtkv.Options) *snapshotT {
	s := &snapshotT{opts: opts}

	s.Root = &cobra.Command{
		Use:   "snapshot",
		Short: "snapshot file introspection tools",
	}
	s.Check = &cobra.Command{
		Use:   "check <file>",
		Short: "verify checksum, encoding and tree invariants",
		Long: `
Verify the snapshot checksum and header, decode every pair, then rebuild the
tree exactly as opening the file would and verify its ordering, sizes and
balance.
`,
		Args: cobra.ExactArgs(1),
		Run:  s.runCheck,
	}
	s.Dump = &cobra.Command{
		Use:   "dump <file>",
		Short: "print the tree built from a snapshot",
		Long: `
Print the shape of the tree that opening the snapshot file produces. Each node
shows its key and subtree size; children are tagged L and R.
`,
		Args: cobra.ExactArgs(1),
		Run:  s.runDump,
	}

	s.Root.AddCommand(s.Check, s.Dump)
	s.Dump.Flags().BoolVar(
		&s.values, "values", false, "print values alongside keys")
	return s
}

// load reads and decodes the snapshot file, and replays its pairs into a
// tree in file order, the same way Open does.
func (s *snapshotT) load(path string) (snapshot.Header, *sbt.Tree[base.Value], error) {
	data, err := readFile(s.opts.FS, path)
	if err != nil {
		return snapshot.Header{}, nil, err
	}
	h, pairs, err := snapshot.Decode(data)
	if err != nil {
		return h, nil, errors.Wrapf(err, "decoding %q", path)
	}
	tree := sbt.New[base.Value]()
	for _, p := range pairs {
		tree.Insert(p.Key, p.Value)
	}
	return h, tree, nil
}

func (s *snapshotT) runCheck(cmd *cobra.Command, args []string) {
	path := args[0]
	data, err := readFile(s.opts.FS, path)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		osExit(1)
		return
	}
	h, _, err := snapshot.DecodeHeader(data)
	if err != nil {
		fmt.Fprintf(stdout, "%s: %s\n", path, err)
		osExit(1)
		return
	}
	fmt.Fprintf(stdout, "%s: version %d, %s compression, %d keys, %d body bytes, %d file bytes\n",
		path, h.Version, h.Compression, h.Count, h.BodyLen, len(data))

	_, tree, err := s.load(path)
	if err != nil {
		fmt.Fprintf(stdout, "%s\n", err)
		osExit(1)
		return
	}
	if err := tree.CheckInvariants(); err != nil {
		fmt.Fprintf(stdout, "tree: %s\n", err)
		osExit(1)
		return
	}
	fmt.Fprintf(stdout, "tree: %d keys, height %d\nOK\n", tree.Len(), tree.Height())
}

func (s *snapshotT) runDump(cmd *cobra.Command, args []string) {
	path := args[0]
	h, tree, err := s.load(path)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		osExit(1)
		return
	}
	out := treeprint.NewWithRoot(fmt.Sprintf("%s (%d keys, height %d, %s)",
		path, tree.Len(), tree.Height(), h.Compression))
	if root := tree.Root(); root != nil {
		s.addNode(out, root, "")
	}
	fmt.Fprint(stdout, out.String())
}

func (s *snapshotT) addNode(parent treeprint.Tree, n *sbt.Node[base.Value], side string) {
	label := fmt.Sprintf("%s (%d)", formatKey(n.Key()), n.Size())
	if s.values {
		label += " = " + n.Value().String()
	}
	if n.Left() == nil && n.Right() == nil {
		if side == "" {
			parent.AddNode(label)
		} else {
			parent.AddMetaNode(side, label)
		}
		return
	}
	var branch treeprint.Tree
	if side == "" {
		branch = parent.AddBranch(label)
	} else {
		branch = parent.AddMetaBranch(side, label)
	}
	if l := n.Left(); l != nil {
		s.addNode(branch, l, "L")
	}
	if r := n.Right(); r != nil {
		s.addNode(branch, r, "R")
	}
}
