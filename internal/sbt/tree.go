// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package sbt implements a Size-Balanced Tree: a binary search tree over
// string keys that rebalances by comparing cached subtree sizes rather than
// heights. For every node the tree maintains
//
//	size(left.left)   <= size(right)
//	size(left.right)  <= size(right)
//	size(right.right) <= size(left)
//	size(right.left)  <= size(left)
//
// which bounds the height by O(log n). Insert and Delete recompute sizes and
// rebalance on the way back up the recursion, so every ancestor of the
// modified position is checked.
//
// A Tree is not safe for concurrent use.
package sbt

import (
	"fmt"
	"iter"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/sbtkv/internal/invariants"
)

// Item is a key/value pair produced by in-order enumeration.
type Item[V any] struct {
	Key   string
	Value V
}

// Tree is a Size-Balanced Tree mapping string keys to values of type V. Keys
// are ordered by byte-wise string comparison. The zero value is an empty tree
// ready for use.
type Tree[V any] struct {
	root *Node[V]
}

// New returns an empty tree.
func New[V any]() *Tree[V] {
	return &Tree[V]{}
}

// Root returns the root node, or nil if the tree is empty.
func (t *Tree[V]) Root() *Node[V] {
	return t.root
}

// Len returns the number of keys in the tree.
func (t *Tree[V]) Len() int {
	return t.root.Size()
}

// Clear removes all keys.
func (t *Tree[V]) Clear() {
	t.root = nil
}

// Insert stores value under key, overwriting any existing value in place.
// It returns true if the key was not previously present.
func (t *Tree[V]) Insert(key string, value V) (added bool) {
	t.root = insert(t.root, key, value, &added)
	invariants.Check(t.CheckInvariants)
	return added
}

func insert[V any](n *Node[V], key string, value V, added *bool) *Node[V] {
	if n == nil {
		*added = true
		return &Node[V]{key: key, value: value, size: 1}
	}
	switch {
	case key < n.key:
		n.left = insert(n.left, key, value, added)
	case key > n.key:
		n.right = insert(n.right, key, value, added)
	default:
		// Overwrites leave the shape and sizes untouched.
		n.value = value
		return n
	}
	n.updateSize()
	return maintain(n)
}

// Delete removes key from the tree. It returns true if the key was present.
func (t *Tree[V]) Delete(key string) (found bool) {
	t.root = remove(t.root, key, &found)
	invariants.Check(t.CheckInvariants)
	return found
}

func remove[V any](n *Node[V], key string, found *bool) *Node[V] {
	if n == nil {
		return nil
	}
	switch {
	case key < n.key:
		n.left = remove(n.left, key, found)
	case key > n.key:
		n.right = remove(n.right, key, found)
	default:
		*found = true
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		// Two children: take over the in-order successor's entry and delete
		// the successor from the right subtree.
		succ := n.right
		for succ.left != nil {
			succ = succ.left
		}
		n.key, n.value = succ.key, succ.value
		n.right = remove(n.right, succ.key, found)
	}
	n.updateSize()
	return maintain(n)
}

// Search returns the value stored under key.
func (t *Tree[V]) Search(key string) (V, bool) {
	if n := t.find(key); n != nil {
		return n.value, true
	}
	var zero V
	return zero, false
}

// Update overwrites the value stored under key. Unlike Insert it never
// creates a key; it returns false if key is absent.
func (t *Tree[V]) Update(key string, value V) bool {
	n := t.find(key)
	if n == nil {
		return false
	}
	n.value = value
	return true
}

func (t *Tree[V]) find(key string) *Node[V] {
	n := t.root
	for n != nil {
		switch {
		case key < n.key:
			n = n.left
		case key > n.key:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

// Min returns the smallest key and its value.
func (t *Tree[V]) Min() (string, V, bool) {
	n := t.root
	if n == nil {
		var zero V
		return "", zero, false
	}
	for n.left != nil {
		n = n.left
	}
	return n.key, n.value, true
}

// Max returns the largest key and its value.
func (t *Tree[V]) Max() (string, V, bool) {
	n := t.root
	if n == nil {
		var zero V
		return "", zero, false
	}
	for n.right != nil {
		n = n.right
	}
	return n.key, n.value, true
}

// All returns an iterator over the tree's entries in ascending key order.
// Every call to the returned function starts a fresh traversal. The tree must
// not be mutated while an iteration is in progress.
func (t *Tree[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		inorder(t.root, yield)
	}
}

func inorder[V any](n *Node[V], yield func(string, V) bool) bool {
	for n != nil {
		if !inorder(n.left, yield) || !yield(n.key, n.value) {
			return false
		}
		n = n.right
	}
	return true
}

// Items returns all entries in ascending key order.
func (t *Tree[V]) Items() []Item[V] {
	items := make([]Item[V], 0, t.Len())
	for k, v := range t.All() {
		items = append(items, Item[V]{Key: k, Value: v})
	}
	return items
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (t *Tree[V]) Height() int {
	return height(t.root)
}

func height[V any](n *Node[V]) int {
	if n == nil {
		return 0
	}
	return 1 + max(height(n.left), height(n.right))
}

// CheckInvariants verifies key ordering, cached subtree sizes and the
// size-balance property of every node.
func (t *Tree[V]) CheckInvariants() error {
	_, err := checkNode(t.root, nil, nil)
	return err
}

func checkNode[V any](n *Node[V], lower, upper *string) (int, error) {
	if n == nil {
		return 0, nil
	}
	if lower != nil && n.key <= *lower {
		return 0, errors.AssertionFailedf("key %q is not above %q", n.key, *lower)
	}
	if upper != nil && n.key >= *upper {
		return 0, errors.AssertionFailedf("key %q is not below %q", n.key, *upper)
	}
	ls, err := checkNode(n.left, lower, &n.key)
	if err != nil {
		return 0, err
	}
	rs, err := checkNode(n.right, &n.key, upper)
	if err != nil {
		return 0, err
	}
	if n.size != 1+ls+rs {
		return 0, errors.AssertionFailedf("node %q: cached size %d, actual %d", n.key, n.size, 1+ls+rs)
	}
	if n.left != nil && (n.left.left.Size() > rs || n.left.right.Size() > rs) {
		return 0, errors.AssertionFailedf("node %q: left grandchildren (%d, %d) outweigh right subtree (%d)",
			n.key, n.left.left.Size(), n.left.right.Size(), rs)
	}
	if n.right != nil && (n.right.right.Size() > ls || n.right.left.Size() > ls) {
		return 0, errors.AssertionFailedf("node %q: right grandchildren (%d, %d) outweigh left subtree (%d)",
			n.key, n.right.left.Size(), n.right.right.Size(), ls)
	}
	return n.size, nil
}

// String renders the tree's shape, one node per line in pre-order, indented
// by depth. Children are prefixed with L or R and every node is followed by
// its subtree size.
func (t *Tree[V]) String() string {
	if t.root == nil {
		return "(empty)\n"
	}
	var b strings.Builder
	formatNode(&b, t.root, 0, "")
	return b.String()
}

func formatNode[V any](b *strings.Builder, n *Node[V], depth int, side string) {
	if n == nil {
		return
	}
	fmt.Fprintf(b, "%s%s%s [%d]\n", strings.Repeat("  ", depth), side, n.key, n.size)
	formatNode(b, n.left, depth+1, "L ")
	formatNode(b, n.right, depth+1, "R ")
}
