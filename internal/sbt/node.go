// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sbt

// Node is a vertex of a Tree. A Node exclusively owns its children. Nodes are
// exposed read-only so that tools can render the tree's shape; they must not
// be retained across mutations of the owning Tree.
type Node[V any] struct {
	key         string
	value       V
	left, right *Node[V]
	// size is the number of nodes in the subtree rooted here:
	// 1 + size(left) + size(right).
	size int
}

// Key returns the node's key.
func (n *Node[V]) Key() string { return n.key }

// Value returns the node's value.
func (n *Node[V]) Value() V { return n.value }

// Left returns the left child, or nil.
func (n *Node[V]) Left() *Node[V] { return n.left }

// Right returns the right child, or nil.
func (n *Node[V]) Right() *Node[V] { return n.right }

// Size returns the number of nodes in the subtree rooted at n. Size of a nil
// node is 0.
func (n *Node[V]) Size() int {
	if n == nil {
		return 0
	}
	return n.size
}

func (n *Node[V]) updateSize() {
	n.size = 1 + n.left.Size() + n.right.Size()
}

// rotateLeft promotes n.right into n's position and returns it. n takes the
// promoted node's old left subtree as its right child.
func rotateLeft[V any](n *Node[V]) *Node[V] {
	r := n.right
	n.right = r.left
	r.left = n
	// n is now the deeper of the two.
	n.updateSize()
	r.updateSize()
	return r
}

// rotateRight is the mirror image of rotateLeft.
func rotateRight[V any](n *Node[V]) *Node[V] {
	l := n.left
	n.left = l.right
	l.right = n
	n.updateSize()
	l.updateSize()
	return l
}

// maintain restores the size-balance invariant at n, whose children are
// assumed to satisfy it, and returns the new subtree root. The cases are
// tested in a fixed order and the first match wins:
//
//  1. size(left.left) > size(right): rotate n right.
//  2. size(left.right) > size(right): rotate n.left left, then n right.
//  3. size(right.right) > size(left): rotate n left.
//  4. size(right.left) > size(left): rotate n.right right, then n left.
//
// A rotation can leave the demoted node or the new root out of balance, so
// after any rotation both children and the new root are maintained again.
// When no case matches the subtree is returned unchanged.
func maintain[V any](n *Node[V]) *Node[V] {
	if n == nil {
		return nil
	}
	ls, rs := n.left.Size(), n.right.Size()
	switch {
	case n.left != nil && n.left.left.Size() > rs:
		n = rotateRight(n)
	case n.left != nil && n.left.right.Size() > rs:
		n.left = rotateLeft(n.left)
		n = rotateRight(n)
	case n.right != nil && n.right.right.Size() > ls:
		n = rotateLeft(n)
	case n.right != nil && n.right.left.Size() > ls:
		n.right = rotateRight(n.right)
		n = rotateLeft(n)
	default:
		return n
	}
	n.left = maintain(n.left)
	n.right = maintain(n.right)
	return maintain(n)
}
