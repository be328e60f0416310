// Copyright (c) 2025 Daniel Anker Hermansen
// SPDX-License-Identifier: MIT

package persistency

import (
	"github.com/zyedidia/generic"

	"github.com/Daniel-Anker-Hermansen/persistency/internal/linkfabric"
)

// bstTag is the link fabric's tag type for a persistent binary search
// tree: two outgoing roles (LeftChild, RightChild) and their reverse
// (LeftParent, RightParent), forming the two tag pairs the fabric's
// twin bookkeeping needs.
type bstTag int

const (
	leftChild bstTag = iota
	rightChild
	leftParent
	rightParent
)

// Reverse implements linkfabric.LinkTag's involution: LeftChild and
// LeftParent mirror each other, as do RightChild and RightParent.
func (t bstTag) Reverse() bstTag {
	switch t {
	case leftChild:
		return leftParent
	case rightChild:
		return rightParent
	case leftParent:
		return leftChild
	case rightParent:
		return rightChild
	default:
		panic("unreachable")
	}
}

// bstTagPairs is the number of distinct tag pairs a BST node uses
// (LeftChild/LeftParent, RightChild/RightParent); the link fabric
// requires capacity >= 2 * this count.
const bstTagPairs = 2

// bstNode is the payload stored in each link fabric node: just the key.
type bstNode[T any] struct {
	value T
}

// BST is a fully persistent, unbalanced binary search tree: every
// Insert is versioned, and Contains can be asked about any version
// ever produced. It is a thin client of the node-copying link fabric;
// worst-case depth is O(n) since the tree never rebalances.
type BST[T generic.Ordered] struct {
	fabric *linkfabric.Fabric[bstNode[T], bstTag]
	root   *linkfabric.Node[bstNode[T], bstTag]
}

// NewBST returns an empty persistent binary search tree with no link
// fabric slack beyond the structural minimum.
func NewBST[T generic.Ordered]() *BST[T] {
	return NewBSTWithCapacity[T](0)
}

// NewBSTWithCapacity returns an empty persistent binary search tree
// whose per-node link fabric capacity is at least capacityHint,
// rounded up to the structural floor of 2*bstTagPairs if
// capacityHint asks for less (or none, as NewBST does). Slack beyond
// the floor trades memory for fewer future node copies: a node only
// needs copyAndPrepare once every one of its capacity slots is
// occupied.
func NewBSTWithCapacity[T generic.Ordered](capacityHint int) *BST[T] {
	capacity := generic.Max(2*bstTagPairs, capacityHint)
	return &BST[T]{
		fabric: linkfabric.New[bstNode[T], bstTag](capacity, cloneValue[bstNode[T]]),
	}
}

// Insert adds value to the tree in a new write at version v. If v is
// not a fresh version (i.e. an ancestor already holds a value at the
// position value would occupy), descent continues from that ancestor
// exactly as a single-version BST insert would.
func (b *BST[T]) Insert(value T, v Version) {
	if b.root == nil {
		b.root = b.fabric.NewNode(bstNode[T]{value: value})
		return
	}
	insertNode(b.fabric, b.root, value, v)
	b.root = b.root.Resolve()
}

func insertNode[T generic.Ordered](f *linkfabric.Fabric[bstNode[T], bstTag], n *linkfabric.Node[bstNode[T], bstTag], value T, v Version) {
	n = n.Resolve()

	tag := rightChild
	if value < n.Value.value {
		tag = leftChild
	}

	if child, ok := f.Get(n, tag, v); ok {
		insertNode(f, child, value, v)
		return
	}

	f.Add(n, tag, f.NewNode(bstNode[T]{value: value}), v, false)
}

// Contains reports whether value was inserted at v or at some ancestor
// of v.
func (b *BST[T]) Contains(value T, v Version) bool {
	if b.root == nil {
		return false
	}
	return containsNode(b.fabric, b.root, value, v)
}

func containsNode[T generic.Ordered](f *linkfabric.Fabric[bstNode[T], bstTag], n *linkfabric.Node[bstNode[T], bstTag], value T, v Version) bool {
	n = n.Resolve()

	switch {
	case value == n.Value.value:
		return true
	case value < n.Value.value:
		child, ok := f.Get(n, leftChild, v)
		return ok && containsNode(f, child, value, v)
	default:
		child, ok := f.Get(n, rightChild, v)
		return ok && containsNode(f, child, value, v)
	}
}
