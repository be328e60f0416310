// Copyright (c) 2025 Daniel Anker Hermansen
// SPDX-License-Identifier: MIT

// Package ordermaintenance implements the Dietz-Sleator two-level
// list-labeling structure: an online total order that supports
// O(1) amortized insert-after and O(1) order comparison.
//
// A [List] is an outer ring of super-nodes (circular, singly linked,
// with a distinguished base) each holding an inner singly linked
// chain of up to 64 nodes. [PartialVersion] is a handle into one
// node of one list; comparing PartialVersions from different lists
// is meaningless and not detected, per the structure's failure model.
package ordermaintenance

import "github.com/Daniel-Anker-Hermansen/persistency/internal/arena"

// maxGroupSize is the point at which a super-node is split. Using
// ceiling division for intra-group labels and treating an absent
// successor as (2^64 - 1) yields a unique midpoint for up to 64
// slots, one more than a plain floor-division scheme would allow.
const maxGroupSize = 64

// tailRelabelCount is half of maxGroupSize: the inner list is cut
// after the 32nd node, and both halves are relabeled to evenly
// spaced multiples of 2^32.
const tailRelabelCount = maxGroupSize / 2

// relabelStep is 2^32, the spacing used when a super-node's inner
// list is rebuilt after a split.
const relabelStep = uint64(1) << 32

// list is the arena-backed home of one totally ordered version
// sequence. Every PartialVersion produced from the same list
// ultimately traces back to one *list value; PartialVersions from
// different lists must never be compared.
type list struct {
	size       int
	base       *superNode
	superArena *arena.Arena[superNode]
	nodeArena  *arena.Arena[node]
}

// superNode is an outer-ring group of up to maxGroupSize nodes.
type superNode struct {
	parent *list
	next   *superNode // ring: always non-nil, self-loop for a singleton ring
	size   int
	value  uint64
	list   *node // head of the intra-group chain
}

// node is one intra-group element; next is nil for the group tail.
type node struct {
	parent *superNode
	next   *node
	value  uint64
}

// PartialVersion is a handle into one node of one ordermaintenance
// list. It is the raw ordering primitive beneath [Version].
type PartialVersion struct {
	node *node
}

// New allocates a fresh list containing exactly one super-node (the
// base) and one node, and returns a handle to that node. Labels
// start at 0.
func New() PartialVersion {
	l := &list{
		superArena: arena.New[superNode](),
		nodeArena:  arena.New[node](),
	}
	l.size = 1

	sn := l.superArena.Alloc()
	n := l.nodeArena.Alloc()

	*n = node{parent: sn, next: nil, value: 0}
	*sn = superNode{parent: l, next: sn, size: 1, value: 0, list: n}

	l.base = sn

	return PartialVersion{node: n}
}

// InsertAfter inserts a new node immediately after v in its list and
// returns a handle to it. The new node initially belongs to the same
// super-node as v; if that pushes the super-node to maxGroupSize
// members it is split before InsertAfter returns.
func (v PartialVersion) InsertAfter() PartialVersion {
	self := v.node
	next := self.next

	prevValue := self.value
	nextValue := uint64(1<<64 - 1) // treat an absent successor as u64::MAX
	if next != nil {
		nextValue = next.value
	}

	value := prevValue + ceilDiv2(nextValue-prevValue)

	parent := self.parent
	newNode := parent.parent.nodeArena.Alloc()
	*newNode = node{parent: parent, next: next, value: value}
	self.next = newNode

	parent.size++
	if parent.size == maxGroupSize {
		splitSuper(parent)
	}

	parent.parent.size++

	return PartialVersion{node: newNode}
}

// ceilDiv2 returns ceil(a / 2) without intermediate overflow.
func ceilDiv2(a uint64) uint64 {
	return a/2 + a%2
}

// splitSuper splits a super-node that has just reached maxGroupSize
// members. A new super-node is spliced in immediately after `this`
// with a label at the wrapped midpoint between `this` and its
// successor; the inner list is cut after the 32nd node, and both
// halves are relabeled to evenly spaced multiples of 2^32 so that
// each side again has maximal room to grow.
func splitSuper(this *superNode) {
	next := this.next
	thisValue := this.value
	nextValue := next.value

	// label = this + ceil(((next - 1) - this) / 2), all wrapping.
	value := thisValue + ceilDiv2((nextValue-1)-thisValue)

	parent := this.parent
	newNode := parent.superArena.Alloc()
	*newNode = superNode{parent: parent, next: next, size: tailRelabelCount, value: value, list: nil}

	this.next = newNode
	this.size = tailRelabelCount

	head := this.list

	if value == thisValue {
		// Too dense a ring segment: the new super-node's label
		// collided with `this`'s own. Renumber before the
		// relabeled inner lists are attached.
		renumber(this)
	}

	newNode.list = splitInner(head, 0, newNode)
}

// renumber resolves a super-node label collision by walking the ring
// from the collided super-node while the span covered is smaller
// than j^2 (j = number of super-nodes walked, starting at 1), then
// redistributing labels evenly over the traversed arc. This bounds
// the amortized cost of collisions to O(log n).
func renumber(this *superNode) {
	j := uint64(1)
	thisValue := this.value
	next := this.next
	currentValue := next.value

	for currentValue-thisValue < j*j {
		next = next.next
		currentValue = next.value
		j++
	}

	interval := (currentValue - thisValue) / j

	current := this
	for i := uint64(0); i < j; i++ {
		current.value = thisValue + interval*i
		current = current.next
	}
}

// splitInner relabels the head-to-tail chain of a just-split
// super-node's inner list to evenly spaced multiples of relabelStep,
// cutting the chain after index tailRelabelCount-1 and reparenting
// the remainder to newParent via splitTail. It returns the head of
// the new super-node's inner list.
func splitInner(this *node, index uint64, newParent *superNode) *node {
	this.value = relabelStep * index
	next := this.next
	if next == nil {
		panic("order maintenance invariant violated: super-node reached split with fewer than 64 nodes")
	}

	if index == tailRelabelCount-1 {
		splitTail(next, 0, newParent)
		this.next = nil
		return next
	}
	return splitInner(next, index+1, newParent)
}

// splitTail relabels and reparents the tail half of a split
// super-node's inner list.
func splitTail(this *node, index uint64, newParent *superNode) {
	this.value = relabelStep * index
	this.parent = newParent

	if index < tailRelabelCount-1 {
		next := this.next
		if next == nil {
			panic("order maintenance invariant violated: tail half shorter than 32 nodes")
		}
		splitTail(next, index+1, newParent)
	}
}

// orderingValues returns the (major, minor) pair used for
// comparison: major is the wrapped distance of v's super-node from
// the list's base, minor is v's intra-group label.
func (v PartialVersion) orderingValues() (major, minor uint64) {
	parent := v.node.parent
	base := parent.parent.base
	major = parent.value - base.value // wrapping subtraction
	minor = v.node.value
	return major, minor
}

// Compare returns -1, 0, or 1 as v orders before, the same as, or
// after other. Both must come from the same list (directly, or
// transitively via InsertAfter); comparing PartialVersions from
// different lists is undefined and not detected.
func (v PartialVersion) Compare(other PartialVersion) int {
	vMajor, vMinor := v.orderingValues()
	oMajor, oMinor := other.orderingValues()

	switch {
	case vMajor != oMajor:
		if vMajor < oMajor {
			return -1
		}
		return 1
	case vMinor != oMinor:
		if vMinor < oMinor {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Less reports whether v orders strictly before other.
func (v PartialVersion) Less(other PartialVersion) bool {
	return v.Compare(other) < 0
}

// Equal reports whether v and other name the same node.
func (v PartialVersion) Equal(other PartialVersion) bool {
	return v.node == other.node
}
