// Copyright (c) 2025 Daniel Anker Hermansen
// SPDX-License-Identifier: MIT

// Package linkfabric implements the Driscoll-Sarnak-Sleator-Tarjan
// node-copying method for making an ephemeral pointer structure fully
// persistent: every node carries a fixed-capacity array of fat link
// slots plus reverse links, and a node is copied (never mutated past
// capacity) when its slots are exhausted.
package linkfabric

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/Daniel-Anker-Hermansen/persistency/internal/arena"
	"github.com/Daniel-Anker-Hermansen/persistency/internal/ordermaintenance"
)

// Version is the version type all link writes and reads are
// versioned against. It is a type alias so the link fabric and its
// clients share one concrete Version without an import cycle.
type Version = ordermaintenance.Version

// LinkTag is the fixed reverse involution a tag type must provide:
// Reverse(Reverse(t)) == t. Concrete structures (the persistent BST's
// LeftChild/RightChild/LeftParent/RightParent) implement this.
type LinkTag[T any] interface {
	Reverse() T
}

// Tag is the full constraint on a fabric's tag type: comparable (so
// slots can be matched by tag) and self-reversing.
type Tag[T any] interface {
	comparable
	LinkTag[T]
}

// slot is one fat link: a typed role, the version at which it was
// written, the target node, and a twin pointer to the paired reverse
// slot inside the target node. A zero slot is the empty state;
// occupancy is tracked out-of-band by Node.occupied so a slot can be
// told apart from a real link written at the zero Version.
type slot[V any, T Tag[T]] struct {
	tag     T
	version Version
	target  *Node[V, T]
	twin    *slot[V, T]
}

// Node is one node of a node-copying persistent structure: an owned
// payload, a fixed-capacity array of link slots, and a copy pointer
// to this node's forwarded successor once its slots have been
// exhausted and it has been superseded.
type Node[V any, T Tag[T]] struct {
	Value V

	slots    []slot[V, T]
	occupied *bitset.BitSet
	next     *Node[V, T] // forwarding pointer to this node's live successor
}

// Resolve follows n's copy-forwarding chain to the current live node.
// Any traversal that might cross a copy boundary must resolve through
// this before reading or writing slots.
func (n *Node[V, T]) Resolve() *Node[V, T] {
	for n.next != nil {
		n = n.next
	}
	return n
}

func (n *Node[V, T]) freeSlotIndex() (int, bool) {
	for i := 0; i < len(n.slots); i++ {
		if !n.occupied.Test(uint(i)) {
			return i, true
		}
	}
	return 0, false
}

// Fabric mints and operates on Nodes sharing one slot capacity C and
// one clone function for the payload type. C must be at least twice
// the number of distinct tags in use. C is not checked when the
// fabric is built; copyAndPrepare panics if a freshly copied node has
// no free slot for a slot it moves in place (a fatal invariant breach,
// never a recoverable condition).
type Fabric[V any, T Tag[T]] struct {
	capacity int
	clone    func(V) V
	arena    *arena.Arena[Node[V, T]]
}

// New returns a Fabric with the given slot capacity and payload clone
// function. clone is called whenever a node must be duplicated
// (node-copying persistence); it should deep-copy V exactly as the
// structure's semantics require.
func New[V any, T Tag[T]](capacity int, clone func(V) V) *Fabric[V, T] {
	return &Fabric[V, T]{
		capacity: capacity,
		clone:    clone,
		arena:    arena.New[Node[V, T]](),
	}
}

// Capacity returns the slot capacity every node minted by f carries.
func (f *Fabric[V, T]) Capacity() int {
	return f.capacity
}

// NewNode allocates a fresh node with no outgoing links.
func (f *Fabric[V, T]) NewNode(value V) *Node[V, T] {
	n := f.arena.Alloc()
	n.Value = value
	n.slots = make([]slot[V, T], f.capacity)
	n.occupied = bitset.New(uint(f.capacity))
	n.next = nil
	return n
}

// Get returns the target of the slot tagged t with the largest
// version <= v, or (nil, false) if no such slot exists. If two slots
// for the tag share that largest version, the one at the lower slot
// index is returned.
func (f *Fabric[V, T]) Get(n *Node[V, T], tag T, v Version) (*Node[V, T], bool) {
	var best *slot[V, T]
	for i := range n.slots {
		if !n.occupied.Test(uint(i)) {
			continue
		}
		s := &n.slots[i]
		if s.tag != tag || s.version.Compare(v) > 0 {
			continue
		}
		if best == nil || s.version.Compare(best.version) > 0 {
			best = s
		}
	}
	if best == nil {
		return nil, false
	}
	return best.target, true
}

// Add writes a tag -> target edge at version v. If n has no free
// slot, n is copied first (copyAndPrepare) and the edge is written to
// the copy instead; the live node after any such copy is returned.
//
// Unless reverseFlag is set, Add also recursively installs the paired
// reverse edge on target (target.add(tag.Reverse(), n, v, true)) and
// cross-links the two slots' twin pointers. reverseFlag is set only
// by that recursive call itself, where the reverse side must not
// recurse again. copyAndPrepare's re-install of an older,
// still-current edge passes false, so the target also gains a reverse
// slot pointing at the copy.
func (f *Fabric[V, T]) Add(n *Node[V, T], tag T, target *Node[V, T], v Version, reverseFlag bool) *Node[V, T] {
	live, _ := f.add(n, tag, target, v, reverseFlag)
	return live
}

func (f *Fabric[V, T]) add(n *Node[V, T], tag T, target *Node[V, T], v Version, reverseFlag bool) (*Node[V, T], *slot[V, T]) {
	n = n.Resolve()

	idx, ok := n.freeSlotIndex()
	if !ok {
		cp := f.copyAndPrepare(n, v)
		return f.add(cp, tag, target, v, reverseFlag)
	}

	s := &n.slots[idx]
	*s = slot[V, T]{tag: tag, version: v, target: target}
	n.occupied.Set(uint(idx))

	if !reverseFlag {
		liveTarget, targetSlot := f.add(target, tag.Reverse(), n, v, true)
		s.target = liveTarget
		s.twin = targetSlot
		targetSlot.twin = s
	}

	return n, s
}

// copyAndPrepare duplicates n (cloning its payload via the fabric's
// clone function) and migrates every slot that is currently the
// latest entry for its tag: a slot already written at exactly v is
// relocated in place (its twin's back-pointer is rewritten to the
// new node and slot, with no further recursion), and an older but
// still-current slot is re-installed at version v via Add so its
// reverse side is updated too. n is left with a forwarding pointer to
// the copy.
func (f *Fabric[V, T]) copyAndPrepare(n *Node[V, T], v Version) *Node[V, T] {
	cp := f.NewNode(f.clone(n.Value))
	n.next = cp

	var toMove []int
	for i := range n.slots {
		if !n.occupied.Test(uint(i)) {
			continue
		}
		cur := n.slots[i]
		latest := true
		for j := range n.slots {
			if j == i || !n.occupied.Test(uint(j)) {
				continue
			}
			other := n.slots[j]
			if other.tag == cur.tag && other.version.Compare(cur.version) > 0 {
				latest = false
				break
			}
		}
		if latest {
			toMove = append(toMove, i)
		}
	}

	for _, i := range toMove {
		link := &n.slots[i]
		if link.version.Equal(v) {
			freeIdx, ok := cp.freeSlotIndex()
			if !ok {
				panic("link fabric invariant violated: no free slot in a freshly copied node (capacity < 2 * distinct tags)")
			}
			cp.slots[freeIdx] = slot[V, T]{tag: link.tag, version: v, target: link.target, twin: link.twin}
			cp.occupied.Set(uint(freeIdx))

			if link.twin != nil {
				link.twin.target = cp
				link.twin.twin = &cp.slots[freeIdx]
			}

			n.occupied.Clear(uint(i))
			n.slots[i] = slot[V, T]{}
		} else {
			f.Add(cp, link.tag, link.target, v, false)
		}
	}

	return cp
}
