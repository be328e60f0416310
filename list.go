// Copyright (c) 2025 Daniel Anker Hermansen
// SPDX-License-Identifier: MIT

package persistency

// listPointer is a single versioned pointer slot: an original (version,
// pointer) pair from when the owning node was created, and at most one
// "new" overlay recorded at a strictly later version. A list node's
// next/prev fields are each one of these, not the general link
// fabric's fat slots — the doubly-linked list only ever has two
// neighbors, so a specialized two-state-then-copy representation is
// simpler and cheaper than paying for link fabric's fixed tag capacity.
type listPointer[T any] struct {
	originalVersion int
	original        *listNode[T]
	newVersion      int
	new             *listNode[T]
	hasNew          bool
}

// get returns the pointer visible at version. version must be >= the
// version this slot's owning node was created at.
func (p *listPointer[T]) get(version int) *listNode[T] {
	if version < p.originalVersion {
		panic("persistency precondition violated: queried a list pointer before its node existed")
	}
	if p.hasNew && p.newVersion <= version {
		return p.new
	}
	return p.original
}

// update writes ptr at version. It returns true if the write cannot be
// made in place — the slot already holds a "new" overlay pinned to an
// earlier version that must remain readable — and the caller must
// instead copy the owning node and retry there.
func (p *listPointer[T]) update(version int, ptr *listNode[T]) bool {
	if p.hasNew {
		if p.newVersion == version {
			p.new = ptr
			return false
		}
		if p.newVersion > version {
			panic("persistency invariant violated: list writes must increase monotonically in version")
		}
		return true
	}
	if p.originalVersion == version {
		p.original = ptr
		return false
	}
	if p.originalVersion > version {
		panic("persistency invariant violated: list writes must increase monotonically in version")
	}
	p.newVersion = version
	p.new = ptr
	p.hasNew = true
	return false
}

// listNode is one node of the persistent doubly-linked list. cp is the
// copy-forwarding pointer: once set, this node is stale and every read
// must resolve through it.
type listNode[T any] struct {
	value T
	next  listPointer[T]
	prev  listPointer[T]
	cp    *listNode[T]
}

func newListNode[T any](value T, version int) *listNode[T] {
	return &listNode[T]{
		value: value,
		next:  listPointer[T]{originalVersion: version},
		prev:  listPointer[T]{originalVersion: version},
	}
}

// resolveCopy follows a single copy-forwarding hop. A node is copied at
// most once per insert operation, so one hop always suffices.
func resolveCopy[T any](n *listNode[T]) *listNode[T] {
	if n.cp != nil {
		return n.cp
	}
	return n
}

// copyNode duplicates n at version, cloning its payload and carrying
// forward both neighbor pointers as they stand at version. The fresh
// copy's own writes can never themselves demand a further copy, so a
// violation here is a logic error, not a recoverable condition.
func (n *listNode[T]) copyNode(version int) *listNode[T] {
	cp := newListNode(cloneValue(n.value), version)
	if cp.next.update(version, n.next.get(version)) {
		panic("persistency invariant violated: a freshly copied list node required a further copy")
	}
	if cp.prev.update(version, n.prev.get(version)) {
		panic("persistency invariant violated: a freshly copied list node required a further copy")
	}
	n.cp = cp
	return cp
}

// setPtr writes ptr into the pointer slot selected by which, copying n
// first if necessary. It returns nil if ptr was already in place (no
// further cascading needed), or the node the write landed on (n itself
// or a fresh copy) so the caller can keep propagating the change.
func (n *listNode[T]) setPtr(version int, ptr *listNode[T], which func(*listNode[T]) *listPointer[T]) *listNode[T] {
	if which(n).get(version) == ptr {
		return nil
	}
	if which(n).update(version, ptr) {
		cp := n.copyNode(version)
		if which(cp).update(version, ptr) {
			panic("persistency invariant violated: a freshly copied list node required a further copy")
		}
		return cp
	}
	return n
}

// cascade propagates a pointer change at n outward to its neighbors:
// n's next must have its prev set back to n, and n's prev must have
// its next set back to n. Either fix-up can itself force a copy, in
// which case the cascade continues from that copy.
func (n *listNode[T]) cascade(version int) {
	if next := n.next.get(version); next != nil {
		next = resolveCopy(next)
		if updated := next.setPtr(version, n, func(x *listNode[T]) *listPointer[T] { return &x.prev }); updated != nil {
			updated.cascade(version)
		}
	}
	if prev := n.prev.get(version); prev != nil {
		prev = resolveCopy(prev)
		if updated := prev.setPtr(version, n, func(x *listNode[T]) *listPointer[T] { return &x.next }); updated != nil {
			updated.cascade(version)
		}
	}
}

// List is a fully persistent doubly-linked list. Insert returns a new
// List reflecting the change; the receiver is left untouched and
// remains valid at its own version, sharing untouched nodes with the
// result.
type List[T any] struct {
	root    *listNode[T]
	version int
}

// NewList returns an empty persistent list.
func NewList[T any]() *List[T] {
	return &List[T]{}
}

// Get returns the element at index, or (nil, false) if index is out of
// bounds for this list's version.
func (l *List[T]) Get(index int) (*T, bool) {
	return getOnNode(l.root, index, l.version)
}

func getOnNode[T any](n *listNode[T], index int, version int) (*T, bool) {
	if n == nil {
		return nil, false
	}
	if index == 0 {
		return &n.value, true
	}
	return getOnNode(n.next.get(version), index-1, version)
}

// Insert returns a new list with value inserted at index, mint a new
// version one past the receiver's. Returns (nil, false) if index is
// greater than the list's current length (index == length is a valid
// append).
func (l *List[T]) Insert(index int, value T) (*List[T], bool) {
	newVersion := l.version + 1

	if l.root == nil {
		if index != 0 {
			return nil, false
		}
		return &List[T]{root: newListNode(value, newVersion), version: newVersion}, true
	}

	newRoot, ok := insertOnNode(l.root, index, value, newVersion)
	if !ok {
		return nil, false
	}
	return &List[T]{root: newRoot, version: newVersion}, true
}

func insertOnNode[T any](n *listNode[T], index int, value T, version int) (*listNode[T], bool) {
	if index == 0 {
		newNode := newListNode(value, version)
		newNode.next.update(version, n)
		newNode.prev.update(version, n.prev.get(version))
		newNode.cascade(version)
		return newNode, true
	}

	next := n.next.get(version - 1)
	if next == nil {
		if index != 1 {
			return nil, false
		}
		newNode := newListNode(value, version)
		newNode.prev.update(version, n)
		newNode.cascade(version)
	} else if _, ok := insertOnNode(next, index-1, value, version); !ok {
		return nil, false
	}

	return resolveCopy(n), true
}
