// Copyright (c) 2025 Daniel Anker Hermansen
// SPDX-License-Identifier: MIT

package persistency

import "fmt"

// Vec is a persistent growable sequence built directly on Cell: one
// Cell per index, plus one Cell holding the current length. Popping
// never touches the popped element's own history — it only records a
// smaller length at a new version, so the old value is still
// addressable at any version that saw it.
type Vec[T any] struct {
	cells []*Cell[T]
	len   *Cell[int]
}

// NewVec returns an empty persistent vector.
func NewVec[T any]() *Vec[T] {
	return &Vec[T]{len: NewCell[int]()}
}

// Len returns the vector's length as of v. A version before the
// vector's first push reports length 0.
func (vec *Vec[T]) Len(v Version) int {
	n, ok := vec.len.Get(v)
	if !ok {
		return 0
	}
	return *n
}

// PushAfter appends value in a new version immediately after v and
// returns that version.
func (vec *Vec[T]) PushAfter(value T, v Version) Version {
	n := vec.Len(v)
	if n == len(vec.cells) {
		vec.cells = append(vec.cells, NewCell[T]())
	}
	written := vec.cells[n].InsertAfter(v, value)
	return vec.setLenAfter(written, n+1)
}

// PopAfter records a shorter length in a new version immediately after
// v and returns that version. The popped element's Cell history is
// untouched: it remains readable at any version at or before the pop.
func (vec *Vec[T]) PopAfter(v Version) Version {
	n := vec.Len(v)
	return vec.setLenAfter(v, n-1)
}

func (vec *Vec[T]) setLenAfter(v Version, n int) Version {
	return vec.len.InsertAfter(v, n)
}

// View returns a handle indexable at exactly the version v.
func (vec *Vec[T]) View(v Version) VecView[T] {
	return VecView[T]{vec: vec, version: v}
}

// VecView is a read-only window into one version of a Vec.
type VecView[T any] struct {
	vec     *Vec[T]
	version Version
}

// Index returns the element at i. It panics if i is out of bounds for
// this view's version, mirroring vec.rs's VecView::index.
func (view VecView[T]) Index(i int) T {
	n := view.vec.Len(view.version)
	if i < 0 || i >= n {
		panic(fmt.Sprintf("index out of bounds. index was %d len was %d", i, n))
	}
	value, ok := view.vec.cells[i].Get(view.version)
	if !ok {
		panic("persistency invariant violated: cell must be initialized for an index below the view's length")
	}
	return *value
}

// Len returns the view's length (equivalent to view.vec.Len(view.version)).
func (view VecView[T]) Len() int {
	return view.vec.Len(view.version)
}
