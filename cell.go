// Copyright (c) 2025 Daniel Anker Hermansen
// SPDX-License-Identifier: MIT

package persistency

import "github.com/Daniel-Anker-Hermansen/persistency/internal/ordermaintenance"

// cellEntry is one key in a Cell's version-ordered history: either an
// owned value or a forward pointer reusing an earlier owned value's
// storage, so that a version immediately after an insert keeps seeing
// the value that was current before it.
type cellEntry[T any] struct {
	version ordermaintenance.PartialVersion
	owned   bool
	ptr     *T
}

// Cell is a fully persistent memory cell: every value ever written
// remains readable at the version it was written at, and at every
// later version that does not itself overwrite the cell. All versions
// passed to a Cell's methods must come from the same version tree.
type Cell[T any] struct {
	entries []cellEntry[T]
}

// NewCell returns an empty cell. Get returns (nil, false) for any
// version until the first InsertAfter.
func NewCell[T any]() *Cell[T] {
	return &Cell[T]{}
}

// searchLE returns the index of the entry with the greatest version <=
// v, or ok=false if every entry is after v (including when the cell is
// empty).
func (c *Cell[T]) searchLE(v ordermaintenance.PartialVersion) (idx int, ok bool) {
	lo, hi := 0, len(c.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if c.entries[mid].version.Compare(v) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0, false
	}
	return lo - 1, true
}

func (c *Cell[T]) insertSorted(e cellEntry[T]) {
	pos := 0
	if idx, ok := c.searchLE(e.version); ok {
		pos = idx + 1
	}
	c.entries = append(c.entries, cellEntry[T]{})
	copy(c.entries[pos+1:], c.entries[pos:])
	c.entries[pos] = e
}

// Get returns the value visible at v: the last value written at an
// ancestor of v (or at v itself). Returns (nil, false) if v is before
// the cell's first write.
func (c *Cell[T]) Get(v Version) (*T, bool) {
	idx, ok := c.searchLE(v.Primary)
	if !ok {
		return nil, false
	}
	p := c.entries[idx].ptr
	return p, p != nil
}

// GetMut returns a mutable pointer to the value, but only when v names
// an owned write exactly — not merely an ancestor of one. Mutating
// through the returned pointer also mutates every later version that
// reads the same owned entry, so callers that need copy-on-write
// semantics must go through InsertAfter instead.
func (c *Cell[T]) GetMut(v Version) (*T, bool) {
	idx, ok := c.searchLE(v.Primary)
	if !ok || !c.entries[idx].owned || !c.entries[idx].version.Equal(v.Primary) {
		return nil, false
	}
	p := c.entries[idx].ptr
	return p, p != nil
}

// InsertAfter writes value in a new version immediately after v and
// returns that version. A forward entry holding whatever was visible at
// v is inserted at the new version's Secondary, immediately after the
// new owned entry: versions later minted from the returned version
// order before it and see value, while versions ordered after it (such
// as ones minted from v earlier) keep seeing what was visible at v.
func (c *Cell[T]) InsertAfter(v Version, value T) Version {
	newVersion := v.InsertAfter()

	ancestor, _ := c.Get(v) // read before mutating; v.Primary < newVersion.Primary

	owned := value
	c.insertSorted(cellEntry[T]{version: newVersion.Primary, owned: true, ptr: &owned})
	c.insertSorted(cellEntry[T]{version: newVersion.Secondary, owned: false, ptr: ancestor})

	return newVersion
}
