// Copyright (c) 2025 Daniel Anker Hermansen
// SPDX-License-Identifier: MIT

package persistency

import (
	"math/rand/v2"
	"testing"
)

func TestBSTInsertAndContainsSingleHistory(t *testing.T) {
	t.Parallel()

	//nolint:gosec
	prng := rand.New(rand.NewPCG(3, 3))

	tree := NewBST[int]()
	v := NewVersion()

	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		value := prng.IntN(1000)
		tree.Insert(value, v)
		seen[value] = true
	}

	for value := range seen {
		if !tree.Contains(value, v) {
			t.Fatalf("expected tree to contain %d", value)
		}
	}
	for _, absent := range []int{-1, 1001, 100000} {
		if tree.Contains(absent, v) {
			t.Fatalf("did not expect tree to contain %d", absent)
		}
	}
}

func TestBSTContainsBeforeFirstInsert(t *testing.T) {
	t.Parallel()

	tree := NewBST[int]()
	if tree.Contains(1, NewVersion()) {
		t.Fatalf("expected empty tree to not contain anything")
	}
}

// TestBSTEarlierVersionDoesNotSeeLaterInserts mirrors spec P6: a
// value inserted at version v2 must not be visible when querying an
// earlier version v1 < v2.
func TestBSTEarlierVersionDoesNotSeeLaterInserts(t *testing.T) {
	t.Parallel()

	tree := NewBST[int]()
	v0 := NewVersion()
	tree.Insert(50, v0)

	v1 := v0.InsertAfter()
	tree.Insert(25, v1)

	if !tree.Contains(25, v1) {
		t.Fatalf("expected 25 visible at v1")
	}
	if tree.Contains(25, v0) {
		t.Fatalf("did not expect 25 visible at v0, inserted after it")
	}
	if !tree.Contains(50, v0) {
		t.Fatalf("expected 50 visible at v0")
	}
}

// TestBSTWithCapacityClampsToStructuralFloor checks both sides of
// NewBSTWithCapacity's generic.Max clamp: a hint below the structural
// minimum is raised to it, and a hint above it passes through
// unchanged.
func TestBSTWithCapacityClampsToStructuralFloor(t *testing.T) {
	t.Parallel()

	below := NewBSTWithCapacity[int](1)
	if got := below.fabric.Capacity(); got != 2*bstTagPairs {
		t.Fatalf("expected capacity clamped up to %d, got %d", 2*bstTagPairs, got)
	}

	above := NewBSTWithCapacity[int](10)
	if got := above.fabric.Capacity(); got != 10 {
		t.Fatalf("expected the requested capacity 10 to pass through, got %d", got)
	}
}

func TestBSTDuplicateInsertGoesRight(t *testing.T) {
	t.Parallel()

	tree := NewBST[int]()
	v := NewVersion()
	tree.Insert(5, v)
	tree.Insert(5, v)

	if !tree.Contains(5, v) {
		t.Fatalf("expected tree to contain the duplicate value")
	}
	if _, ok := tree.fabric.Get(tree.root, rightChild, v); !ok {
		t.Fatalf("expected the duplicate to be stored as the root's right child")
	}
}
