// Copyright (c) 2025 Daniel Anker Hermansen
// SPDX-License-Identifier: MIT

package persistency

import "testing"

func TestVecPushThenView(t *testing.T) {
	t.Parallel()

	vec := NewVec[int]()
	v := NewVersion()

	var versions []Version
	for i := 0; i < 5; i++ {
		v = vec.PushAfter(i*10, v)
		versions = append(versions, v)
	}

	view := vec.View(v)
	if view.Len() != 5 {
		t.Fatalf("expected length 5, got %d", view.Len())
	}
	for i := 0; i < 5; i++ {
		if got := view.Index(i); got != i*10 {
			t.Fatalf("index %d: got %d want %d", i, got, i*10)
		}
	}

	// Earlier versions see the vector as it was at that point.
	earlyView := vec.View(versions[1])
	if earlyView.Len() != 2 {
		t.Fatalf("expected length 2 at versions[1], got %d", earlyView.Len())
	}
}

func TestVecLenBeforeAnyPush(t *testing.T) {
	t.Parallel()

	vec := NewVec[string]()
	if got := vec.Len(NewVersion()); got != 0 {
		t.Fatalf("expected length 0, got %d", got)
	}
}

func TestVecPopAfterLeavesOldValueReadable(t *testing.T) {
	t.Parallel()

	vec := NewVec[int]()
	v := NewVersion()
	v = vec.PushAfter(1, v)
	vBeforePop := v
	v = vec.PushAfter(2, v)
	v = vec.PopAfter(v)

	if got := vec.Len(v); got != 1 {
		t.Fatalf("expected length 1 after pop, got %d", got)
	}

	// The version before the second push still reads back as it was.
	oldView := vec.View(vBeforePop)
	if oldView.Len() != 1 || oldView.Index(0) != 1 {
		t.Fatalf("expected pre-push state to still read back correctly")
	}
}

func TestVecIndexOutOfBoundsPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic on out-of-bounds index")
		}
	}()

	vec := NewVec[int]()
	v := vec.PushAfter(1, NewVersion())
	vec.View(v).Index(1)
}
