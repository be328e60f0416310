// Copyright (c) 2025 Daniel Anker Hermansen
// SPDX-License-Identifier: MIT

package persistency

import (
	"math/rand/v2"
	"testing"
)

// TestCellPartialPersistence mirrors cell.rs's partial_persistent_test:
// every version ever produced by a chain of InsertAfter calls must
// still read back its own value.
func TestCellPartialPersistence(t *testing.T) {
	t.Parallel()

	//nolint:gosec
	prng := rand.New(rand.NewPCG(1, 1))

	type record struct {
		version Version
		value   uint64
	}

	cell := NewCell[uint64]()
	version := NewVersion()
	var history []record

	for i := 0; i < 10; i++ {
		value := prng.Uint64()
		version = cell.InsertAfter(version, value)
		history = append(history, record{version, value})
	}

	for _, r := range history {
		got, ok := cell.Get(r.version)
		if !ok || *got != r.value {
			t.Fatalf("expected %d at version, got %v ok=%v", r.value, got, ok)
		}
	}
}

func TestCellGetBeforeFirstWrite(t *testing.T) {
	t.Parallel()

	cell := NewCell[int]()
	v := NewVersion()
	if _, ok := cell.Get(v); ok {
		t.Fatalf("expected no value before any write")
	}
}

// TestCellDoublePersistence mirrors cell.rs's double_test: two
// independent cells sharing one version tree never confuse each
// other's values (spec P4).
func TestCellDoublePersistence(t *testing.T) {
	t.Parallel()

	//nolint:gosec
	prng := rand.New(rand.NewPCG(2, 2))

	type record struct {
		version        Version
		value1, value2 *uint64
	}

	cell1, cell2 := NewCell[uint64](), NewCell[uint64]()
	version := NewVersion()
	history := []record{{version, nil, nil}}

	for i := 0; i < 20; i++ {
		last := history[len(history)-1]
		value := prng.Uint64()
		if prng.IntN(2) == 0 {
			version = cell1.InsertAfter(version, value)
			history = append(history, record{version, &value, last.value2})
		} else {
			version = cell2.InsertAfter(version, value)
			history = append(history, record{version, last.value1, &value})
		}
	}

	for _, r := range history {
		got1, ok1 := cell1.Get(r.version)
		if (r.value1 == nil) != !ok1 {
			t.Fatalf("cell1 presence mismatch")
		}
		if ok1 && *got1 != *r.value1 {
			t.Fatalf("cell1 value mismatch: got %d want %d", *got1, *r.value1)
		}

		got2, ok2 := cell2.Get(r.version)
		if (r.value2 == nil) != !ok2 {
			t.Fatalf("cell2 presence mismatch")
		}
		if ok2 && *got2 != *r.value2 {
			t.Fatalf("cell2 value mismatch: got %d want %d", *got2, *r.value2)
		}
	}
}

func TestCellGetMutExactVersionOnly(t *testing.T) {
	t.Parallel()

	cell := NewCell[int]()
	v0 := NewVersion()
	v1 := cell.InsertAfter(v0, 7)

	if p, ok := cell.GetMut(v1); !ok || *p != 7 {
		t.Fatalf("expected mutable access at the exact owned version")
	} else {
		*p = 9
	}

	got, ok := cell.Get(v1)
	if !ok || *got != 9 {
		t.Fatalf("expected mutation through GetMut to be visible via Get")
	}

	if _, ok := cell.GetMut(v0); ok {
		t.Fatalf("expected GetMut to fail for a version before any write")
	}
}
