// Copyright (c) 2025 Daniel Anker Hermansen
// SPDX-License-Identifier: MIT

package persistency

// Cloner, if implemented by a structure's payload type T, is used
// wherever node-copying persistence must duplicate a node's payload
// (the link fabric's copyAndPrepare, and List's node copy).
// Without it, values are shallow copied, which is correct for anything
// not holding its own pointers/slices that must diverge per version.
type Cloner[T any] interface {
	Clone() T
}

// cloneValue returns a copy of v suitable for installing on a freshly
// copied node. Most payload types have no Clone method, so the common
// case is the early return: a plain shallow copy, correct as long as T
// holds no pointers/slices of its own that must diverge per version.
func cloneValue[T any](v T) T {
	c, ok := any(v).(Cloner[T])
	if !ok {
		return v
	}
	return c.Clone()
}
