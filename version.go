// Copyright (c) 2025 Daniel Anker Hermansen
// SPDX-License-Identifier: MIT

// Package persistency builds fully persistent data structures — Cell,
// Vec, BST, List — on top of two shared primitives: an order-maintenance
// version service ([internal/ordermaintenance]) that mints and compares
// version identifiers in O(1) amortized time, and a node-copying link
// fabric ([internal/linkfabric]) that upgrades an ephemeral pointer
// structure into a fully persistent one.
//
// None of the types in this package are safe for concurrent use. A
// version produced by InsertAfter is observable in every subsequent
// operation on the same structure that reaches it or a descendant of
// it; versions from different trees must never be compared.
package persistency

import "github.com/Daniel-Anker-Hermansen/persistency/internal/ordermaintenance"

// Version identifies one point in a structure's history. Versions mint
// from NewVersion or InsertAfter and compare with a total order; all
// versions passed to one structure's methods must descend from the same
// call to NewVersion.
type Version = ordermaintenance.Version

// NewVersion mints the first version of a fresh history.
func NewVersion() Version {
	return ordermaintenance.NewVersion()
}
