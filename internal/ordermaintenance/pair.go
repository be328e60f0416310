// Copyright (c) 2025 Daniel Anker Hermansen
// SPDX-License-Identifier: MIT

package ordermaintenance

// Version is a pair (Primary, Secondary) of PartialVersion, with
// Primary immediately followed by Secondary in the same list.
// Ordering compares Primary only; Secondary exists so a persistent
// structure can mark where a newly owned value ends and inherited
// lookup resumes (see Cell.InsertAfter in the root package).
type Version struct {
	Primary   PartialVersion
	Secondary PartialVersion
}

// NewVersion mints a fresh version list and returns its first
// version. Primary is the list's base; Secondary is inserted
// immediately after it, so a fresh Version is already a two-node-wide
// gap other versions can be inserted into.
func NewVersion() Version {
	primary := New()
	secondary := primary.InsertAfter()
	return Version{Primary: primary, Secondary: secondary}
}

// InsertAfter mints a new version immediately after v in the same
// list, returning the new (primary, secondary) pair.
func (v Version) InsertAfter() Version {
	primary := v.Primary.InsertAfter()
	secondary := primary.InsertAfter()
	return Version{Primary: primary, Secondary: secondary}
}

// Compare orders two versions by Primary only.
func (v Version) Compare(other Version) int {
	return v.Primary.Compare(other.Primary)
}

// Less reports whether v orders strictly before other.
func (v Version) Less(other Version) bool {
	return v.Primary.Less(other.Primary)
}

// Equal reports whether v and other name the same version.
func (v Version) Equal(other Version) bool {
	return v.Primary.Equal(other.Primary)
}
