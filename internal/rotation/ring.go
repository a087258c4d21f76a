// Package rotation implements the ordered, cyclic assignment ring used to hand
// chores from one household member to the next.
package rotation

import "slices"

// Ring is an ordered set of user IDs with cyclic successor semantics.
// Insertion order is the rotation order.
type Ring []string

// Contains reports whether userID is a member of the ring.
func (r Ring) Contains(userID string) bool {
	return slices.Contains(r, userID)
}

// Add appends userID if it is not already a member. It reports whether the
// ring changed.
func (r *Ring) Add(userID string) bool {
	if userID == "" || r.Contains(userID) {
		return false
	}
	*r = append(*r, userID)
	return true
}

// Remove drops userID if present, preserving the order of the remaining
// members. It reports whether the ring changed.
func (r *Ring) Remove(userID string) bool {
	i := slices.Index(*r, userID)
	if i < 0 {
		return false
	}
	*r = slices.Delete(*r, i, i+1)
	return true
}

// Advance returns the member following current, wrapping from the last member
// to the first. A current that is not in the ring (including "") yields the
// first member. ok is false only when the ring is empty.
func (r Ring) Advance(current string) (next string, ok bool) {
	if len(r) == 0 {
		return "", false
	}
	i := slices.Index(r, current)
	if i < 0 || i == len(r)-1 {
		return r[0], true
	}
	return r[i+1], true
}

// Clone returns an independent copy of the ring.
func (r Ring) Clone() Ring {
	if r == nil {
		return nil
	}
	return slices.Clone(r)
}
