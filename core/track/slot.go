// Package track keeps per-slot bookkeeping for the buffer pool: how large
// each pack/unpack slot currently is, what element type it was last filled
// with, and (for staged device fields) whether its host mirror is pinned.
//
// The indexing scheme is adapted from the teacher's BufferTracker/
// ResourceMetadata pair in its GPU usage-barrier tracker: a dense slice
// grown on demand and indexed directly by an integer key, rather than a
// map. Dropped along with the adaptation is everything barrier-shaped
// (IsCompatible/IsReadOnly/NeedsBarrier, usage bitflags, PendingTransition)
// since a halo slot only ever has one reader/writer at a time by
// construction (spec §4.4's armed/running/complete handle lifecycle already
// serializes access) — there is no concurrent-usage conflict to detect.
package track

import "github.com/gogpu/ighalo/types"

// Key identifies a buffer slot by the field it belongs to and which of the
// two neighbours along the current dimension it serves. Keys are
// deterministic: they fall out of call argument order (field index in the
// caller's slice, neighbour side 1 or 2), not a dynamically allocated ID,
// so there is no need for the free-list/epoch recycling the teacher uses
// for its dynamically-created GPU resource IDs.
type Key struct {
	Field int
	Side  types.Side
}

// index maps a Key to a dense slice position.
func (k Key) index() int {
	return k.Field*int(types.NeighborsPerDim) + int(k.Side-1)
}

// Slot records the current state of one pack/unpack buffer slot.
type Slot struct {
	// Capacity is the slot's allocated size in bytes, always a multiple of
	// types.Granularity elements of the slot's ElementType at allocation
	// time (spec §4.2 growth rule).
	Capacity int
	// ElementType is the type the slot was last packed/unpacked as.
	// Reinterpreting to a different type only reallocates when the new
	// request, rounded to the new type's granularity, exceeds the existing
	// Capacity.
	ElementType types.ElementType
	// Pinned reports whether the slot's host-side mirror is currently
	// registered as pinned memory for a staged device transfer (spec §4.3
	// staged path). Only meaningful when the owning field is device-resident.
	Pinned bool
	present bool
}

// Tracker is a Context-owned table of buffer slots, one per (field,
// neighbour) pair seen so far. It is never a package-level singleton —
// each Context constructs and owns its own Tracker, per Design Notes §9.
type Tracker struct {
	slots []Slot
	count int
}

// NewTracker returns an empty slot tracker.
func NewTracker() *Tracker {
	return &Tracker{slots: make([]Slot, 0, 64)}
}

// Get returns the slot at key and whether it has been allocated yet.
func (t *Tracker) Get(key Key) (Slot, bool) {
	i := key.index()
	if i < 0 || i >= len(t.slots) || !t.slots[i].present {
		return Slot{}, false
	}
	return t.slots[i], true
}

// Ensure grows the slot at key to at least capacity bytes for the given
// element type, returning the resulting slot and whether a (re)allocation
// happened. Reinterpretation across element types follows spec §4.2: a
// slot already large enough for the new type's granularity-rounded size is
// reused in place; otherwise it grows.
func (t *Tracker) Ensure(key Key, capacity int, elem types.ElementType) (slot Slot, grew bool) {
	i := key.index()
	t.ensureSize(i + 1)

	rounded := roundUp(capacity, elem)
	cur := t.slots[i]
	if !cur.present {
		t.slots[i] = Slot{Capacity: rounded, ElementType: elem, present: true}
		t.count++
		return t.slots[i], true
	}

	if rounded <= cur.Capacity && cur.ElementType == elem {
		return cur, false
	}
	if rounded <= cur.Capacity {
		// Same underlying bytes, different element type: no reallocation,
		// just a reinterpretation of the existing capacity.
		t.slots[i].ElementType = elem
		return t.slots[i], false
	}

	t.slots[i] = Slot{Capacity: rounded, ElementType: elem, Pinned: cur.Pinned, present: true}
	return t.slots[i], true
}

// SetPinned marks whether key's host mirror is currently pinned.
func (t *Tracker) SetPinned(key Key, pinned bool) {
	i := key.index()
	if i < 0 || i >= len(t.slots) || !t.slots[i].present {
		return
	}
	t.slots[i].Pinned = pinned
}

// Count returns the number of allocated slots.
func (t *Tracker) Count() int {
	return t.count
}

func (t *Tracker) ensureSize(size int) {
	for len(t.slots) < size {
		t.slots = append(t.slots, Slot{})
	}
}

// roundUp rounds byteLen up to the next multiple of types.Granularity
// elements of elem, per spec §4.2 / Design Notes §9.
func roundUp(byteLen int, elem types.ElementType) int {
	step := elem.Size() * types.Granularity
	if step == 0 {
		return byteLen
	}
	if r := byteLen % step; r != 0 {
		byteLen += step - r
	}
	return byteLen
}
