package task

import "github.com/gogpu/ighalo/types"

// Table is one of the two per-call keyed handle tables (spec calls them
// "iwrite" for pack and "iread" for unpack), sized
// NNEIGHBORS_PER_DIM x max(field_count) and reused across calls: only new
// (field, neighbour) entries are materialized when a call widens the
// table, and existing entries are overwritten in place.
type Table struct {
	handles []*Handle // flat, indexed by field*NeighborsPerDim + (side-1)
}

// NewTable returns an empty table; it grows lazily on first use.
func NewTable() *Table {
	return &Table{}
}

func (t *Table) index(field int, n types.Side) int {
	return field*int(types.NeighborsPerDim) + int(n-1)
}

// Handle returns the handle for (field, n), growing the table in place if
// this is the widest field index seen so far. Handles returned earlier stay
// valid when the table grows.
func (t *Table) Handle(field int, n types.Side) *Handle {
	i := t.index(field, n)
	for len(t.handles) <= i {
		t.handles = append(t.handles, &Handle{})
	}
	return t.handles[i]
}

// ResetAll returns every handle in the table to Unset, without shrinking
// the underlying storage — the table itself persists across calls.
func (t *Table) ResetAll() {
	for i := range t.handles {
		t.handles[i].Reset()
	}
}
