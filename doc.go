// Package ighalo exchanges the halo (ghost-cell) planes of N-dimensional
// arrays distributed across a process grid: for each dimension, it packs
// the interior rows adjacent to a halo into a scratch buffer, moves that
// buffer to (or from, in-process for a periodic self-neighbour) the
// matching neighbour, and unpacks it into the halo itself, before moving
// on to the next dimension.
//
// A Context owns every piece of persistent state a repeated exchange
// needs: the buffer pool, the pack/unpack handle tables, and any device
// streams opened for device-resident fields. Process topology
// (Neighbors) and message transport (Messenger) are supplied by the
// caller; this package never constructs either.
//
//	ctx := ighalo.New(ighalo.DefaultConfig(), neighbors, messenger)
//	defer ctx.Free()
//	if err := ctx.UpdateHalo(fieldA, fieldB); err != nil {
//		...
//	}
package ighalo
