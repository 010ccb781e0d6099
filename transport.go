package ighalo

import (
	"github.com/gogpu/ighalo/hal"
	"github.com/gogpu/ighalo/types"
)

// Request is a single outstanding non-blocking send or receive. It is
// wait-once and non-reusable: no Request may outlive the UpdateHalo call
// that created it, matching the MPI request lifecycle spec assumes.
type Request interface {
	// Wait blocks until the operation completes. For a receive, it
	// reports whether data actually arrived (false for a request that was
	// never posted because the dimension carries no halo traffic).
	Wait() (ok bool, err error)
}

// Messenger is the out-of-scope transport collaborator: Context consumes
// it but never constructs the underlying communicator. Exactly one
// reference implementation ships with this module, transport/localmesh,
// for tests and for callers without a real MPI binding.
type Messenger interface {
	// ISend posts a non-blocking send of exactly len(buf) bytes to rank,
	// tagged tag, and returns immediately with a Request.
	ISend(rank int, tag int, buf []byte) (Request, error)
	// IRecv posts a non-blocking receive of exactly len(buf) bytes from
	// rank, tagged tag, and returns immediately with a Request.
	IRecv(rank int, tag int, buf []byte) (Request, error)
}

// haloTag is the fixed message tag used for every halo message, per spec
// §6's "no header, no version byte" wire format — peers agree on type and
// size by construction, not negotiation.
const haloTag = 0

// irecvHalo posts a receive for (n, dim, field) if it carries halo
// traffic, returning a nil Request when ol(dim, F) < 2 (spec §4.5).
// neighbors is accepted for symmetry with the collaborator table in spec
// §6 even though this particular check only needs fromRank.
func irecvHalo(m Messenger, neighbors Neighbors, f Field, n types.Side, dim, fromRank int, buf []byte) (Request, error) {
	if f.Overlap(dim) < 2 {
		return nil, nil
	}
	hal.Logger().Debug("transport: posting receive", "dim", dim, "side", n, "from_rank", fromRank, "bytes", len(buf))
	return m.IRecv(fromRank, haloTag, buf)
}

// isendHalo posts a send for (n, dim, field) if it carries halo traffic,
// symmetric with irecvHalo: no send is posted when ol(dim, F) < 2 or when
// toRank is the NoNeighbor sentinel.
func isendHalo(m Messenger, f Field, dim, toRank int, buf []byte) (Request, error) {
	if f.Overlap(dim) < 2 || toRank < 0 {
		return nil, nil
	}
	hal.Logger().Debug("transport: posting send", "dim", dim, "to_rank", toRank, "bytes", len(buf))
	return m.ISend(toRank, haloTag, buf)
}
