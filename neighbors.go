package ighalo

import "github.com/gogpu/ighalo/types"

// NoNeighbor is the sentinel rank Neighbors.Neighbor returns when a side
// has no neighbour along a dimension (a non-periodic domain boundary).
const NoNeighbor = -1

// Neighbors is the out-of-scope process-grid collaborator: Context
// consumes it but never constructs one. It answers questions about rank
// topology — who is the neighbour, does one exist, which rank am I — that
// belong to the surrounding process-grid/partitioning subsystem, not to
// the halo-exchange core itself.
type Neighbors interface {
	// Neighbor returns the rank of neighbour side n (Low or High) along
	// dim, or NoNeighbor if none exists.
	Neighbor(n types.Side, dim int) int
	// HasNeighbor reports whether a neighbour exists on side n of dim.
	HasNeighbor(n types.Side, dim int) bool
	// Me returns this process's own rank.
	Me() int
	// NDims returns the number of dimensions in the decomposition.
	NDims() int
}
