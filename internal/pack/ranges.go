// Package pack computes the index ranges a halo pack/unpack copies, and
// hosts the three realizations of the copy itself (host, device kernel,
// staged host<->device) in its host, device and staged subpackages.
package pack

import "github.com/gogpu/ighalo/types"

// Shape is the minimal field description ranges.go needs: NDims, the
// extent along a dimension, and the halo overlap for that dimension. It
// is satisfied by ighalo.Field without importing the root package (which
// itself imports this one).
type Shape interface {
	NDims() int
	Size(dim int) int
	Overlap(dim int) int
}

// Range is a 1-based, inclusive index range along one axis.
type Range struct {
	Start, End int
}

// Len returns the number of indices the range covers.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

// dimSize returns Size(dim) for dim <= NDims, else 1, matching the
// "padded with size-1 axes" convention spec applies to 1-D and 2-D fields.
func dimSize(f Shape, dim int) int {
	if dim > f.NDims() {
		return 1
	}
	return f.Size(dim)
}

// SendRanges computes sendranges(n, dim, F): the source plane adjacent to
// the halo, one row thick along dim, full extent on every other axis.
func SendRanges(n types.Side, dim int, f Shape) [3]Range {
	var out [3]Range
	ol := f.Overlap(dim)
	for axis := 1; axis <= 3; axis++ {
		if axis == dim {
			var row int
			if n == types.High {
				row = dimSize(f, dim) - (ol - 1)
			} else {
				row = ol
			}
			out[axis-1] = Range{Start: row, End: row}
			continue
		}
		out[axis-1] = Range{Start: 1, End: dimSize(f, axis)}
	}
	return out
}

// RecvRanges computes recvranges(n, dim, F): the halo row itself, the
// mirror image of SendRanges along dim.
func RecvRanges(n types.Side, dim int, f Shape) [3]Range {
	var out [3]Range
	for axis := 1; axis <= 3; axis++ {
		if axis == dim {
			var row int
			if n == types.High {
				row = dimSize(f, dim)
			} else {
				row = 1
			}
			out[axis-1] = Range{Start: row, End: row}
			continue
		}
		out[axis-1] = Range{Start: 1, End: dimSize(f, axis)}
	}
	return out
}

// HaloSize is Halosize(dim, F): the cardinality of the 2-D plane
// orthogonal to dim.
func HaloSize(dim int, f Shape) int {
	n := 1
	for k := 1; k <= 3; k++ {
		if k == dim {
			continue
		}
		n *= dimSize(f, k)
	}
	return n
}
