package ighalo

import "github.com/gogpu/ighalo/types"

// Field is the public alias of types.Field: an externally owned
// N-dimensional dense array of a fixed element type. It lives in types so
// that hal and internal/pack can reference it without importing this
// package; ighalo re-exports it here so callers only ever need to import
// the root package.
type Field = types.Field

// halosize is Halosize(dim, F): the cardinality of the 2-D plane
// orthogonal to dim — the product of Size(k) for every k != dim.
func halosize(f Field, dim int) int {
	n := 1
	for k := 1; k <= 3; k++ {
		if k == dim {
			continue
		}
		n *= dimSize(f, k)
	}
	return n
}

// dimSize returns Size(dim) for dim <= NDims, else 1 (spec's "padded with
// size-1 axes" convention for 1-D and 2-D fields).
func dimSize(f Field, dim int) int {
	if dim > f.NDims() {
		return 1
	}
	return f.Size(dim)
}

// maxHaloElems is max_halo_elems(F): the largest halosize(dim, F) over
// every real dimension of F, the buffer-slot capacity requirement that
// covers whichever dim ends up using the slot next. For a 3-D field this
// is the product of the two largest axes (dropping only the smallest, per
// spec's sorted_desc formula); for 1-D and 2-D fields the padded axes
// contribute a factor of 1, so e.g. a 1-D field's max is always 1.
func maxHaloElems(f Field) int {
	best := 1
	for dim := 1; dim <= f.NDims(); dim++ {
		if h := halosize(f, dim); h > best {
			best = h
		}
	}
	return best
}

// hasHalo reports whether f has at least one dimension with Overlap >= 2.
func hasHalo(f Field) bool {
	for dim := 1; dim <= f.NDims(); dim++ {
		if f.Overlap(dim) >= 2 {
			return true
		}
	}
	return false
}
