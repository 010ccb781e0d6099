// Package host implements the host-memory realization of the pack/unpack
// engine: strided copies between a field's row-major backing array and a
// contiguous send/recv buffer.
//
// Two paths exist, chosen by size: a thread-parallel path at or above
// GG_THREADCOPY_THRESHOLD using golang.org/x/sync/errgroup, and a
// single-threaded path below it. When the host exposes SIMD (checked via
// golang.org/x/sys/cpu) the threshold is halved; there is no separate
// hand-vectorized copy path. Contiguous runs are copied with Go's built-in
// copy on every host.
package host

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/cpu"

	"github.com/gogpu/ighalo/internal/pack"
)

// Shape describes the full row-major extent of a host field, dim 1 being
// the fastest-varying axis.
type Shape struct {
	Size [3]int
}

func (s Shape) stride(dim int) int {
	switch dim {
	case 1:
		return 1
	case 2:
		return s.Size[0]
	default:
		return s.Size[0] * s.Size[1]
	}
}

// vectorizable reports whether the host exposes a SIMD ISA (AVX2 or ASIMD).
// ighalo does not hand-write SIMD assembly; copyPlane uses this flag only to
// halve the thread-copy threshold. Whether a row is copied with one memmove
// or element by element depends on its stride alone (see copyStrided).
func vectorizable() bool {
	return cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD
}

// Pack copies the elements of ranges out of src (shaped by srcShape) into
// a freshly-laid-out contiguous dst, elemSize bytes per element.
func Pack(dst []byte, src []byte, srcShape Shape, ranges [3]pack.Range, elemSize, threadCopyThreshold int) error {
	return copyPlane(dst, src, srcShape, ranges, elemSize, threadCopyThreshold, true)
}

// Unpack is the inverse of Pack: it scatters a contiguous src buffer back
// into the strided locations named by ranges inside dst.
func Unpack(dst []byte, dstShape Shape, ranges [3]pack.Range, src []byte, elemSize, threadCopyThreshold int) error {
	return copyPlane(src, dst, dstShape, ranges, elemSize, threadCopyThreshold, false)
}

// copyPlane does the shared strided<->contiguous walk. When toContig is
// true, field is the source and contig is the destination (pack);
// otherwise the reverse (unpack). The two non-singleton axes become the
// parallelizable outer/middle loops; the singleton axis collapses to one
// fixed offset.
func copyPlane(contig []byte, field []byte, shape Shape, ranges [3]pack.Range, elemSize, threshold int, toContig bool) error {
	// identify a singleton axis: the dim axis is always one, and the padded
	// axes of 1-D and 2-D fields are length 1 too; the first one found is
	// used, since any length-1 axis reduces to a fixed offset.
	singleton := -1
	for axis := 0; axis < 3; axis++ {
		if ranges[axis].Len() == 1 {
			singleton = axis
			break
		}
	}
	if singleton == -1 {
		singleton = 2
	}

	var outerAxis, innerAxis int
	switch singleton {
	case 0:
		outerAxis, innerAxis = 2, 1
	case 1:
		outerAxis, innerAxis = 2, 0
	default:
		outerAxis, innerAxis = 1, 0
	}

	outerLen := ranges[outerAxis].Len()
	innerLen := ranges[innerAxis].Len()
	rowBytes := innerLen * elemSize
	totalBytes := outerLen * rowBytes

	// A host with wide-load SIMD makes the contiguous memmove path cheap
	// enough that it's worth splitting across threads sooner.
	if vectorizable() {
		threshold /= 2
	}

	rowCopy := func(o int) {
		oIdx := ranges[outerAxis].Start + o - 1
		base := [3]int{ranges[0].Start - 1, ranges[1].Start - 1, ranges[2].Start - 1}
		base[outerAxis] = oIdx
		base[innerAxis] = ranges[innerAxis].Start - 1

		fieldOff := (base[0]*shape.stride(1) + base[1]*shape.stride(2) + base[2]*shape.stride(3)) * elemSize
		contigOff := o * rowBytes

		if toContig {
			copyStrided(contig[contigOff:contigOff+rowBytes], field, fieldOff, shape.stride(innerAxis+1)*elemSize, innerLen, elemSize)
		} else {
			copyStridedBack(field, fieldOff, shape.stride(innerAxis+1)*elemSize, contig[contigOff:contigOff+rowBytes], innerLen, elemSize)
		}
	}

	if totalBytes >= threshold && outerLen > 1 {
		g, _ := errgroup.WithContext(context.Background())
		workers := runtime.GOMAXPROCS(0)
		if workers > outerLen {
			workers = outerLen
		}
		chunk := (outerLen + workers - 1) / workers
		for w := 0; w < workers; w++ {
			start := w * chunk
			end := start + chunk
			if end > outerLen {
				end = outerLen
			}
			if start >= end {
				continue
			}
			start, end := start, end
			g.Go(func() error {
				for o := start; o < end; o++ {
					rowCopy(o)
				}
				return nil
			})
		}
		return g.Wait()
	}

	for o := 0; o < outerLen; o++ {
		rowCopy(o)
	}
	return nil
}

// copyStrided gathers innerLen elements spaced elemStride bytes apart in
// field (starting at fieldOff) into the contiguous dst.
func copyStrided(dst []byte, field []byte, fieldOff, elemStride, innerLen, elemSize int) {
	if elemStride == elemSize {
		// Already contiguous: one memmove regardless of vectorizable(),
		// since Go's runtime copy already dispatches to a wide-load
		// memmove when the platform supports it.
		copy(dst, field[fieldOff:fieldOff+innerLen*elemSize])
		return
	}
	for i := 0; i < innerLen; i++ {
		off := fieldOff + i*elemStride
		copy(dst[i*elemSize:(i+1)*elemSize], field[off:off+elemSize])
	}
}

// copyStridedBack is the inverse of copyStrided: it scatters a contiguous
// src into field at stride elemStride.
func copyStridedBack(field []byte, fieldOff, elemStride int, src []byte, innerLen, elemSize int) {
	if elemStride == elemSize {
		copy(field[fieldOff:fieldOff+innerLen*elemSize], src)
		return
	}
	for i := 0; i < innerLen; i++ {
		off := fieldOff + i*elemStride
		copy(field[off:off+elemSize], src[i*elemSize:(i+1)*elemSize])
	}
}
