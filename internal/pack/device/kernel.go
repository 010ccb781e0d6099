// Package device builds the 3-D thread-grid kernel launch descriptors the
// device pack/unpack path hands to a hal.Device's Stream, grounded in the
// teacher's ComputePassEncoder.Dispatch(x,y,z) workgroup-dispatch shape
// (see examples/compute-copy's compute shader dispatch).
package device

import (
	"github.com/gogpu/ighalo/hal"
	"github.com/gogpu/ighalo/internal/pack"
	"github.com/gogpu/ighalo/internal/pack/host"
	"github.com/gogpu/ighalo/types"
)

// blockShape returns the thread-block shape for dim: (1,32,1) when dim==1
// (a plane perpendicular to the fastest axis is extremely strided, so one
// thread per point grouped on the second axis keeps memory accesses
// coalesced), (32,1,1) otherwise.
func blockShape(dim int) [3]int {
	if dim == 1 {
		return [3]int{1, 32, 1}
	}
	return [3]int{32, 1, 1}
}

// gridShape computes the number of thread blocks needed to cover ranges
// given blockShape, one thread per (ix,iy,iz) inside the ranges.
func gridShape(ranges [3]pack.Range, block [3]int) [3]int {
	var grid [3]int
	for axis := 0; axis < 3; axis++ {
		n := ranges[axis].Len()
		grid[axis] = (n + block[axis] - 1) / block[axis]
	}
	return grid
}

// fieldShape reads a Field's full extent into the host package's Shape,
// the row-major description its strided copy needs.
func fieldShape(field types.Field) host.Shape {
	return host.Shape{Size: [3]int{
		sizeOrOne(field, 1), sizeOrOne(field, 2), sizeOrOne(field, 3),
	}}
}

func sizeOrOne(field types.Field, dim int) int {
	if dim > field.NDims() {
		return 1
	}
	return field.Size(dim)
}

// BuildPackLaunch constructs the kernel launch descriptor for packing
// field into buf along dim, covering ranges. Exec performs the actual
// element movement a real compiled kernel would do on-device; see
// hal.KernelLaunch.Exec.
func BuildPackLaunch(dim int, field types.Field, buf []byte, elem types.ElementType, ranges [3]pack.Range, threshold int) hal.KernelLaunch {
	block := blockShape(dim)
	shape := fieldShape(field)
	return hal.KernelLaunch{
		Dim:    dim,
		Pack:   true,
		Grid:   gridShape(ranges, block),
		Block:  block,
		Field:  field,
		Buffer: buf,
		Elem:   elem,
		Exec: func() error {
			return host.Pack(buf, field.HostBytes(), shape, ranges, elem.Size(), threshold)
		},
	}
}

// BuildUnpackLaunch is the inverse of BuildPackLaunch: buf -> field.
func BuildUnpackLaunch(dim int, field types.Field, buf []byte, elem types.ElementType, ranges [3]pack.Range, threshold int) hal.KernelLaunch {
	block := blockShape(dim)
	shape := fieldShape(field)
	return hal.KernelLaunch{
		Dim:    dim,
		Pack:   false,
		Grid:   gridShape(ranges, block),
		Block:  block,
		Field:  field,
		Buffer: buf,
		Elem:   elem,
		Exec: func() error {
			return host.Unpack(field.HostBytes(), shape, ranges, buf, elem.Size(), threshold)
		},
	}
}
