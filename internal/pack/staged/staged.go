// Package staged builds the pinned-host 3-D memcopy descriptors used for
// dims != 1 when the transport for that dimension is not device-aware,
// grounded in the teacher's Queue.WriteBuffer/ReadBuffer staging-buffer
// idiom (examples/compute-copy/main.go).
package staged

import (
	"github.com/gogpu/ighalo/hal"
	"github.com/gogpu/ighalo/internal/pack"
	"github.com/gogpu/ighalo/internal/pack/host"
	"github.com/gogpu/ighalo/types"
)

func fieldShape(field types.Field) host.Shape {
	size := [3]int{1, 1, 1}
	for d := 1; d <= field.NDims(); d++ {
		size[d-1] = field.Size(d)
	}
	return host.Shape{Size: size}
}

// BuildDeviceToHost describes copying dim's send plane from field's
// device memory into its pinned host mirror, ahead of a network send.
// Exec plays the role the pitched async memcopy would on real hardware;
// see hal.StagedCopy.Exec.
func BuildDeviceToHost(dim int, field types.Field, mirror []byte, elem types.ElementType, ranges [3]pack.Range, threshold int) hal.StagedCopy {
	shape := fieldShape(field)
	return hal.StagedCopy{
		Dim:        dim,
		ToHost:     true,
		Field:      field,
		HostMirror: mirror,
		Elem:       elem,
		Exec: func() error {
			return host.Pack(mirror, field.HostBytes(), shape, ranges, elem.Size(), threshold)
		},
	}
}

// BuildHostToDevice is the inverse: after a network receive fills the
// pinned mirror, copy it back into the field's halo plane on device.
func BuildHostToDevice(dim int, field types.Field, mirror []byte, elem types.ElementType, ranges [3]pack.Range, threshold int) hal.StagedCopy {
	shape := fieldShape(field)
	return hal.StagedCopy{
		Dim:        dim,
		ToHost:     false,
		Field:      field,
		HostMirror: mirror,
		Elem:       elem,
		Exec: func() error {
			return host.Unpack(field.HostBytes(), shape, ranges, mirror, elem.Size(), threshold)
		},
	}
}

// DevicePitch is the device-side row pitch for the 3-D async memcopy:
// sizeof(T) * size(F, 1).
func DevicePitch(field types.Field) int {
	return field.ElementType().Size() * field.Size(1)
}

// HostPitch is the host-side row pitch: sizeof(T) * length(sendranges[1]).
func HostPitch(field types.Field, sendRangeDim1Len int) int {
	return field.ElementType().Size() * sendRangeDim1Len
}
