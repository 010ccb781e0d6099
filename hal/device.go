package hal

import "github.com/gogpu/ighalo/types"

// KernelLaunch describes a pack/unpack kernel dispatch: a 3-D grid of
// device threads copying between a strided field view and a contiguous
// buffer, per the thread-block shape rule (block (1,32,1) when the
// singleton axis is dim 1, (32,1,1) otherwise).
type KernelLaunch struct {
	// Dim is the 1-based dimension the pack/unpack is along.
	Dim int
	// Pack is true for field→buffer (send), false for buffer→field (recv).
	Pack bool
	// Grid is the number of thread blocks along each of the three axes.
	Grid [3]int
	// Block is the thread-block shape: (1,32,1) for Dim==1, (32,1,1) otherwise.
	Block [3]int
	// Field, Buffer are the source/destination descriptors a concrete
	// backend needs to resolve into real device pointers; ighalo's core
	// never dereferences them itself.
	Field  types.Field
	Buffer []byte
	Elem   types.ElementType
	// Exec performs the actual element movement. A production CUDA/ROCm
	// backend would replace this with a compiled-kernel dispatch keyed off
	// Dim/Grid/Block; with no real GPU binding in the retrieved pack to
	// ground one on, the simulated backends below execute Exec directly
	// (on a dedicated goroutine for cuda/rocm, inline for host), which
	// also happens to be what makes the device path bit-exactly
	// comparable to the host reference path in tests.
	Exec func() error
}

// StagedCopy describes a 3-D pitched async memcopy between a device field
// and its pinned host mirror, used on dims != 1 when the transport for
// that dimension is not device-aware.
type StagedCopy struct {
	Dim        int
	ToHost     bool // true: device -> host mirror; false: host mirror -> device
	Field      types.Field
	HostMirror []byte
	Elem       types.ElementType
	// Exec performs the actual memcopy; see KernelLaunch.Exec.
	Exec func() error
}

// Stream represents one dedicated, non-blocking device execution context,
// one per (field, neighbour) pair. Submission is asynchronous; Wait blocks
// the calling goroutine until everything previously submitted on this
// Stream has completed, mirroring spec's "device stream semantics".
type Stream interface {
	// Launch enqueues a pack/unpack kernel without blocking.
	Launch(KernelLaunch) error
	// Copy enqueues a staged host<->device memcopy without blocking.
	Copy(StagedCopy) error
	// Wait blocks until every operation enqueued so far has completed.
	Wait() error
}

// Device is the per-backend abstraction ighalo's core talks to: it can
// create Streams and manage pinned host mirrors for the staged path.
// Device implementations never see spec-level concepts (dims, neighbours,
// calls) — those stay in the orchestrator; a Device only executes the
// kernel/copy descriptors it is handed.
type Device interface {
	// Variant identifies which backend this Device implements.
	Variant() types.DeviceKind
	// NewStream creates one independent, non-blocking execution context.
	NewStream() (Stream, error)
	// Pin registers buf as page-locked host memory for staged transfers.
	Pin(buf []byte) error
	// Unpin releases a previously pinned buffer.
	Unpin(buf []byte) error
}

// Backend is the registry-facing alias for Device, matching the teacher's
// registry.go naming (RegisterBackend/GetBackend/AvailableBackends).
type Backend = Device
