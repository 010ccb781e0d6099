package ighalo

import (
	"github.com/gogpu/ighalo/core"
	"github.com/gogpu/ighalo/hal"
	"github.com/gogpu/ighalo/internal/task"
	"github.com/gogpu/ighalo/types"
)

// streamKey identifies the one dedicated device stream created per (field,
// neighbour) pair, per spec §4.4's "one stream per (field, neighbour)".
type streamKey struct {
	field int
	side  types.Side
}

// Context is the module-level scratch-pool object (Design Notes §9): it
// owns the buffer pool, the pack/unpack handle tables, and any device
// streams opened for device-resident fields. There is no package-level
// singleton — every caller constructs its own Context, and nothing in this
// package keeps state outside of one.
type Context struct {
	cfg       Config
	neighbors Neighbors
	messenger Messenger

	pool   *core.Pool
	iwrite *task.Table // pack handles
	iread  *task.Table // unpack handles

	streams map[streamKey]hal.Stream
}

// New constructs a Context over the given configuration and the two
// out-of-scope collaborators it consumes but never constructs: the
// process-grid topology and the message transport.
func New(cfg Config, neighbors Neighbors, messenger Messenger) *Context {
	return &Context{
		cfg:       cfg,
		neighbors: neighbors,
		messenger: messenger,
		pool:      core.NewPool(),
		iwrite:    task.NewTable(),
		iread:     task.NewTable(),
		streams:   make(map[streamKey]hal.Stream),
	}
}

// Free releases every persistent scratch buffer the Context has
// accumulated (spec §6 free_update_halo_buffers), and drops its handle
// tables and device streams. Pinned mirrors are dropped without an Unpin
// call; the registered host, cuda and rocm backends' Pin/Unpin are no-ops,
// so for them there is nothing to unregister;
// Free still exists as the documented release point a real pinned-memory
// backend would hook.
func (c *Context) Free() {
	_ = c.pool.Free(nil)
	c.iwrite = task.NewTable()
	c.iread = task.NewTable()
	c.streams = make(map[streamKey]hal.Stream)
}

// streamFor returns the dedicated stream for (field, n) on dev, creating it
// on first use.
func (c *Context) streamFor(field int, n types.Side, dev hal.Device) (hal.Stream, error) {
	key := streamKey{field: field, side: n}
	if s, ok := c.streams[key]; ok {
		return s, nil
	}
	s, err := dev.NewStream()
	if err != nil {
		return nil, err
	}
	c.streams[key] = s
	return s, nil
}

// deviceAware reports whether dim uses the device-aware transport path for
// kind, per the IGG_CUDAAWARE_MPI/IGG_ROCMAWARE_MPI capability layer (spec
// §6).
func (c *Context) deviceAware(kind types.DeviceKind, dim int) bool {
	switch kind {
	case types.CUDAKind:
		return c.cfg.CUDAAware[dim]
	case types.ROCmKind:
		return c.cfg.ROCmAware[dim]
	default:
		return false
	}
}

// useDeviceKernel reports whether dim's pack/unpack for kind runs the
// device kernel directly rather than the pinned-host staged path: dim 1
// always does (spec §4.3), any device-aware dim does, and ROCm always does
// — the Open Question resolution that AMD never falls back to the staged
// path (hal/rocm).
func (c *Context) useDeviceKernel(kind types.DeviceKind, dim int) bool {
	return dim == 1 || kind == types.ROCmKind || c.deviceAware(kind, dim)
}
