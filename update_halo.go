package ighalo

import (
	"github.com/gogpu/ighalo/hal"
	"github.com/gogpu/ighalo/internal/pack"
	"github.com/gogpu/ighalo/internal/pack/device"
	"github.com/gogpu/ighalo/internal/pack/host"
	"github.com/gogpu/ighalo/internal/pack/staged"
	"github.com/gogpu/ighalo/types"
)

// UpdateHalo exchanges the halo planes of every field with their process
// neighbours, one dimension at a time, in strict dimension order (spec
// §4.1's ordering invariant: dim d+1 never starts before dim d is fully
// drained, since corner cells depend on it). It is not safe to call
// concurrently on the same Context (spec §5).
func (c *Context) UpdateHalo(fields ...Field) error {
	if err := validateFields(fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	if err := c.allocate(fields); err != nil {
		return err
	}

	for dim := 1; dim <= c.neighbors.NDims(); dim++ {
		if err := c.updateDim(dim, fields); err != nil {
			return err
		}
	}
	return nil
}

// allocate ensures every (field, side) slot exists at max_halo_elems(F)
// capacity, per spec §4.2's allocate_bufs — done once per call, ahead of
// the dimension loop, since the pool is keyed by (field, side) only and is
// reused across every dim.
func (c *Context) allocate(fields []Field) error {
	for i, f := range fields {
		elem := f.ElementType()
		capacity := maxHaloElems(f)
		for _, n := range []types.Side{types.Low, types.High} {
			if _, _, err := c.pool.Ensure(i, n, elem, capacity); err != nil {
				return newResourceError(i+1, err, "allocating halo buffers")
			}
		}
	}
	return nil
}

// validateFields runs the three input checks of spec §7 before any work
// begins, plus the GPU-backend-enabled precondition from §4.1. Every check
// reports on first offense (the ">0" threshold Open Question resolution —
// see DESIGN.md).
func validateFields(fields []Field) error {
	for i, f := range fields {
		if !hasHalo(f) {
			return newPreconditionError(i+1, "field has no dimension with overlap >= 2")
		}
	}
	for i := 1; i < len(fields); i++ {
		for j := 0; j < i; j++ {
			if sameField(fields[i], fields[j]) {
				return newPreconditionError(i+1, "duplicate of field %d", j+1)
			}
		}
	}
	if len(fields) > 0 {
		want := fields[0].ElementType()
		for i, f := range fields {
			if f.ElementType() != want {
				return newPreconditionError(i+1, "mixed element types: expected %s, got %s", want, f.ElementType())
			}
		}
	}
	for i, f := range fields {
		if f.Device() == types.Host {
			continue
		}
		if _, ok := hal.GetBackend(f.Device()); !ok {
			return newPreconditionError(i+1, "backend %s is not enabled", f.Device())
		}
	}
	return nil
}

// sameField reports whether a and b are the same field, per spec's "no two
// F_i alias" precondition. Field implementations are expected to be
// pointer types (the common shape for something that wraps external
// storage); a value type holding a slice would make == panic, so the
// comparison is guarded rather than assumed safe.
func sameField(a, b Field) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// hostShape reads a Field's full row-major extent into the shape the host
// pack/unpack engine needs.
func hostShape(f Field) host.Shape {
	return host.Shape{Size: [3]int{dimSize(f, 1), dimSize(f, 2), dimSize(f, 3)}}
}

// updateDim runs one dimension of the exchange: classify it as local or
// remote (spec §4.1 step 2), arm every pack handle that has a neighbour
// (step 1), then dispatch to the matching path.
func (c *Context) updateDim(dim int, fields []Field) error {
	remote, err := classifyDim(c.neighbors, dim)
	if err != nil {
		return err
	}

	sendWire := make([]map[types.Side][]byte, len(fields))
	for i, f := range fields {
		sendWire[i] = make(map[types.Side][]byte, 2)
		for _, n := range []types.Side{types.Low, types.High} {
			if !c.neighbors.HasNeighbor(n, dim) {
				continue
			}
			wire, err := c.armPack(i, f, n, dim)
			if err != nil {
				return err
			}
			sendWire[i][n] = wire
		}
	}

	if !remote {
		return c.updateDimLocal(dim, fields, sendWire)
	}
	return c.updateDimRemote(dim, fields, sendWire)
}

// classifyDim implements spec §4.1 step 2: both sides mapping to me is the
// local (periodic self-neighbour) path, both mapping away is the remote
// path, and anything else is an incoherent topology the orchestrator
// refuses to guess about.
func classifyDim(neighbors Neighbors, dim int) (remote bool, err error) {
	me := neighbors.Me()
	lowSelf := neighbors.Neighbor(types.Low, dim) == me
	highSelf := neighbors.Neighbor(types.High, dim) == me
	switch {
	case lowSelf && highSelf:
		return false, nil
	case !lowSelf && !highSelf:
		return true, nil
	default:
		return false, newStructuralError(dim, "incoherent neighbour classification: low-self=%v high-self=%v", lowSelf, highSelf)
	}
}

// armPack builds the pack handle for (i, n) at dim and returns the byte
// slice that transport should actually move: the pool's send slot for a
// host field or a device-aware device field, or the pinned host mirror for
// a device field on the staged path.
func (c *Context) armPack(i int, f Field, n types.Side, dim int) ([]byte, error) {
	elem := f.ElementType()
	haloElems := pack.HaloSize(dim, f)
	sendBuf := c.pool.SendBuf(i, n)[:haloElems*elem.Size()]
	ranges := pack.SendRanges(n, dim, f)

	if f.Device() == types.Host {
		c.iwrite.Handle(i, n).Arm(func() error {
			return host.Pack(sendBuf, f.HostBytes(), hostShape(f), ranges, elem.Size(), c.cfg.ThreadCopyThreshold)
		})
		return sendBuf, nil
	}

	dev, ok := hal.GetBackend(f.Device())
	if !ok {
		return nil, newPreconditionError(i+1, "backend %s is not enabled", f.Device())
	}
	stream, err := c.streamFor(i, n, dev)
	if err != nil {
		return nil, newResourceError(i+1, err, "creating device stream")
	}

	if c.useDeviceKernel(f.Device(), dim) {
		launch := device.BuildPackLaunch(dim, f, sendBuf, elem, ranges, c.cfg.ThreadCopyThreshold)
		if err := stream.Launch(launch); err != nil {
			return nil, newResourceError(i+1, err, "launching pack kernel")
		}
		c.iwrite.Handle(i, n).ArmDevice(stream)
		return sendBuf, nil
	}

	hal.Logger().Warn("update_halo: falling back to staged host path", "field", i+1, "side", n, "dim", dim, "backend", f.Device())
	mirror, err := c.pool.EnsureMirror(i, n, true, haloElems*elem.Size(), dev.Pin, dev.Unpin)
	if err != nil {
		return nil, newResourceError(i+1, err, "allocating pinned send mirror")
	}
	sc := staged.BuildDeviceToHost(dim, f, mirror, elem, ranges, c.cfg.ThreadCopyThreshold)
	if err := stream.Copy(sc); err != nil {
		return nil, newResourceError(i+1, err, "staging device pack to host")
	}
	c.iwrite.Handle(i, n).ArmDevice(stream)
	return mirror, nil
}

// unpackPrep is an unpack handle's work, computed ahead of the receive so
// the destination buffer is known before the Messenger posts into it, but
// deferred (arm) until the receive is confirmed to have actually delivered
// data (spec §4.1 step 3c: only arm when the wait "returned data").
type unpackPrep struct {
	wire []byte
	arm  func()
}

// prepareRecv mirrors armPack for the receive side: it picks the
// destination buffer (pool slot or pinned mirror) and builds the closure
// that arms the unpack handle, without running either yet.
func (c *Context) prepareRecv(i int, f Field, n types.Side, dim int) (unpackPrep, error) {
	elem := f.ElementType()
	haloElems := pack.HaloSize(dim, f)
	recvBuf := c.pool.RecvBuf(i, n)[:haloElems*elem.Size()]
	ranges := pack.RecvRanges(n, dim, f)

	if f.Device() == types.Host {
		return unpackPrep{
			wire: recvBuf,
			arm: func() {
				c.iread.Handle(i, n).Arm(func() error {
					return host.Unpack(f.HostBytes(), hostShape(f), ranges, recvBuf, elem.Size(), c.cfg.ThreadCopyThreshold)
				})
			},
		}, nil
	}

	dev, ok := hal.GetBackend(f.Device())
	if !ok {
		return unpackPrep{}, newPreconditionError(i+1, "backend %s is not enabled", f.Device())
	}
	stream, err := c.streamFor(i, n, dev)
	if err != nil {
		return unpackPrep{}, newResourceError(i+1, err, "creating device stream")
	}

	if c.useDeviceKernel(f.Device(), dim) {
		return unpackPrep{
			wire: recvBuf,
			arm: func() {
				launch := device.BuildUnpackLaunch(dim, f, recvBuf, elem, ranges, c.cfg.ThreadCopyThreshold)
				stream.Launch(launch)
				c.iread.Handle(i, n).ArmDevice(stream)
			},
		}, nil
	}

	hal.Logger().Warn("update_halo: falling back to staged host path", "field", i+1, "side", n, "dim", dim, "backend", f.Device())
	mirror, err := c.pool.EnsureMirror(i, n, false, haloElems*elem.Size(), dev.Pin, dev.Unpin)
	if err != nil {
		return unpackPrep{}, newResourceError(i+1, err, "allocating pinned recv mirror")
	}
	return unpackPrep{
		wire: mirror,
		arm: func() {
			sc := staged.BuildHostToDevice(dim, f, mirror, elem, ranges, c.cfg.ThreadCopyThreshold)
			stream.Copy(sc)
			c.iread.Handle(i, n).ArmDevice(stream)
		},
	}, nil
}

// updateDimLocal is spec §4.1 step 4: the periodic self-neighbour path.
// Each side's send buffer is copied directly into the opposite side's recv
// buffer, in place, with no transport involved.
func (c *Context) updateDimLocal(dim int, fields []Field, sendWire []map[types.Side][]byte) error {
	for _, n := range []types.Side{types.Low, types.High} {
		opp := n.Opposite()
		for i, f := range fields {
			wire, ok := sendWire[i][n]
			if !ok {
				continue
			}
			if err := c.iwrite.Handle(i, n).Wait(); err != nil {
				return newResourceError(i+1, err, "packing dim %d side %s", dim, n)
			}

			prep, err := c.prepareRecv(i, f, opp, dim)
			if err != nil {
				return err
			}
			copy(prep.wire, wire)
			prep.arm()

			if err := c.iread.Handle(i, opp).Wait(); err != nil {
				return newResourceError(i+1, err, "unpacking dim %d side %s", dim, opp)
			}
		}
	}
	return nil
}

// updateDimRemote is spec §4.1 step 3: receives posted in reverse
// neighbour order, sends posted in forward order after their pack
// completes, receives waited in reverse order (arming unpack only for
// whatever arrived), unpacks waited in reverse order, and finally every
// send for the dimension drained before the next dim begins.
func (c *Context) updateDimRemote(dim int, fields []Field, sendWire []map[types.Side][]byte) error {
	recvReqs := make([]map[types.Side]Request, len(fields))
	unpackPreps := make([]map[types.Side]unpackPrep, len(fields))
	for i := range fields {
		recvReqs[i] = make(map[types.Side]Request, 2)
		unpackPreps[i] = make(map[types.Side]unpackPrep, 2)
	}

	// a. Post receives, n = 2, 1.
	for _, n := range []types.Side{types.High, types.Low} {
		for i, f := range fields {
			if !c.neighbors.HasNeighbor(n, dim) {
				continue
			}
			prep, err := c.prepareRecv(i, f, n, dim)
			if err != nil {
				return err
			}
			unpackPreps[i][n] = prep

			fromRank := c.neighbors.Neighbor(n, dim)
			req, err := irecvHalo(c.messenger, c.neighbors, f, n, dim, fromRank, prep.wire)
			if err != nil {
				return newTransportError(dim, err, "posting receive for field %d side %s", i+1, n)
			}
			recvReqs[i][n] = req
		}
	}

	// b. Post sends, n = 1, 2, after each pack completes.
	sendReqs := map[types.Side][]Request{}
	for _, n := range []types.Side{types.Low, types.High} {
		for i, f := range fields {
			wire, ok := sendWire[i][n]
			if !ok {
				continue
			}
			if err := c.iwrite.Handle(i, n).Wait(); err != nil {
				return newResourceError(i+1, err, "packing dim %d side %s", dim, n)
			}

			toRank := NoNeighbor
			if c.neighbors.HasNeighbor(n, dim) {
				toRank = c.neighbors.Neighbor(n, dim)
			}
			req, err := isendHalo(c.messenger, f, dim, toRank, wire)
			if err != nil {
				return newTransportError(dim, err, "sending field %d side %s", i+1, n)
			}
			if req != nil {
				sendReqs[n] = append(sendReqs[n], req)
			}
		}
	}

	// c. Wait receives, n = 2, 1, arming unpack only where data arrived.
	for _, n := range []types.Side{types.High, types.Low} {
		for i := range fields {
			req, ok := recvReqs[i][n]
			if !ok || req == nil {
				continue
			}
			arrived, err := req.Wait()
			if err != nil {
				return newTransportError(dim, err, "receiving field %d side %s", i+1, n)
			}
			if arrived {
				unpackPreps[i][n].arm()
			}
		}
	}

	// d. Wait unpacks, n = 2, 1, for every field with a neighbour.
	for _, n := range []types.Side{types.High, types.Low} {
		for i := range fields {
			if !c.neighbors.HasNeighbor(n, dim) {
				continue
			}
			if err := c.iread.Handle(i, n).Wait(); err != nil {
				return newResourceError(i+1, err, "unpacking dim %d side %s", dim, n)
			}
		}
	}

	// e. Drain every send posted for this dim before moving on.
	for _, n := range []types.Side{types.Low, types.High} {
		for _, req := range sendReqs[n] {
			if _, err := req.Wait(); err != nil {
				return newTransportError(dim, err, "sending dim %d side %s", dim, n)
			}
		}
	}

	return nil
}
