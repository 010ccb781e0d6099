package core

import (
	"fmt"

	"github.com/gogpu/ighalo/core/track"
	"github.com/gogpu/ighalo/hal"
	"github.com/gogpu/ighalo/types"
)

// Pool is the buffer pool of spec §4.2: persistent per-field, per-neighbour
// send and receive scratch, lazily grown and never shrunk. A Context owns
// exactly one Pool — there is no process-wide singleton (Design Notes §9).
type Pool struct {
	send  *track.Tracker
	recv  *track.Tracker
	sendB map[track.Key][]byte
	recvB map[track.Key][]byte
	// sendMirror/recvMirror hold the pinned host mirror for a device
	// field's staged path, keyed the same way as sendB/recvB.
	sendMirror map[track.Key][]byte
	recvMirror map[track.Key][]byte

	growths int // test-only: incremented every time any slot (re)allocates
}

// NewPool returns an empty, lazily-allocated pool.
func NewPool() *Pool {
	return &Pool{
		send:       track.NewTracker(),
		recv:       track.NewTracker(),
		sendB:      make(map[track.Key][]byte),
		recvB:      make(map[track.Key][]byte),
		sendMirror: make(map[track.Key][]byte),
		recvMirror: make(map[track.Key][]byte),
	}
}

// Ensure guarantees that the send and recv slots for (field, n) hold at
// least capacityElems elements of elem, reinterpreting in place when the
// existing capacity already suffices (spec §4.2 reinterpretation rule),
// and returns contiguous byte views sized exactly to capacityElems
// elements. Allocation failures are returned as an error so the caller
// can wrap them into a Resource HaloError; the pool is left exactly as it
// was before the failing grow (failures here only come from Go's
// allocator, which panics rather than erroring, so in practice this path
// always succeeds — the error return exists for a future pinned-memory
// backend where registration can fail).
func (p *Pool) Ensure(field int, n types.Side, elem types.ElementType, capacityElems int) (sendBuf, recvBuf []byte, err error) {
	wantBytes := capacityElems * elem.Size()
	key := track.Key{Field: field, Side: n}

	sendBuf, err = ensureSlot(p.send, p.sendB, key, wantBytes, elem, &p.growths)
	if err != nil {
		return nil, nil, fmt.Errorf("send slot (field %d, side %s): %w", field, n, err)
	}
	recvBuf, err = ensureSlot(p.recv, p.recvB, key, wantBytes, elem, &p.growths)
	if err != nil {
		return nil, nil, fmt.Errorf("recv slot (field %d, side %s): %w", field, n, err)
	}
	return sendBuf[:wantBytes], recvBuf[:wantBytes], nil
}

func ensureSlot(t *track.Tracker, bufs map[track.Key][]byte, key track.Key, wantBytes int, elem types.ElementType, growths *int) ([]byte, error) {
	slot, grew := t.Ensure(key, wantBytes, elem)
	buf, present := bufs[key]
	if grew || !present || len(buf) < slot.Capacity {
		hal.Logger().Debug("core: buffer slot growing",
			"field", key.Field, "side", key.Side, "from_bytes", len(buf), "to_bytes", slot.Capacity)
		buf = make([]byte, slot.Capacity)
		bufs[key] = buf
		*growths++
	}
	return buf, nil
}

// SendBuf returns the current contiguous send buffer for (field, n): the
// whole allocated slot, whose granularity-rounded length can exceed the
// last Ensure call's capacityElems*elem.Size() bytes, so callers slice it
// to the size they need. It
// panics if Ensure was never called for this key, mirroring the teacher's
// "get on untracked resource is a programmer error" convention.
func (p *Pool) SendBuf(field int, n types.Side) []byte {
	buf, ok := p.sendB[track.Key{Field: field, Side: n}]
	if !ok {
		panic(fmt.Sprintf("core: send slot (field %d, side %s) never allocated", field, n))
	}
	return buf
}

// RecvBuf returns the current contiguous recv buffer for (field, n).
func (p *Pool) RecvBuf(field int, n types.Side) []byte {
	buf, ok := p.recvB[track.Key{Field: field, Side: n}]
	if !ok {
		panic(fmt.Sprintf("core: recv slot (field %d, side %s) never allocated", field, n))
	}
	return buf
}

// EnsureMirror guarantees a pinned host mirror of byteLen bytes exists for
// (field, n) on the given side ("send" or "recv"), used only on the
// device-staged path (spec §4.2 pinned-host mirror lifecycle). pin is
// called to (re)register the mirror whenever it grows.
func (p *Pool) EnsureMirror(field int, n types.Side, send bool, byteLen int, pin func([]byte) error, unpin func([]byte) error) ([]byte, error) {
	m := p.recvMirror
	if send {
		m = p.sendMirror
	}
	key := track.Key{Field: field, Side: n}
	buf, ok := m[key]
	if ok && len(buf) >= byteLen {
		t := p.send
		if !send {
			t = p.recv
		}
		t.SetPinned(key, true)
		return buf[:byteLen], nil
	}
	if ok && unpin != nil {
		if err := unpin(buf); err != nil {
			return nil, err
		}
	}
	buf = make([]byte, byteLen)
	if pin != nil {
		if err := pin(buf); err != nil {
			return nil, err
		}
	}
	m[key] = buf
	t := p.send
	if !send {
		t = p.recv
	}
	t.SetPinned(key, true)
	return buf, nil
}

// GrowthCount returns the number of slot (re)allocations since the pool
// was created or last freed — the test-only counter spec §8's "Buffer reuse" property
// observes.
func (p *Pool) GrowthCount() int {
	return p.growths
}

// Free releases every host-allocated slot and, via unpin, unregisters
// every pinned mirror (spec §4.2 tear-down / free_update_halo_buffers).
func (p *Pool) Free(unpin func([]byte) error) error {
	if unpin != nil {
		for _, buf := range p.sendMirror {
			if err := unpin(buf); err != nil {
				return err
			}
		}
		for _, buf := range p.recvMirror {
			if err := unpin(buf); err != nil {
				return err
			}
		}
	}
	p.send = track.NewTracker()
	p.recv = track.NewTracker()
	p.sendB = make(map[track.Key][]byte)
	p.recvB = make(map[track.Key][]byte)
	p.sendMirror = make(map[track.Key][]byte)
	p.recvMirror = make(map[track.Key][]byte)
	p.growths = 0
	return nil
}
