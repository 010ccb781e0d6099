// Package testdevice is a fake device backend, modeled on the teacher's
// hal/noop software backend: it implements hal.Device synchronously (no
// goroutine, no asynchrony) so tests can exercise the device pack/unpack
// and staged-copy paths deterministically and compare them bit-exactly
// against the host reference path, without a real GPU.
package testdevice

import (
	"github.com/gogpu/ighalo/hal"
	"github.com/gogpu/ighalo/types"
)

// Device is a synchronous stand-in for a real hal.Device, reporting
// whichever DeviceKind it's constructed with so both the CUDA and ROCm
// code paths in the orchestrator can be exercised from tests.
type Device struct {
	Kind types.DeviceKind

	pinned map[*byte]bool
}

// New returns a Device reporting kind.
func New(kind types.DeviceKind) *Device {
	return &Device{Kind: kind, pinned: make(map[*byte]bool)}
}

// Variant implements hal.Device.
func (d *Device) Variant() types.DeviceKind { return d.Kind }

// NewStream returns a synchronous stream: every call blocks until done.
func (d *Device) NewStream() (hal.Stream, error) { return &stream{}, nil }

// Pin records buf as pinned, for PinCount/IsPinned test assertions.
func (d *Device) Pin(buf []byte) error {
	if len(buf) > 0 {
		d.pinned[&buf[0]] = true
	}
	return nil
}

// Unpin removes buf from the pinned set.
func (d *Device) Unpin(buf []byte) error {
	if len(buf) > 0 {
		delete(d.pinned, &buf[0])
	}
	return nil
}

// IsPinned reports whether buf is currently registered as pinned.
func (d *Device) IsPinned(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	return d.pinned[&buf[0]]
}

type stream struct{}

func (stream) Launch(kl hal.KernelLaunch) error {
	if kl.Exec == nil {
		return nil
	}
	return kl.Exec()
}

func (stream) Copy(sc hal.StagedCopy) error {
	if sc.Exec == nil {
		return nil
	}
	return sc.Exec()
}

func (stream) Wait() error { return nil }
