// Package host is ighalo's software backend: the stand-in for the
// teacher's hal/noop and hal/gles software paths. Host fields need no
// device streams or pinning, so every operation here runs inline and
// synchronously — there is no asynchrony to model.
package host

import (
	"github.com/gogpu/ighalo/hal"
	"github.com/gogpu/ighalo/types"
)

// Device is the host backend: registered once via init() below.
type Device struct{}

// Variant implements hal.Device.
func (Device) Variant() types.DeviceKind { return types.Host }

// NewStream returns a synchronous Stream: Launch and Copy execute
// immediately, and Wait always returns nil.
func (Device) NewStream() (hal.Stream, error) { return stream{}, nil }

// Pin is a no-op: host memory needs no page-locking to be used by the
// host backend itself (pinning only matters for a device's staged path).
func (Device) Pin(buf []byte) error { return nil }

// Unpin is a no-op, symmetric with Pin.
func (Device) Unpin(buf []byte) error { return nil }

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

func init() {
	hal.RegisterBackend(Device{})
}
