// Package rocm is ighalo's AMD backend, structurally identical to
// hal/cuda: no ROCm Go binding exists in the retrieved pack, so this is
// likewise a simulated stand-in built on internal/thread.Thread.
//
// Per Design Notes' AMD Open Question resolution, the staged-host path is
// never used on this backend — the device-kernel path is mandatory here
// regardless of the per-dimension device-aware transport flag, until
// performance testing on real hardware justifies re-enabling staging.
// Pin/Unpin are therefore never called in practice for a ROCm field; they
// are implemented for interface completeness and to keep the backend
// swappable if that decision is revisited.
package rocm

import (
	"sync"

	"github.com/gogpu/ighalo/hal"
	"github.com/gogpu/ighalo/internal/thread"
	"github.com/gogpu/ighalo/types"
)

// Device is the ROCm backend.
type Device struct{}

// Variant implements hal.Device.
func (Device) Variant() types.DeviceKind { return types.ROCmKind }

// NewStream creates one dedicated, non-blocking stream.
func (Device) NewStream() (hal.Stream, error) {
	return &stream{th: thread.New()}, nil
}

// Pin is a placeholder for hipHostRegister; see the package doc comment
// on why the staged path that would call this is not used on ROCm.
func (Device) Pin(buf []byte) error { return nil }

// Unpin is the symmetric placeholder for hipHostUnregister.
func (Device) Unpin(buf []byte) error { return nil }

type stream struct {
	th *thread.Thread

	mu  sync.Mutex
	err error
}

func (s *stream) setErr(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
}

func (s *stream) Launch(kl hal.KernelLaunch) error {
	s.th.CallAsync(func() {
		if kl.Exec != nil {
			s.setErr(kl.Exec())
		}
	})
	return nil
}

func (s *stream) Copy(sc hal.StagedCopy) error {
	s.th.CallAsync(func() {
		if sc.Exec != nil {
			s.setErr(sc.Exec())
		}
	})
	return nil
}

func (s *stream) Wait() error {
	s.th.CallVoid(func() {})
	s.mu.Lock()
	err := s.err
	s.err = nil
	s.mu.Unlock()
	return err
}

func init() {
	hal.RegisterBackend(Device{})
}
